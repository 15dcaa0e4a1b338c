// Package eventmap generates a Folder implementation from a directory of
// versioned domain event structs, so hand-written reducers never have to
// deal with payload_type switching or JSON decoding themselves.
//
// This package supports versioned events where directory structure
// determines event version (v1, v2, etc.), similar to protobuf package
// versioning.
//
// The generated code is explicit, readable, and does not use runtime
// reflection.
package eventmap
