// Package provider names the storage-provider SPI: the four narrow
// contracts a durable backend must implement so the aggregate kernel
// and reader can stay storage-agnostic. The contracts themselves are
// defined in the es package (the kernel consumes EventWriter and
// SnapshotWriter directly, so they must live where the kernel can
// import them without a cycle); this package re-exports them under
// their SPI-facing names for adapters and callers that want to depend
// on "the provider contracts" without pulling in the rest of the
// kernel's public surface. Concrete implementations live under
// es/adapters/.
package provider

import "github.com/stratum-es/aggregatecore/es"

// ErrNoEvents indicates an attempt to write a commit with zero events.
var ErrNoEvents = es.ErrNoEvents

// EventWriter atomically persists a single Commit. See es.EventWriter
// for the full contract.
type EventWriter = es.EventWriter

// EventPage is a page of events returned by an EventReader, plus the
// token to resume from if the stream was not fully drained.
type EventPage = es.EventPage

// EventReader reads an aggregate's events in ascending sequence order.
// See es.EventReader for the full contract.
type EventReader = es.EventReader

// SnapshotWriter persists a SerializedSnapshot. See es.SnapshotWriter
// for the full contract.
type SnapshotWriter = es.SnapshotWriter

// SnapshotReader returns the highest-sequence snapshot at or below a
// requested sequence. See es.SnapshotReader for the full contract.
type SnapshotReader = es.SnapshotReader
