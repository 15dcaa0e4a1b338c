// Package aggregatecore is the top-level entry point for the aggregatecore
// module. The event sourcing engine itself lives in es and its
// subpackages:
//
//	es                   - Core types, contracts, aggregate kernel, and reader
//	es/provider          - Storage provider contracts (re-exported from es)
//	es/codec             - Event and snapshot payload encoding
//	es/adapters/postgres - PostgreSQL implementation
//	es/adapters/mysql    - MySQL implementation
//	es/adapters/sqlite   - SQLite implementation
//	es/migrations        - Migration generation
//	es/eventmap          - Folder code generation from domain event structs
//
// Quick Start:
//
//  1. Generate migrations:
//     go run github.com/stratum-es/aggregatecore/cmd/migrate-gen -output migrations
//
//  2. Build an aggregate and commit:
//     agg := es.NewAggregate(id, es.PartitionKeyForAggregate(id), folder)
//     agg, _ = es.ApplyEvent(agg, serializer, event)
//     agg, err := agg.Commit(ctx, tx, store, func() int64 { return time.Now().UnixMilli() })
//
//  3. Rehydrate later via the reader:
//     r := es.NewAggregateReader(snapshotStore, eventStore, snapshotSerializer, folder)
//     agg, err := r.Read(ctx, tx, id, es.UpToLatest, func() ToDoList { return ToDoList{} })
package aggregatecore

// Version returns the current version of the library.
func Version() string {
	return "0.1.0-dev"
}
