// Package es provides the core value types and contracts for the aggregate
// persistence engine: events, commits, snapshots, and the error taxonomy
// every provider and codec implementation is expected to speak.
//
// # Overview
//
// This package defines the fundamentals:
//   - Event[P] / SerializedEvent: an immutable fact about an aggregate
//   - Commit: an atomically-written batch of SerializedEvent
//   - Snapshot[M] / SerializedSnapshot: a checkpoint of folded state
//   - DBTX: database transaction abstraction shared by every SQL adapter
//   - Error / Kind: the typed error taxonomy surfaced across the engine
//
// The aggregate state machine (Aggregate[M], ApplyEvent, Commit,
// StoreSnapshot) and the snapshot-then-replay read path
// (AggregateReader) both live in this package, alongside the
// contracts. Storage-provider contracts are re-exported under their
// SPI-facing names in es/provider, with concrete adapters under
// es/adapters/.
//
// # Design Philosophy
//
// Clean separation: this package knows nothing about SQL, JSON, or any
// other concrete backend. Adapters and codecs depend on es; es depends on
// nothing but the standard library and google/uuid.
//
// Transaction control: everything here is passed across a DBTX, never a
// managed connection. Callers own transaction boundaries, which lets an
// aggregate commit participate in a larger unit of work alongside other
// database writes.
//
// Immutability: Event, Commit, and Snapshot are value objects. Nothing in
// this package mutates a value in place.
//
// # Quick Start
//
//  1. Generate database migrations:
//
//     go run github.com/stratum-es/aggregatecore/cmd/migrate-gen -output migrations
//
//  2. Apply migrations to your database.
//
//  3. Build an aggregate, apply events, and commit:
//
//     agg := es.NewAggregate(id, es.PartitionKeyForAggregate(id), folder)
//     agg, err := es.ApplyEvent(agg, serializer, event)
//     agg, err = agg.Commit(ctx, tx, writer, func() int64 { return time.Now().UnixMilli() })
//
//  4. Rehydrate later via the reader:
//
//     r := es.NewAggregateReader(snapshotReader, eventReader, snapshotSerializer, folder)
//     agg, err := r.Read(ctx, tx, id, es.UpToLatest, func() ToDoList { return ToDoList{} })
//
// # Optimistic Concurrency
//
// Commit is optimistic: the aggregate stamps the next
// commit_sequence_number onto the commit, and the provider rejects the
// write with a Concurrency error if another writer already claimed that
// number for the aggregate. Callers reload and retry.
//
// # Database Schema
//
// Events are stored with commit_sequence_number denormalized onto every
// row, so a replaying reader can track which commit an event belongs to
// without reconstructing Commit objects. Snapshots are stored separately,
// one row per aggregate keyed by aggregate_id, replaced only by a
// snapshot with a greater event_sequence_number.
//
// # Design Decisions
//
// Opaque payload bytes: the core never inspects payload_type or
// payload_bytes. Callers choose their encoding; the default codec uses
// encoding/json.
//
// DBTX interface: works with *sql.DB and *sql.Tx. No transaction
// management in the library keeps it focused on aggregate persistence.
package es
