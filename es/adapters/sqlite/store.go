// Package sqlite implements the es provider SPI (EventWriter,
// EventReader, SnapshotWriter, SnapshotReader) against SQLite, using
// database/sql's generic string-matching for constraint violations
// since the caller registers the driver and this package never
// imports one directly.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/stratum-es/aggregatecore/es"
	"github.com/stratum-es/aggregatecore/es/adapters/cursor"
)

// StoreConfig contains configuration for the SQLite provider.
// Configuration is immutable after construction.
type StoreConfig struct {
	EventsTable             string
	AggregateSequencesTable string
	SnapshotsTable          string
	Logger                  es.Logger
}

// DefaultStoreConfig returns the default configuration.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		EventsTable:             "events",
		AggregateSequencesTable: "aggregate_sequences",
		SnapshotsTable:          "snapshots",
		Logger:                  es.NoOpLogger{},
	}
}

// StoreOption is a functional option for configuring a Store.
type StoreOption func(*StoreConfig)

// WithLogger sets a logger for the store.
func WithLogger(logger es.Logger) StoreOption {
	return func(c *StoreConfig) { c.Logger = logger }
}

// NewStoreConfig creates a new store configuration with functional
// options, starting from DefaultStoreConfig.
func NewStoreConfig(opts ...StoreOption) StoreConfig {
	config := DefaultStoreConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return config
}

// EventStore implements es.EventWriter and es.EventReader against
// SQLite.
type EventStore struct {
	config StoreConfig
}

// NewEventStore creates a SQLite-backed EventStore.
func NewEventStore(config StoreConfig) *EventStore {
	if config.Logger == nil {
		config.Logger = es.NoOpLogger{}
	}
	return &EventStore{config: config}
}

var (
	_ es.EventWriter = (*EventStore)(nil)
	_ es.EventReader = (*EventStore)(nil)
)

// WriteCommit implements es.EventWriter. Same single multi-row INSERT
// strategy as the Postgres and MySQL adapters for atomicity without
// requiring a *sql.Tx; the unique index on (aggregate_id,
// sequence_number) surfaces a race as a constraint-failed error, which
// is translated to KindConcurrency by message matching since SQLite
// reports constraint violations as plain strings rather than typed
// driver errors.
func (s *EventStore) WriteCommit(ctx context.Context, tx es.DBTX, commit es.Commit) error {
	if commit.IsEmpty() {
		return es.ErrNoEvents
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, sequence_number, commit_sequence_number, payload_type, payload_bytes, timestamp_ms)
		VALUES %s
	`, s.config.EventsTable, valuesPlaceholders(len(commit.Events), 7))

	args := make([]any, 0, len(commit.Events)*7)
	for _, e := range commit.Events {
		args = append(args, commit.AggregateID.String(), string(commit.PartitionKey), e.SequenceNumber, e.CommitSequenceNumber, e.PayloadType, e.PayloadBytes, commit.TimestampMS)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return es.Wrap(es.KindConcurrency,
				fmt.Sprintf("commit %d already exists for aggregate %s", commit.SequenceNumber, commit.AggregateID), err)
		}
		return es.Wrap(es.KindStorageUnavailable, "write commit", err)
	}

	upsertQuery := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, commit_sequence_number, event_sequence_number, updated_at)
		VALUES (?, ?, ?, ?, datetime('now'))
		ON CONFLICT (aggregate_id) DO UPDATE SET
			commit_sequence_number = excluded.commit_sequence_number,
			event_sequence_number = excluded.event_sequence_number,
			updated_at = excluded.updated_at
		WHERE %s.event_sequence_number < excluded.event_sequence_number
	`, s.config.AggregateSequencesTable, s.config.AggregateSequencesTable)

	if _, err := tx.ExecContext(ctx, upsertQuery, commit.AggregateID.String(), string(commit.PartitionKey), commit.SequenceNumber, commit.LastEventSequenceNumber()); err != nil {
		return es.Wrap(es.KindStorageUnavailable, "update aggregate head", err)
	}

	s.config.Logger.Debug(ctx, "sqlite: wrote commit", "aggregate_id", commit.AggregateID, "commit_seq", commit.SequenceNumber)
	return nil
}

// Read implements es.EventReader.
func (s *EventStore) Read(ctx context.Context, tx es.DBTX, aggregateID es.AggregateID, minEventSeq, maxEventSeq int64, maxItems int) (es.EventPage, error) {
	if maxItems <= 0 {
		maxItems = es.DefaultMaxItemsPerBatch
	}
	return s.readRange(ctx, tx, aggregateID, minEventSeq, maxEventSeq, maxItems)
}

// ReadContinuation implements es.EventReader.
func (s *EventStore) ReadContinuation(ctx context.Context, tx es.DBTX, token es.ContinuationToken) (es.EventPage, error) {
	state, err := cursor.Decode(token)
	if err != nil {
		return es.EventPage{}, err
	}
	return s.readRange(ctx, tx, state.AggregateID, state.NextSeq, state.MaxSeq, state.MaxItems)
}

func (s *EventStore) readRange(ctx context.Context, tx es.DBTX, aggregateID es.AggregateID, minEventSeq, maxEventSeq int64, maxItems int) (es.EventPage, error) {
	query := fmt.Sprintf(`
		SELECT aggregate_id, sequence_number, commit_sequence_number, payload_type, payload_bytes, timestamp_ms
		FROM %s
		WHERE aggregate_id = ? AND sequence_number >= ? AND sequence_number <= ?
		ORDER BY sequence_number ASC
		LIMIT ?
	`, s.config.EventsTable)

	rows, err := tx.QueryContext(ctx, query, aggregateID.String(), minEventSeq, maxEventSeq, maxItems+1)
	if err != nil {
		return es.EventPage{}, es.Wrap(es.KindStorageUnavailable, "read events", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows, maxItems)
	if err != nil {
		return es.EventPage{}, err
	}

	var token es.ContinuationToken
	if len(events) == maxItems {
		next := events[len(events)-1].SequenceNumber + 1
		if next <= maxEventSeq {
			token = cursor.Encode(cursor.State{AggregateID: aggregateID, NextSeq: next, MaxSeq: maxEventSeq, MaxItems: maxItems})
		}
	}

	return es.EventPage{Events: events, ContinuationToken: token}, nil
}

func scanEvents(rows *sql.Rows, limit int) ([]es.SerializedEvent, error) {
	var events []es.SerializedEvent
	for rows.Next() {
		if len(events) == limit {
			break
		}
		var e es.SerializedEvent
		var idStr string
		var timestampMS int64
		if err := rows.Scan(&idStr, &e.SequenceNumber, &e.CommitSequenceNumber, &e.PayloadType, &e.PayloadBytes, &timestampMS); err != nil {
			return nil, es.Wrap(es.KindStorageUnavailable, "scan event", err)
		}
		id, err := es.ParseAggregateID(idStr)
		if err != nil {
			return nil, err
		}
		e.AggregateID = id
		e.Timestamp = millisToTime(timestampMS)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, es.Wrap(es.KindStorageUnavailable, "read events", err)
	}
	return events, nil
}

// SnapshotStore implements es.SnapshotWriter and es.SnapshotReader
// against SQLite.
type SnapshotStore struct {
	config StoreConfig
}

// NewSnapshotStore creates a SQLite-backed SnapshotStore.
func NewSnapshotStore(config StoreConfig) *SnapshotStore {
	if config.Logger == nil {
		config.Logger = es.NoOpLogger{}
	}
	return &SnapshotStore{config: config}
}

var (
	_ es.SnapshotWriter = (*SnapshotStore)(nil)
	_ es.SnapshotReader = (*SnapshotStore)(nil)
)

// Write implements es.SnapshotWriter.
func (s *SnapshotStore) Write(ctx context.Context, tx es.DBTX, snapshot es.SerializedSnapshot) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, commit_sequence_number, event_sequence_number, memento_bytes, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT (aggregate_id) DO UPDATE SET
			commit_sequence_number = excluded.commit_sequence_number,
			event_sequence_number = excluded.event_sequence_number,
			memento_bytes = excluded.memento_bytes,
			updated_at = excluded.updated_at
		WHERE %s.event_sequence_number < excluded.event_sequence_number
	`, s.config.SnapshotsTable, s.config.SnapshotsTable)

	_, err := tx.ExecContext(ctx, query, snapshot.AggregateID.String(), string(snapshot.PartitionKey),
		snapshot.CommitSequenceNumber, snapshot.EventSequenceNumber, snapshot.MementoBytes)
	if err != nil {
		return es.Wrap(es.KindStorageUnavailable, "write snapshot", err)
	}
	return nil
}

// Read implements es.SnapshotReader.
func (s *SnapshotStore) Read(ctx context.Context, tx es.DBTX, aggregateID es.AggregateID, upToSequence int64) (es.SerializedSnapshot, error) {
	query := fmt.Sprintf(`
		SELECT partition_key, commit_sequence_number, event_sequence_number, memento_bytes
		FROM %s
		WHERE aggregate_id = ? AND event_sequence_number <= ?
	`, s.config.SnapshotsTable)

	var ss es.SerializedSnapshot
	ss.AggregateID = aggregateID
	var partitionKey string
	err := tx.QueryRowContext(ctx, query, aggregateID.String(), upToSequence).Scan(
		&partitionKey, &ss.CommitSequenceNumber, &ss.EventSequenceNumber, &ss.MementoBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return es.EmptySerializedSnapshot(aggregateID, es.PartitionKeyForAggregate(aggregateID)), nil
	}
	if err != nil {
		return es.SerializedSnapshot{}, es.Wrap(es.KindStorageUnavailable, "read snapshot", err)
	}
	ss.PartitionKey = es.PartitionKey(partitionKey)
	return ss, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}

func valuesPlaceholders(rows, cols int) string {
	row := "(" + placeholderList(cols) + ")"
	out := row
	for r := 1; r < rows; r++ {
		out += ", " + row
	}
	return out
}

func placeholderList(n int) string {
	out := "?"
	for i := 1; i < n; i++ {
		out += ", ?"
	}
	return out
}
