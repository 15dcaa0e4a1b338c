// Package postgres implements the es provider SPI (EventWriter,
// EventReader, SnapshotWriter, SnapshotReader) against PostgreSQL,
// using github.com/lib/pq for driver-specific unique-violation
// detection.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/stratum-es/aggregatecore/es"
	"github.com/stratum-es/aggregatecore/es/adapters/cursor"
)

// StoreConfig contains configuration for the Postgres provider.
// Configuration is immutable after construction.
type StoreConfig struct {
	// EventsTable is the name of the events table.
	EventsTable string

	// AggregateSequencesTable is the name of the table that tracks each
	// aggregate's latest (commit_seq, event_seq) for fast head lookups.
	AggregateSequencesTable string

	// SnapshotsTable is the name of the snapshots table.
	SnapshotsTable string

	// Logger is an optional logger for observability. If nil, logging
	// is disabled at zero overhead.
	Logger es.Logger
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

// StoreOption configures a Store.
type StoreOption func(*StoreConfig)

// WithLogger attaches a logger to the store.
func WithLogger(logger es.Logger) StoreOption {
	return func(c *StoreConfig) { c.Logger = logger }
}

// EventStore implements es.EventWriter and es.EventReader against
// PostgreSQL.
type EventStore struct {
	config StoreConfig
}

// NewEventStore creates a Postgres-backed EventStore.
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

// WriteCommit implements es.EventWriter. It inserts every event of the
// commit in a single multi-row INSERT, so the commit is atomic even
// when tx is a bare *sql.DB rather than a transaction: either the whole
// statement succeeds or none of its rows are visible. A commit whose
// SequenceNumber is not above the aggregate's head in
// AggregateSequencesTable, or a unique violation on (aggregate_id,
// sequence_number) — the same collision that would occur if another
// writer already claimed this commit's sequence numbers — is reported
// as KindConcurrency.
func (s *EventStore) WriteCommit(ctx context.Context, tx es.DBTX, commit es.Commit) error {
	if commit.IsEmpty() {
		return es.ErrNoEvents
	}

	var headCommitSeq int64
	headQuery := fmt.Sprintf(`SELECT commit_sequence_number FROM %s WHERE aggregate_id = $1`, s.config.AggregateSequencesTable)
	err := tx.QueryRowContext(ctx, headQuery, commit.AggregateID).Scan(&headCommitSeq)
	switch {
	case err == nil && headCommitSeq >= commit.SequenceNumber:
		return es.New(es.KindConcurrency,
			fmt.Sprintf("commit %d already exists for aggregate %s", commit.SequenceNumber, commit.AggregateID))
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return es.Wrap(es.KindStorageUnavailable, "read aggregate head", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, sequence_number, commit_sequence_number, payload_type, payload_bytes, timestamp_ms)
		VALUES %s
	`, s.config.EventsTable, valuesPlaceholders(len(commit.Events), 7))

	args := make([]any, 0, len(commit.Events)*7)
	for _, e := range commit.Events {
		args = append(args, commit.AggregateID, string(commit.PartitionKey), e.SequenceNumber, e.CommitSequenceNumber, e.PayloadType, e.PayloadBytes, commit.TimestampMS)
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
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (aggregate_id) DO UPDATE SET
			commit_sequence_number = EXCLUDED.commit_sequence_number,
			event_sequence_number = EXCLUDED.event_sequence_number,
			updated_at = NOW()
		WHERE %s.event_sequence_number < EXCLUDED.event_sequence_number
	`, s.config.AggregateSequencesTable, s.config.AggregateSequencesTable)

	if _, err := tx.ExecContext(ctx, upsertQuery, commit.AggregateID, string(commit.PartitionKey), commit.SequenceNumber, commit.LastEventSequenceNumber()); err != nil {
		return es.Wrap(es.KindStorageUnavailable, "update aggregate head", err)
	}

	s.config.Logger.Debug(ctx, "postgres: wrote commit", "aggregate_id", commit.AggregateID, "commit_seq", commit.SequenceNumber)
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
		WHERE aggregate_id = $1 AND sequence_number >= $2 AND sequence_number <= $3
		ORDER BY sequence_number ASC
		LIMIT $4
	`, s.config.EventsTable)

	rows, err := tx.QueryContext(ctx, query, aggregateID, minEventSeq, maxEventSeq, maxItems+1)
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
		var timestampMS int64
		if err := rows.Scan(&e.AggregateID, &e.SequenceNumber, &e.CommitSequenceNumber, &e.PayloadType, &e.PayloadBytes, &timestampMS); err != nil {
			return nil, es.Wrap(es.KindStorageUnavailable, "scan event", err)
		}
		e.Timestamp = millisToTime(timestampMS)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, es.Wrap(es.KindStorageUnavailable, "read events", err)
	}
	return events, nil
}

// SnapshotStore implements es.SnapshotWriter and es.SnapshotReader
// against PostgreSQL.
type SnapshotStore struct {
	config StoreConfig
}

// NewSnapshotStore creates a Postgres-backed SnapshotStore.
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

// Write implements es.SnapshotWriter. Idempotent by (aggregate_id,
// event_sequence_number): the WHERE clause on the upsert makes
// overwriting with a lesser-or-equal EventSequenceNumber a no-op.
func (s *SnapshotStore) Write(ctx context.Context, tx es.DBTX, snapshot es.SerializedSnapshot) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, commit_sequence_number, event_sequence_number, memento_bytes, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (aggregate_id) DO UPDATE SET
			commit_sequence_number = EXCLUDED.commit_sequence_number,
			event_sequence_number = EXCLUDED.event_sequence_number,
			memento_bytes = EXCLUDED.memento_bytes,
			updated_at = NOW()
		WHERE %s.event_sequence_number < EXCLUDED.event_sequence_number
	`, s.config.SnapshotsTable, s.config.SnapshotsTable)

	_, err := tx.ExecContext(ctx, query, snapshot.AggregateID, string(snapshot.PartitionKey),
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
		WHERE aggregate_id = $1 AND event_sequence_number <= $2
	`, s.config.SnapshotsTable)

	var ss es.SerializedSnapshot
	ss.AggregateID = aggregateID
	var partitionKey string
	err := tx.QueryRowContext(ctx, query, aggregateID, upToSequence).Scan(
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
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func valuesPlaceholders(rows, cols int) string {
	out := ""
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			out += ", "
		}
		out += "("
		for c := 0; c < cols; c++ {
			if c > 0 {
				out += ", "
			}
			out += fmt.Sprintf("$%d", n)
			n++
		}
		out += ")"
	}
	return out
}
