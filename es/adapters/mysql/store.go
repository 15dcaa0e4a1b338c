// Package mysql implements the es provider SPI (EventWriter,
// EventReader, SnapshotWriter, SnapshotReader) against MySQL/MariaDB,
// using github.com/go-sql-driver/mysql for driver-specific
// unique-violation (error 1062) detection.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/stratum-es/aggregatecore/es"
	"github.com/stratum-es/aggregatecore/es/adapters/cursor"
)

// StoreConfig contains configuration for the MySQL provider.
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

// StoreOption configures a Store.
type StoreOption func(*StoreConfig)

// WithLogger attaches a logger to the store.
func WithLogger(logger es.Logger) StoreOption {
	return func(c *StoreConfig) { c.Logger = logger }
}

// EventStore implements es.EventWriter and es.EventReader against
// MySQL/MariaDB.
type EventStore struct {
	config StoreConfig
}

// NewEventStore creates a MySQL-backed EventStore.
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

// WriteCommit implements es.EventWriter. Like the Postgres adapter, it
// inserts the whole commit as a single multi-row INSERT for atomicity
// without requiring the caller to pass a *sql.Tx, and relies on the
// unique key over (aggregate_id, sequence_number) to detect an
// optimistic-concurrency conflict.
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
		if isDuplicateEntry(err) {
			return es.Wrap(es.KindConcurrency,
				fmt.Sprintf("commit %d already exists for aggregate %s", commit.SequenceNumber, commit.AggregateID), err)
		}
		return es.Wrap(es.KindStorageUnavailable, "write commit", err)
	}

	upsertQuery := fmt.Sprintf(`
		INSERT INTO %s (aggregate_id, partition_key, commit_sequence_number, event_sequence_number, updated_at)
		VALUES (?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			commit_sequence_number = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(commit_sequence_number), commit_sequence_number),
			event_sequence_number = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(event_sequence_number), event_sequence_number),
			updated_at = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(updated_at), updated_at)
	`, s.config.AggregateSequencesTable)

	if _, err := tx.ExecContext(ctx, upsertQuery, commit.AggregateID.String(), string(commit.PartitionKey), commit.SequenceNumber, commit.LastEventSequenceNumber()); err != nil {
		return es.Wrap(es.KindStorageUnavailable, "update aggregate head", err)
	}

	s.config.Logger.Debug(ctx, "mysql: wrote commit", "aggregate_id", commit.AggregateID, "commit_seq", commit.SequenceNumber)
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
// against MySQL/MariaDB.
type SnapshotStore struct {
	config StoreConfig
}

// NewSnapshotStore creates a MySQL-backed SnapshotStore.
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
		VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			commit_sequence_number = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(commit_sequence_number), commit_sequence_number),
			memento_bytes = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(memento_bytes), memento_bytes),
			updated_at = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(updated_at), updated_at),
			event_sequence_number = IF(event_sequence_number < VALUES(event_sequence_number), VALUES(event_sequence_number), event_sequence_number)
	`, s.config.SnapshotsTable)

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

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
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
