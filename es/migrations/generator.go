// Package migrations provides SQL migration generation for event sourcing infrastructure.
package migrations

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config configures migration generation.
type Config struct {
	// OutputFolder is the directory where the migration file will be written
	OutputFolder string

	// OutputFilename is the name of the migration file
	OutputFilename string

	// EventsTable is the name of the events table
	EventsTable string

	// AggregateSequencesTable is the name of the table tracking each
	// aggregate's latest commit and event sequence numbers.
	AggregateSequencesTable string

	// SnapshotsTable is the name of the snapshots table
	SnapshotsTable string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	timestamp := time.Now().Format("20060102150405")
	return Config{
		OutputFolder:            "migrations",
		OutputFilename:          fmt.Sprintf("%s_init_event_sourcing.sql", timestamp),
		EventsTable:             "events",
		AggregateSequencesTable: "aggregate_sequences",
		SnapshotsTable:          "snapshots",
	}
}

// GeneratePostgres generates a PostgreSQL migration file.
func GeneratePostgres(config *Config) error {
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	sql := generatePostgresSQL(config)

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}

func generatePostgresSQL(config *Config) string {
	return fmt.Sprintf(`-- Event Sourcing Infrastructure Migration
-- Generated: %s

-- Events table stores every committed event in append-only fashion.
-- commit_sequence_number is denormalized onto each event so a reader
-- can recover commit boundaries without a join.
CREATE TABLE IF NOT EXISTS %s (
    aggregate_id UUID NOT NULL,
    partition_key TEXT NOT NULL,
    sequence_number BIGINT NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    payload_type TEXT NOT NULL,
    payload_bytes BYTEA NOT NULL,
    timestamp_ms BIGINT NOT NULL,

    PRIMARY KEY (aggregate_id, sequence_number)
);

CREATE INDEX IF NOT EXISTS idx_%s_partition
    ON %s (partition_key, aggregate_id, sequence_number);

-- Aggregate sequences table tracks each aggregate's latest committed
-- (commit_seq, event_seq) head, giving O(1) lookup for optimistic
-- concurrency checks without scanning the events table.
CREATE TABLE IF NOT EXISTS %s (
    aggregate_id UUID PRIMARY KEY,
    partition_key TEXT NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    event_sequence_number BIGINT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Snapshots table stores the most recent folded memento per aggregate.
CREATE TABLE IF NOT EXISTS %s (
    aggregate_id UUID PRIMARY KEY,
    partition_key TEXT NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    event_sequence_number BIGINT NOT NULL,
    memento_bytes BYTEA NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`,
		time.Now().Format(time.RFC3339),
		config.EventsTable,
		config.EventsTable, config.EventsTable,
		config.AggregateSequencesTable,
		config.SnapshotsTable,
	)
}

// GenerateSQLite generates a SQLite migration file.
func GenerateSQLite(config *Config) error {
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	sql := generateSQLiteSQL(config)

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}

func generateSQLiteSQL(config *Config) string {
	return fmt.Sprintf(`-- Event Sourcing Infrastructure Migration for SQLite
-- Generated: %s

CREATE TABLE IF NOT EXISTS %s (
    aggregate_id TEXT NOT NULL,
    partition_key TEXT NOT NULL,
    sequence_number INTEGER NOT NULL,
    commit_sequence_number INTEGER NOT NULL,
    payload_type TEXT NOT NULL,
    payload_bytes BLOB NOT NULL,
    timestamp_ms INTEGER NOT NULL,

    PRIMARY KEY (aggregate_id, sequence_number)
);

CREATE INDEX IF NOT EXISTS idx_%s_partition
    ON %s (partition_key, aggregate_id, sequence_number);

CREATE TABLE IF NOT EXISTS %s (
    aggregate_id TEXT PRIMARY KEY,
    partition_key TEXT NOT NULL,
    commit_sequence_number INTEGER NOT NULL,
    event_sequence_number INTEGER NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS %s (
    aggregate_id TEXT PRIMARY KEY,
    partition_key TEXT NOT NULL,
    commit_sequence_number INTEGER NOT NULL,
    event_sequence_number INTEGER NOT NULL,
    memento_bytes BLOB NOT NULL,
    updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`,
		time.Now().Format(time.RFC3339),
		config.EventsTable,
		config.EventsTable, config.EventsTable,
		config.AggregateSequencesTable,
		config.SnapshotsTable,
	)
}

// GenerateMySQL generates a MySQL/MariaDB migration file.
func GenerateMySQL(config *Config) error {
	if err := os.MkdirAll(config.OutputFolder, 0o755); err != nil {
		return fmt.Errorf("failed to create output folder: %w", err)
	}

	sql := generateMySQLSQL(config)

	outputPath := filepath.Join(config.OutputFolder, config.OutputFilename)
	if err := os.WriteFile(outputPath, []byte(sql), 0o600); err != nil {
		return fmt.Errorf("failed to write migration file: %w", err)
	}

	return nil
}

func generateMySQLSQL(config *Config) string {
	return fmt.Sprintf(`-- Event Sourcing Infrastructure Migration for MySQL/MariaDB
-- Generated: %s

-- AggregateID is stored as CHAR(36) rather than BINARY(16): MySQL has
-- no native UUID type, and the adapter writes and parses the canonical
-- text form (AggregateID.String / es.ParseAggregateID).
CREATE TABLE IF NOT EXISTS %s (
    aggregate_id CHAR(36) NOT NULL,
    partition_key VARCHAR(255) NOT NULL,
    sequence_number BIGINT NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    payload_type VARCHAR(255) NOT NULL,
    payload_bytes BLOB NOT NULL,
    timestamp_ms BIGINT NOT NULL,

    PRIMARY KEY (aggregate_id, sequence_number)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

CREATE INDEX idx_%s_partition
    ON %s (partition_key, aggregate_id, sequence_number);

CREATE TABLE IF NOT EXISTS %s (
    aggregate_id CHAR(36) PRIMARY KEY,
    partition_key VARCHAR(255) NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    event_sequence_number BIGINT NOT NULL,
    updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;

CREATE TABLE IF NOT EXISTS %s (
    aggregate_id CHAR(36) PRIMARY KEY,
    partition_key VARCHAR(255) NOT NULL,
    commit_sequence_number BIGINT NOT NULL,
    event_sequence_number BIGINT NOT NULL,
    memento_bytes BLOB NOT NULL,
    updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
		time.Now().Format(time.RFC3339),
		config.EventsTable,
		config.EventsTable, config.EventsTable,
		config.AggregateSequencesTable,
		config.SnapshotsTable,
	)
}
