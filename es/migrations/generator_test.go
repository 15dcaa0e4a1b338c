package migrations

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGeneratePostgres(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		OutputFolder:            tmpDir,
		OutputFilename:          "test_migration.sql",
		EventsTable:             "events",
		AggregateSequencesTable: "aggregate_sequences",
		SnapshotsTable:          "snapshots",
	}

	err := GeneratePostgres(&config)
	if err != nil {
		t.Fatalf("GeneratePostgres failed: %v", err)
	}

	outputPath := filepath.Join(tmpDir, config.OutputFilename)
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)

	requiredStrings := []string{
		"CREATE TABLE IF NOT EXISTS events",
		"aggregate_id UUID NOT NULL",
		"partition_key TEXT NOT NULL",
		"sequence_number BIGINT NOT NULL",
		"commit_sequence_number BIGINT NOT NULL",
		"payload_type TEXT NOT NULL",
		"payload_bytes BYTEA NOT NULL",
		"timestamp_ms BIGINT NOT NULL",
		"CREATE TABLE IF NOT EXISTS aggregate_sequences",
		"event_sequence_number BIGINT NOT NULL",
		"CREATE TABLE IF NOT EXISTS snapshots",
		"memento_bytes BYTEA NOT NULL",
	}

	for _, required := range requiredStrings {
		if !strings.Contains(sql, required) {
			t.Errorf("Generated SQL missing required string: %s", required)
		}
	}

	if !strings.Contains(sql, "idx_events_partition") {
		t.Error("Generated SQL missing partition index")
	}
}

func TestGeneratePostgres_CustomTableNames(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		OutputFolder:            tmpDir,
		OutputFilename:          "custom_migration.sql",
		EventsTable:             "custom_events",
		AggregateSequencesTable: "custom_sequences",
		SnapshotsTable:          "custom_snapshots",
	}

	err := GeneratePostgres(&config)
	if err != nil {
		t.Fatalf("GeneratePostgres failed: %v", err)
	}

	outputPath := filepath.Join(tmpDir, config.OutputFilename)
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)

	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS custom_events") {
		t.Error("Custom events table name not used")
	}
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS custom_sequences") {
		t.Error("Custom aggregate sequences table name not used")
	}
	if !strings.Contains(sql, "CREATE TABLE IF NOT EXISTS custom_snapshots") {
		t.Error("Custom snapshots table name not used")
	}
}

func TestGenerateSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		OutputFolder:            tmpDir,
		OutputFilename:          "test_migration.sql",
		EventsTable:             "events",
		AggregateSequencesTable: "aggregate_sequences",
		SnapshotsTable:          "snapshots",
	}

	if err := GenerateSQLite(&config); err != nil {
		t.Fatalf("GenerateSQLite failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, config.OutputFilename))
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	if !strings.Contains(sql, "datetime('now')") {
		t.Error("SQLite migration should use datetime('now') defaults")
	}
	if !strings.Contains(sql, "aggregate_id TEXT NOT NULL") {
		t.Error("SQLite migration should store aggregate_id as TEXT")
	}
}

func TestGenerateMySQL(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		OutputFolder:            tmpDir,
		OutputFilename:          "test_migration.sql",
		EventsTable:             "events",
		AggregateSequencesTable: "aggregate_sequences",
		SnapshotsTable:          "snapshots",
	}

	if err := GenerateMySQL(&config); err != nil {
		t.Fatalf("GenerateMySQL failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(tmpDir, config.OutputFilename))
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	sql := string(content)
	if !strings.Contains(sql, "ENGINE=InnoDB") {
		t.Error("MySQL migration should specify InnoDB engine")
	}
	if !strings.Contains(sql, "aggregate_id CHAR(36)") {
		t.Error("MySQL migration should store aggregate_id as CHAR(36)")
	}
}
