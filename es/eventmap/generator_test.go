package eventmap

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerator_Discover(t *testing.T) {
	config := Config{
		InputDir:    "testdata/events",
		OutputDir:   "testdata/output",
		OutputFile:  "event_mapping.gen.go",
		PackageName: "generated",
		ModulePath:  "github.com/stratum-es/aggregatecore/es/eventmap/testdata/events",
	}

	gen := NewGenerator(&config)
	err := gen.Discover()
	if err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if len(gen.events) == 0 {
		t.Fatal("No events discovered")
	}

	eventsByName := make(map[string][]EventInfo)
	for _, event := range gen.events {
		eventsByName[event.Name] = append(eventsByName[event.Name], event)
	}

	if len(eventsByName["UserRegistered"]) < 2 {
		t.Errorf("Expected UserRegistered in multiple versions, got %d", len(eventsByName["UserRegistered"]))
	}

	if len(eventsByName["UserEmailChanged"]) < 1 {
		t.Error("Expected UserEmailChanged to be discovered")
	}

	for _, event := range gen.events {
		if event.Version < 1 {
			t.Errorf("Event %s has invalid version %d", event.Name, event.Version)
		}
	}
}

func TestGenerator_ExtractVersion(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{name: "version 1 directory", path: "/some/path/v1/event.go", expected: 1},
		{name: "version 2 directory", path: "/some/path/v2/event.go", expected: 2},
		{name: "version 10 directory", path: "/some/path/v10/event.go", expected: 10},
		{name: "no version directory", path: "/some/path/event.go", expected: 1},
		{name: "nested version directory", path: "/some/path/domain/v3/events/event.go", expected: 3},
	}

	config := Config{}
	gen := NewGenerator(&config)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version := gen.extractVersion(tt.path)
			if version != tt.expected {
				t.Errorf("extractVersion(%q) = %d, want %d", tt.path, version, tt.expected)
			}
		})
	}
}

func TestGenerator_Generate(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		InputDir:    "testdata/events",
		OutputDir:   tmpDir,
		OutputFile:  "event_mapping.gen.go",
		PackageName: "generated",
		ModulePath:  "github.com/stratum-es/aggregatecore/es/eventmap/testdata/events",
		MementoType: "UserProfile",
	}

	gen := NewGenerator(&config)

	if err := gen.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	if err := gen.Generate(); err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	outputPath := filepath.Join(tmpDir, config.OutputFile)
	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read generated file: %v", err)
	}

	generatedCode := string(content)

	requiredStrings := []string{
		"package generated",
		"type Folder struct",
		"func (f Folder) Fold(memento UserProfile, event es.SerializedEvent) (UserProfile, error)",
		"OnUserRegistered",
		"OnUserRegisteredV2",
		"OnUserEmailChanged",
		`case "UserRegistered":`,
		`case "UserRegisteredV2":`,
	}

	for _, required := range requiredStrings {
		if !strings.Contains(generatedCode, required) {
			t.Errorf("Generated code missing required string: %s", required)
		}
	}

	requiredImports := []string{
		`"encoding/json"`,
		`"github.com/stratum-es/aggregatecore/es"`,
	}

	for _, imp := range requiredImports {
		if !strings.Contains(generatedCode, imp) {
			t.Errorf("Generated code missing import: %s", imp)
		}
	}
}

func TestGenerator_GenerateNoEvents(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		InputDir:    tmpDir,
		OutputDir:   tmpDir,
		OutputFile:  "event_mapping.gen.go",
		PackageName: "generated",
		MementoType: "UserProfile",
	}

	gen := NewGenerator(&config)

	if err := gen.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	err := gen.Generate()
	if err == nil {
		t.Error("Generate() should fail when no events are discovered")
	}
	if !strings.Contains(err.Error(), "no events discovered") {
		t.Errorf("Expected 'no events discovered' error, got: %v", err)
	}
}

func TestGenerator_Generate_RequiresMementoType(t *testing.T) {
	tmpDir := t.TempDir()

	config := Config{
		InputDir:   "testdata/events",
		OutputDir:  tmpDir,
		OutputFile: "event_mapping.gen.go",
	}

	gen := NewGenerator(&config)
	if err := gen.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	err := gen.Generate()
	if err == nil {
		t.Fatal("Generate() should fail without a MementoType")
	}
	if !strings.Contains(err.Error(), "MementoType") {
		t.Errorf("Expected MementoType error, got: %v", err)
	}
}
