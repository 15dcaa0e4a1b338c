package eventmap

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// EventInfo represents a discovered domain event struct.
type EventInfo struct {
	Name        string
	PackageName string
	ImportPath  string
	Fields      []FieldInfo
	Version     int
}

// FieldInfo represents a struct field.
type FieldInfo struct {
	Name     string
	Type     string
	JSONTag  string
	Optional bool
}

// Config configures the code generation.
type Config struct {
	InputDir    string // Directory containing domain events
	OutputDir   string // Directory where generated code will be written
	OutputFile  string // Name of the generated file (default: event_mapping.gen.go)
	PackageName string // Package name for generated code
	ModulePath  string // Go module path for generating import paths

	// MementoType is the Go type name folded by the generated Folder,
	// e.g. "ToDoList". It must be resolvable, unqualified, within
	// PackageName (either declared there or dot-imported — callers
	// typically co-locate the memento type with the generated file).
	MementoType string
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		OutputFile:  "event_mapping.gen.go",
		PackageName: "generated",
	}
}

// Generator generates event mapping code.
type Generator struct {
	config Config
	events []EventInfo
}

// NewGenerator creates a new generator with the given configuration.
func NewGenerator(config *Config) *Generator {
	return &Generator{
		config: *config,
		events: make([]EventInfo, 0),
	}
}

// Discover walks the input directory and discovers all domain event structs.
func (g *Generator) Discover() error {
	return filepath.WalkDir(g.config.InputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		version := g.extractVersion(path)

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		packageName := file.Name.Name
		importPath := g.buildImportPath(path)

		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok || !typeSpec.Name.IsExported() {
					continue
				}

				structType, ok := typeSpec.Type.(*ast.StructType)
				if !ok {
					continue
				}

				fields := g.extractFields(structType)

				event := EventInfo{
					Name:        typeSpec.Name.Name,
					PackageName: packageName,
					ImportPath:  importPath,
					Version:     version,
					Fields:      fields,
				}

				g.events = append(g.events, event)
			}
		}

		return nil
	})
}

// extractVersion extracts the version number from the directory path.
// Returns 1 if no version directory is found or if parsing fails.
func (g *Generator) extractVersion(path string) int {
	versionRegex := regexp.MustCompile(`/v(\d+)/`)
	matches := versionRegex.FindStringSubmatch(path)
	if len(matches) > 1 {
		var version int
		_, err := fmt.Sscanf(matches[1], "%d", &version)
		if err != nil || version < 1 {
			return 1
		}
		return version
	}
	return 1
}

// buildImportPath builds the import path for a given file path.
func (g *Generator) buildImportPath(filePath string) string {
	relPath, err := filepath.Rel(g.config.InputDir, filepath.Dir(filePath))
	if err != nil {
		relPath = filepath.Dir(filePath)
	}

	if g.config.ModulePath != "" {
		return filepath.Join(g.config.ModulePath, relPath)
	}

	absInput, err := filepath.Abs(g.config.InputDir)
	if err != nil {
		return filepath.ToSlash(relPath)
	}
	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return filepath.ToSlash(relPath)
	}
	relPath, err = filepath.Rel(absInput, filepath.Dir(absFile))
	if err != nil {
		return filepath.ToSlash(relPath)
	}

	return filepath.ToSlash(relPath)
}

// extractFields extracts field information from a struct type.
func (g *Generator) extractFields(structType *ast.StructType) []FieldInfo {
	fields := make([]FieldInfo, 0)

	for _, field := range structType.Fields.List {
		if len(field.Names) == 0 {
			continue
		}

		for _, name := range field.Names {
			if !name.IsExported() {
				continue
			}

			fieldInfo := FieldInfo{
				Name: name.Name,
				Type: g.typeToString(field.Type),
			}

			if field.Tag != nil {
				tag := field.Tag.Value
				tag = strings.Trim(tag, "`")
				if strings.Contains(tag, "json:") {
					jsonTagRegex := regexp.MustCompile(`json:"([^"]+)"`)
					matches := jsonTagRegex.FindStringSubmatch(tag)
					if len(matches) > 1 {
						fieldInfo.JSONTag = strings.Split(matches[1], ",")[0]
						fieldInfo.Optional = strings.Contains(matches[1], "omitempty")
					}
				}
			}

			fields = append(fields, fieldInfo)
		}
	}

	return fields
}

// typeToString converts an AST type to a string representation.
func (g *Generator) typeToString(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + g.typeToString(t.X)
	case *ast.ArrayType:
		return "[]" + g.typeToString(t.Elt)
	case *ast.MapType:
		return "map[" + g.typeToString(t.Key) + "]" + g.typeToString(t.Value)
	case *ast.SelectorExpr:
		return g.typeToString(t.X) + "." + t.Sel.Name
	default:
		return "interface{}"
	}
}

// Generate generates the Folder implementation and writes it, along
// with a test file, to the output directory.
func (g *Generator) Generate() error {
	if len(g.events) == 0 {
		return fmt.Errorf("no events discovered in %s", g.config.InputDir)
	}
	if g.config.MementoType == "" {
		return fmt.Errorf("MementoType must be set to generate a Folder")
	}

	sort.Slice(g.events, func(i, j int) bool {
		if g.events[i].Name != g.events[j].Name {
			return g.events[i].Name < g.events[j].Name
		}
		return g.events[i].Version < g.events[j].Version
	})

	if err := os.MkdirAll(g.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	code := g.generateCode()
	outputPath := filepath.Join(g.config.OutputDir, g.config.OutputFile)
	if err := os.WriteFile(outputPath, []byte(code), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	testCode := g.generateTestCode()
	testOutputPath := filepath.Join(g.config.OutputDir, g.getTestFileName())
	if err := os.WriteFile(testOutputPath, []byte(testCode), 0o600); err != nil {
		return fmt.Errorf("failed to write test file: %w", err)
	}

	return nil
}

// payloadType returns the wire discriminant for an event. Version 1
// events use their bare struct name; later versions are suffixed so a
// single Folder can dispatch multiple schema generations of the same
// event name without collision.
func payloadType(e EventInfo) string {
	if e.Version <= 1 {
		return e.Name
	}
	return fmt.Sprintf("%sV%d", e.Name, e.Version)
}

// reducerField returns the Folder struct field name for an event.
func reducerField(e EventInfo) string {
	return "On" + payloadType(e)
}

// generateCode generates the complete Folder implementation.
func (g *Generator) generateCode() string {
	var sb strings.Builder

	sb.WriteString(g.generateHeader())
	sb.WriteString("\n\n")
	sb.WriteString(g.generateImports())
	sb.WriteString("\n\n")
	sb.WriteString(g.generateFolderType())
	sb.WriteString("\n\n")
	sb.WriteString(g.generateFoldMethod())
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("var _ es.Folder[%s] = Folder{}\n", g.config.MementoType))

	return sb.String()
}

func (g *Generator) generateHeader() string {
	return fmt.Sprintf(`// Code generated by eventmap-gen. DO NOT EDIT.

package %s`, g.config.PackageName)
}

func (g *Generator) generateImports() string {
	var sb strings.Builder

	sb.WriteString("import (\n")
	sb.WriteString("\t\"encoding/json\"\n")
	sb.WriteString("\t\"fmt\"\n")
	sb.WriteString("\n")
	sb.WriteString("\t\"github.com/stratum-es/aggregatecore/es\"\n")

	importPaths := make(map[string]string)
	for _, event := range g.events {
		if event.ImportPath != "" {
			importPaths[event.ImportPath] = event.PackageName
		}
	}

	if len(importPaths) > 0 {
		sb.WriteString("\n")
		paths := make([]string, 0, len(importPaths))
		for path := range importPaths {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			alias := importPaths[path]
			sb.WriteString(fmt.Sprintf("\t%s %q\n", alias, path))
		}
	}

	sb.WriteString(")")

	return sb.String()
}

// generateFolderType generates the Folder struct: one optional reducer
// field per discovered event, so domain code only wires the events it
// actually cares about. Every field is a plain function value, not an
// interface — matching the reference codebase's preference for small
// function-typed fields over handler interfaces.
func (g *Generator) generateFolderType() string {
	var sb strings.Builder

	sb.WriteString("// Folder implements es.Folder[" + g.config.MementoType + "] by dispatching on\n")
	sb.WriteString("// payload_type. A nil reducer field leaves the memento untouched for that\n")
	sb.WriteString("// event type, which is useful for aggregates that only care about a\n")
	sb.WriteString("// subset of their own event history.\n")
	sb.WriteString("type Folder struct {\n")
	for _, event := range g.events {
		sb.WriteString(fmt.Sprintf("\t%s func(%s, %s.%s) (%s, error)\n",
			reducerField(event), g.config.MementoType, event.PackageName, event.Name, g.config.MementoType))
	}
	sb.WriteString("}")

	return sb.String()
}

// generateFoldMethod generates the Fold method that switches on
// payload_type, decodes into the concrete domain struct, and invokes
// the matching reducer field.
func (g *Generator) generateFoldMethod() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`// Fold implements es.Folder[%s].
func (f Folder) Fold(memento %s, event es.SerializedEvent) (%s, error) {
	switch event.PayloadType {
`, g.config.MementoType, g.config.MementoType, g.config.MementoType))

	for _, event := range g.events {
		pt := payloadType(event)
		field := reducerField(event)
		sb.WriteString(fmt.Sprintf("\tcase %q:\n", pt))
		sb.WriteString(fmt.Sprintf("\t\tif f.%s == nil {\n\t\t\treturn memento, nil\n\t\t}\n", field))
		sb.WriteString(fmt.Sprintf("\t\tvar payload %s.%s\n", event.PackageName, event.Name))
		sb.WriteString("\t\tif err := json.Unmarshal(event.PayloadBytes, &payload); err != nil {\n")
		sb.WriteString(fmt.Sprintf("\t\t\treturn memento, fmt.Errorf(\"unmarshal %s payload: %%w\", err)\n", pt))
		sb.WriteString("\t\t}\n")
		sb.WriteString(fmt.Sprintf("\t\treturn f.%s(memento, payload)\n", field))
	}

	sb.WriteString(`	default:
		return memento, fmt.Errorf("unknown payload type %q", event.PayloadType)
	}
}`)

	return sb.String()
}

// getTestFileName returns the test file name based on the output file name.
func (g *Generator) getTestFileName() string {
	if strings.HasSuffix(g.config.OutputFile, ".gen.go") {
		return strings.TrimSuffix(g.config.OutputFile, ".gen.go") + ".gen_test.go"
	}
	if strings.HasSuffix(g.config.OutputFile, ".go") {
		return strings.TrimSuffix(g.config.OutputFile, ".go") + "_test.go"
	}
	return g.config.OutputFile + "_test.go"
}

// generateTestCode generates unit tests exercising Fold for each
// discovered event and the unknown-payload-type error path.
func (g *Generator) generateTestCode() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`// Code generated by eventmap-gen. DO NOT EDIT.

package %s

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stratum-es/aggregatecore/es"
`, g.config.PackageName))

	importPaths := make(map[string]string)
	for _, event := range g.events {
		if event.ImportPath != "" {
			importPaths[event.ImportPath] = event.PackageName
		}
	}

	if len(importPaths) > 0 {
		sb.WriteString("\n")
		paths := make([]string, 0, len(importPaths))
		for path := range importPaths {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			alias := importPaths[path]
			sb.WriteString(fmt.Sprintf("\t%s %q\n", alias, path))
		}
	}

	sb.WriteString(")\n\n")
	sb.WriteString(g.generateTestFoldDispatch())
	sb.WriteString("\n\n")
	sb.WriteString(g.generateTestFoldNilReducer())
	sb.WriteString("\n\n")
	sb.WriteString(g.generateTestFoldUnknownType())

	return sb.String()
}

func (g *Generator) generateTestFoldDispatch() string {
	var sb strings.Builder

	sb.WriteString("// TestFold_DispatchesToReducer verifies every discovered event type\n")
	sb.WriteString("// routes to its matching reducer field.\n")
	sb.WriteString("func TestFold_DispatchesToReducer(t *testing.T) {\n")
	for _, event := range g.events {
		pt := payloadType(event)
		field := reducerField(event)
		sb.WriteString(fmt.Sprintf("\tt.Run(%q, func(t *testing.T) {\n", pt))
		sb.WriteString(fmt.Sprintf("\t\tpayload, err := json.Marshal(%s.%s{})\n", event.PackageName, event.Name))
		sb.WriteString("\t\tif err != nil {\n\t\t\tt.Fatalf(\"marshal payload: %v\", err)\n\t\t}\n\n")
		sb.WriteString("\t\tcalled := false\n")
		sb.WriteString(fmt.Sprintf("\t\tfolder := Folder{%s: func(m %s, _ %s.%s) (%s, error) {\n",
			field, g.config.MementoType, event.PackageName, event.Name, g.config.MementoType))
		sb.WriteString("\t\t\tcalled = true\n\t\t\treturn m, nil\n\t\t}}\n\n")
		sb.WriteString(fmt.Sprintf("\t\t_, err = folder.Fold(%s{}, es.SerializedEvent{PayloadType: %q, PayloadBytes: payload})\n", g.config.MementoType, pt))
		sb.WriteString("\t\tif err != nil {\n\t\t\tt.Fatalf(\"Fold() failed: %v\", err)\n\t\t}\n")
		sb.WriteString("\t\tif !called {\n\t\t\tt.Error(\"reducer was not invoked\")\n\t\t}\n")
		sb.WriteString("\t})\n")
	}
	sb.WriteString("}")

	return sb.String()
}

func (g *Generator) generateTestFoldNilReducer() string {
	if len(g.events) == 0 {
		return ""
	}
	event := g.events[0]
	pt := payloadType(event)

	return fmt.Sprintf(`// TestFold_NilReducerLeavesMementoUnchanged verifies that an event
// whose reducer field is unset passes the memento through untouched.
func TestFold_NilReducerLeavesMementoUnchanged(t *testing.T) {
	payload, err := json.Marshal(%s.%s{})
	if err != nil {
		t.Fatalf("marshal payload: %%v", err)
	}

	var folder Folder
	got, err := folder.Fold(%s{}, es.SerializedEvent{PayloadType: %q, PayloadBytes: payload})
	if err != nil {
		t.Fatalf("Fold() failed: %%v", err)
	}
	want := %s{}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fold() = %%+v, want zero value %%+v", got, want)
	}
}`, event.PackageName, event.Name, g.config.MementoType, pt, g.config.MementoType)
}

func (g *Generator) generateTestFoldUnknownType() string {
	return fmt.Sprintf(`// TestFold_UnknownPayloadType verifies Fold rejects a payload_type it
// was not generated for, rather than silently dropping the event.
func TestFold_UnknownPayloadType(t *testing.T) {
	var folder Folder
	_, err := folder.Fold(%s{}, es.SerializedEvent{PayloadType: "NotARealEvent"})
	if err == nil {
		t.Error("expected an error for an unknown payload type")
	}
}`, g.config.MementoType)
}
