package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"markspan/internal/diag"
	"markspan/internal/source"
)

// TestJSONBasic проверяет базовое JSON форматирование
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	content := []byte("package p\n\nfunc f() {}\nvar _ = expect.Part(\"x\")\n")
	fileID := fs.AddVirtual("dir/test.go", content)

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.MarkMisplacedPart, source.Span{File: fileID, Start: 23, End: 47}, "late label").
		WithNote(source.Span{File: fileID, Start: 11, End: 22}, "code here"))

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	// Парсим JSON чтобы убедиться что он валидный
	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" || d.Code != "MRK3002" || d.Message != "late label" {
		t.Errorf("unexpected header: %+v", d)
	}
	if d.Location.File != "test.go" {
		t.Errorf("Expected file=test.go, got %s", d.Location.File)
	}
	if d.Location.StartLine != 4 || d.Location.StartCol != 1 || d.Location.EndLine != 4 {
		t.Errorf("unexpected positions: %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartLine != 3 {
		t.Errorf("unexpected notes: %+v", d.Notes)
	}
}

func TestJSONMaxAndOmittedFields(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("a.go", []byte("package a\n"))

	bag := diag.NewBag(0)
	for range 3 {
		bag.Add(diag.NewWarning(diag.MarkNestedIgnored, source.At(fileID, 0), "w").
			WithNote(source.At(fileID, 0), "n"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 2})
	if out.Count != 2 {
		t.Fatalf("Count = %d, want 2", out.Count)
	}
	for _, d := range out.Diagnostics {
		if d.Notes != nil {
			t.Errorf("notes included without IncludeNotes")
		}
		if d.Location.StartLine != 0 {
			t.Errorf("positions included without IncludePositions")
		}
	}
}
