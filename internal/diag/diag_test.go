package diag

import (
	"errors"
	"fmt"
	"go/scanner"
	"go/token"
	"testing"

	"markspan/internal/marker"
	"markspan/internal/reconstruct"
	"markspan/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSetWithBase("/workspace")

	userFile := fs.Add("/workspace/testdata/sample.go", []byte("a\nb\n"), 0)
	otherFile := fs.Add("/workspace/other.go", []byte("x\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     MarkNestedIgnored,
			Message:  "another",
			Primary:  source.Span{File: userFile, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     MarkMisplacedPart,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: userFile, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: otherFile, Start: 0, End: 0}, Msg: "elsewhere"},
			},
		},
		{
			Severity: SevError,
			Code:     SpanOverlap,
			Message:  "unresolvable",
			Primary:  source.Span{File: 42},
		},
	}

	expected := "note MRK3002 other.go:1:1 elsewhere\n" +
		"error MRK3002 testdata/sample.go:1:1 first line second\n" +
		"warning MRK3004 testdata/sample.go:2:1 another"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
	if got := FormatShortDiagnostics(nil, fs, true); got != "" {
		t.Fatalf("empty input rendered %q", got)
	}
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{SynParseError, "SYN2001"},
		{MarkConflicting, "MRK3001"},
		{SpanOverlap, "SPN3501"},
		{IOLoadFileError, "IO4001"},
		{ProjConfigInvalid, "PRJ5001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("Code(%d).ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if got := Code(3999).Title(); got != "Unknown error" {
		t.Errorf("unregistered code title = %q", got)
	}
}

func TestBagLimitSortDedup(t *testing.T) {
	b := NewBag(3)
	sp := func(start uint32) source.Span { return source.Span{Start: start, End: start + 1} }

	if !b.Add(NewWarning(MarkNestedIgnored, sp(5), "w")) {
		t.Fatal("first Add rejected")
	}
	b.Add(NewError(MarkConflicting, sp(1), "e"))
	b.Add(NewError(MarkConflicting, sp(1), "e again"))
	if b.Add(NewError(SpanOverlap, sp(0), "over limit")) {
		t.Fatal("Add accepted a diagnostic past the limit")
	}
	if !b.HasErrors() || !b.HasWarnings() {
		t.Fatal("expected errors and warnings")
	}

	b.Dedup()
	b.Sort()
	items := b.Items()
	if len(items) != 2 {
		t.Fatalf("Len after dedup = %d, want 2", len(items))
	}
	if items[0].Code != MarkConflicting || items[1].Code != MarkNestedIgnored {
		t.Fatalf("unexpected order: %v, %v", items[0].Code, items[1].Code)
	}

	unlimited := NewBag(0)
	for i := range 100 {
		unlimited.Add(NewWarning(MarkNestedIgnored, sp(uint32(i)), "w")) //nolint:gosec
	}
	if unlimited.Len() != 100 {
		t.Fatalf("unlimited bag Len = %d", unlimited.Len())
	}
	b.Merge(unlimited)
	if b.Len() != 102 {
		t.Fatalf("merged Len = %d, want 102", b.Len())
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	b := NewBag(0)
	r := BagReporter{Bag: b}
	rb := ReportError(r, MarkMisplacedPart, source.Span{Start: 4, End: 8}, "late label").
		WithNote(source.Span{Start: 0, End: 2}, "code here")
	rb.Emit()
	rb.Emit()
	if b.Len() != 1 {
		t.Fatalf("Len = %d, want 1", b.Len())
	}
	if got := b.Items()[0]; got.Severity != SevError || len(got.Notes) != 1 {
		t.Fatalf("unexpected diagnostic %+v", got)
	}
}

func TestFromError(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("m.go", []byte("package m\n\nvar x = \n")))
	at := func(start, end uint32) source.Span { return source.Span{File: file.ID, Start: start, End: end} }

	tests := []struct {
		name  string
		err   error
		code  Code
		span  source.Span
		notes int
	}{
		{
			name: "parse",
			err:  scanner.ErrorList{{Pos: token.Position{Offset: 19}, Msg: "expected operand"}},
			code: SynParseError,
			span: at(19, 19),
		},
		{
			name: "parse offset past end",
			err:  scanner.ErrorList{{Pos: token.Position{Offset: 500}, Msg: "eof"}},
			code: SynParseError,
			span: at(file.Size(), file.Size()),
		},
		{
			name: "conflict",
			err:  fmt.Errorf("classify: %w", &marker.ConflictingMarkersError{Span: at(11, 18), Roles: []string{"Doc", "Output"}}),
			code: MarkConflicting,
			span: at(11, 18),
		},
		{
			name:  "misplaced",
			err:   &marker.MisplacedPartLabelError{Span: at(11, 18), Name: "p", Pending: at(0, 9)},
			code:  MarkMisplacedPart,
			span:  at(11, 18),
			notes: 1,
		},
		{
			name: "shape",
			err:  &marker.UnhandledExtensionShapeError{Span: at(11, 18), Reason: "marker has a type annotation"},
			code: MarkUnhandledShape,
			span: at(11, 18),
		},
		{
			name:  "overlap",
			err:   &reconstruct.OverlappingSpansError{Prev: at(0, 10), Next: at(5, 15)},
			code:  SpanOverlap,
			span:  at(5, 15),
			notes: 1,
		},
		{
			name: "other",
			err:  errors.New("boom"),
			code: SpanInternalError,
			span: at(0, 0),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err, file)
			if len(got) != 1 {
				t.Fatalf("got %d diagnostics, want 1", len(got))
			}
			d := got[0]
			if d.Code != tt.code || d.Primary != tt.span || len(d.Notes) != tt.notes {
				t.Fatalf("got %v %s notes=%d, want %v %s notes=%d",
					d.Code.ID(), d.Primary, len(d.Notes), tt.code.ID(), tt.span, tt.notes)
			}
			if d.Severity != SevError {
				t.Fatalf("severity = %v", d.Severity)
			}
		})
	}

	if FromError(nil, file) != nil {
		t.Fatal("nil error produced diagnostics")
	}
}
