package reconstruct

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"markspan/internal/marker"
	"markspan/internal/source"
	"markspan/internal/unit"
)

type blockView struct {
	Kind BlockKind
	Text string
}

func views(blocks []Block) []blockView {
	out := make([]blockView, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockView{Kind: b.Kind, Text: b.Text})
	}
	return out
}

func newRecognizer(t *testing.T) *marker.Recognizer {
	t.Helper()
	rec, err := marker.NewRecognizer(marker.DefaultNames())
	if err != nil {
		t.Fatalf("recognizer: %v", err)
	}
	return rec
}

func load(t *testing.T, src string) (*source.File, []unit.Unit) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("r.go", []byte(src)))
	units, err := unit.Parse(file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return file, units
}

func run(t *testing.T, src string, render marker.RenderFunc) (*source.File, []Block) {
	t.Helper()
	file, units := load(t, src)
	blocks, err := Reconstruct(units, file, newRecognizer(t), render)
	if err != nil {
		t.Fatalf("Reconstruct() error: %v", err)
	}
	return file, blocks
}

func TestReconstructPureCodeRoundTrip(t *testing.T) {
	src := "package demo\n\n// doc\nfunc f() {}\n\n/* trailing */\n"
	_, blocks := run(t, src, nil)

	want := []blockView{{Kind: BlockCode, Text: src}}
	if diff := cmp.Diff(want, views(blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstructEmptyBuffer(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("empty.go", nil))
	blocks, err := Reconstruct(nil, file, newRecognizer(t), nil)
	if err != nil {
		t.Fatalf("Reconstruct() error: %v", err)
	}
	if len(blocks) != 0 {
		t.Errorf("got %d blocks for empty buffer", len(blocks))
	}
}

func TestReconstructMixed(t *testing.T) {
	src := `package demo

var _ = expect.Doc("hello")

// setup
var x = 1
var _ = expect.Output("ok")
var _ = expect.Part("p")
func f() {}
`
	_, blocks := run(t, src, nil)

	want := []blockView{
		{Kind: BlockCode, Text: "package demo\n\n"},
		{Kind: BlockDirective, Text: "hello"},
		{Kind: BlockCode, Text: "\n\n// setup\nvar x = 1\n"},
		{Kind: BlockAssertion, Text: "ok"},
		{Kind: BlockCode, Text: "\n"},
		{Kind: BlockCode, Text: "\nfunc f() {}\n"},
	}
	if diff := cmp.Diff(want, views(blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestReconstructDirectiveIsStable(t *testing.T) {
	for _, src := range []string{
		"package a\nvar _ = expect.Doc(\"hello\")\n",
		"package a\n// before\nvar _ = expect.Doc(`hello`) // after\nfunc g() {}\n",
	} {
		_, blocks := run(t, src, nil)
		var found bool
		for _, b := range blocks {
			if b.Kind == BlockDirective {
				found = true
				if b.Text != "hello" {
					t.Errorf("directive text = %q", b.Text)
				}
			}
		}
		if !found {
			t.Errorf("no directive block in %q", src)
		}
	}
}

func TestReconstructVanishingAssertion(t *testing.T) {
	src := "package a\nvar x = 1\nvar _ = expect.Output(\"\")\nvar y = 2\n"
	render := func(a marker.Assertion) (string, bool) {
		if a.Payload == "" {
			return "", false
		}
		return a.Payload, true
	}
	_, blocks := run(t, src, render)

	var out strings.Builder
	for _, b := range blocks {
		if b.Kind != BlockCode {
			t.Fatalf("unexpected %v block", b.Kind)
		}
		out.WriteString(b.Text)
	}
	want := "package a\nvar x = 1\n\nvar y = 2\n"
	if out.String() != want {
		t.Errorf("reconstructed %q, want %q", out.String(), want)
	}
}

func TestReconstructRenderedAssertion(t *testing.T) {
	render := func(marker.Assertion) (string, bool) { return "ok", true }
	_, blocks := run(t, "package a\nvar _ = expect.Exact(`anything`)\n", render)

	var got []Block
	for _, b := range blocks {
		if b.Kind == BlockAssertion {
			got = append(got, b)
		}
	}
	if len(got) != 1 || got[0].Text != "ok" || got[0].Match != marker.MatchExact {
		t.Errorf("assertion blocks = %+v", got)
	}
}

func TestReconstructOverlappingSpans(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("o.go", []byte(strings.Repeat("x", 20))))
	units := []unit.Unit{
		{Span: source.Span{File: file.ID, Start: 0, End: 10}, File: file},
		{Span: source.Span{File: file.ID, Start: 5, End: 15}, File: file},
	}

	blocks, err := Reconstruct(units, file, newRecognizer(t), nil)
	if !errors.Is(err, ErrOverlappingSpans) {
		t.Fatalf("expected ErrOverlappingSpans, got %v", err)
	}
	if blocks != nil {
		t.Error("no partial block list expected")
	}
	var oe *OverlappingSpansError
	if !errors.As(err, &oe) {
		t.Fatalf("expected *OverlappingSpansError, got %T", err)
	}
	if oe.Prev.Start != 0 || oe.Prev.End != 10 || oe.Next.Start != 5 || oe.Next.End != 15 {
		t.Errorf("error ranges = %v, %v", oe.Prev, oe.Next)
	}
}

func TestReconstructUnitPastEndOfBuffer(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("short.go", []byte("abc")))
	units := []unit.Unit{{Span: source.Span{File: file.ID, Start: 1, End: 9}, File: file}}
	if _, err := Reconstruct(units, file, newRecognizer(t), nil); !errors.Is(err, ErrOverlappingSpans) {
		t.Errorf("expected ErrOverlappingSpans against the tail boundary, got %v", err)
	}
}

func TestReconstructConflictingMarkers(t *testing.T) {
	file, units := load(t, "package a\nvar _ = expect.Doc(`x`)\n")
	names := marker.DefaultNames()
	names.Tolerant = append(names.Tolerant, "Doc")
	rec, err := marker.NewRecognizer(names)
	if err != nil {
		t.Fatalf("recognizer: %v", err)
	}

	blocks, err := Reconstruct(units, file, rec, nil)
	if !errors.Is(err, marker.ErrConflictingMarkers) {
		t.Fatalf("expected ErrConflictingMarkers, got %v", err)
	}
	if blocks != nil {
		t.Error("no partial block list expected")
	}
	if !strings.Contains(err.Error(), "expect.Doc(`x`)") {
		t.Errorf("error should quote the source: %v", err)
	}
}

func TestMergeZeroWidthGap(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("m.go", []byte("abcdefghij")))
	queue := []Span{
		{Kind: Expansive, Range: source.Span{File: file.ID, Start: 0, End: 5}},
		{Kind: Expansive, Range: source.Span{File: file.ID, Start: 5, End: 10}},
	}

	filled, err := fill(queue, file)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	merged := merge(filled)
	if len(merged) != 1 {
		t.Fatalf("merged into %d spans, want 1", len(merged))
	}
	blocks := materialize(merged, file)
	want := []blockView{{Kind: BlockCode, Text: "abcdefghij"}}
	if diff := cmp.Diff(want, views(blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeKeepsFixedAndIgnoredAsBoundaries(t *testing.T) {
	queue := []Span{
		{Kind: Expansive, Range: source.Span{Start: 0, End: 2}},
		{Kind: Ignored, Range: source.Span{Start: 2, End: 4}},
		{Kind: Expansive, Range: source.Span{Start: 4, End: 6}},
		{Kind: Fixed, Range: source.Span{Start: 6, End: 8}, Block: BlockDirective},
		{Kind: Expansive, Range: source.Span{Start: 8, End: 9}},
		{Kind: Expansive, Range: source.Span{Start: 9, End: 12}},
	}
	got := merge(queue)
	kinds := make([]SpanKind, 0, len(got))
	for _, s := range got {
		kinds = append(kinds, s.Kind)
	}
	want := []SpanKind{Expansive, Ignored, Expansive, Fixed, Expansive}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if last := got[len(got)-1].Range; last.Start != 8 || last.End != 12 {
		t.Errorf("merged tail = %v, want 8-12", last)
	}
}

// Every byte of the buffer is covered exactly once by a block or by a range
// that was dropped on purpose.
func TestReconstructCompleteness(t *testing.T) {
	src := `package demo

import "fmt"

var _ = expect.Doc(` + "`intro`" + `)

func init() { fmt.Println("hi") } // trailing

var _ = expect.Output("hi")
var _ = expect.Output("")
var _ = expect.Part("second")

/* block comment */
var _ = expect.Exact("bye")
`
	render := func(a marker.Assertion) (string, bool) { return a.Payload, a.Payload != "" }
	file, units := load(t, src)
	rec := newRecognizer(t)

	queue, err := scan(units, rec, render)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	queue, err = fill(queue, file)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	queue = merge(queue)

	var pos uint32
	for _, s := range queue {
		if s.Range.Start != pos {
			t.Fatalf("span %v (%v) starts at %d, want %d", s.Range, s.Kind, s.Range.Start, pos)
		}
		pos = s.Range.End
	}
	if pos != file.Size() {
		t.Errorf("queue ends at %d, buffer size %d", pos, file.Size())
	}

	blocks := materialize(queue, file)
	for i := 1; i < len(blocks); i++ {
		if !blocks[i-1].Span.Precedes(blocks[i].Span) {
			t.Errorf("block %d (%v) out of order after %v", i, blocks[i].Span, blocks[i-1].Span)
		}
	}
}
