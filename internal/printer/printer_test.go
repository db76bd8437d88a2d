package printer

import (
	"bytes"
	"strings"
	"testing"

	"markspan/internal/marker"
	"markspan/internal/reconstruct"
	"markspan/internal/render"
	"markspan/internal/source"
	"markspan/internal/unit"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "`plain`"},
		{"two\nlines", "`two\nlines`"},
		{"has `tick`", "\"has `tick`\""},
		{"tab\there", "`tab\there`"},
		{"bell\a", "\"bell\\a\""},
	}
	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	names := marker.DefaultNames()
	tests := []struct {
		block reconstruct.Block
		want  string
	}{
		{reconstruct.Block{Kind: reconstruct.BlockCode, Text: "func f() {}\n"}, "func f() {}\n"},
		{reconstruct.Block{Kind: reconstruct.BlockDirective, Text: "hello"}, "var _ = expect.Doc(`hello`)"},
		{reconstruct.Block{Kind: reconstruct.BlockAssertion, Text: "ok", Match: marker.MatchTolerant}, "var _ = expect.Output(`ok`)"},
		{reconstruct.Block{Kind: reconstruct.BlockAssertion, Text: "ok", Match: marker.MatchExact}, "var _ = expect.Exact(`ok`)"},
	}
	for _, tt := range tests {
		if got := Wrap(tt.block, names); got != tt.want {
			t.Errorf("Wrap(%+v) = %q, want %q", tt.block, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	src := "package demo\n\n// intro\nvar _ = expect.Doc(`hello`)\n\nfunc f() {}\n\nvar _ = expect.Output(`hi`)\nvar _ = expect.Exact(`bye`)\n"

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("rt.go", []byte(src)))
	units, err := unit.Parse(file)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	rec, err := marker.NewRecognizer(marker.DefaultNames())
	if err != nil {
		t.Fatalf("recognizer: %v", err)
	}
	blocks, err := reconstruct.Reconstruct(units, file, rec, render.New(render.DefaultOptions()))
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}

	var buf bytes.Buffer
	if err := Print(&buf, blocks, marker.DefaultNames()); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if diff := Diff(src, buf.String()); diff != "" {
		t.Errorf("round trip differs (-original +printed):\n%s", diff)
	}
	if got := String(blocks, marker.DefaultNames()); got != buf.String() {
		t.Errorf("String() and Print() disagree")
	}
}

func TestDiffReportsChangedLine(t *testing.T) {
	d := Diff("a\nb\nc", "a\nB\nc")
	if d == "" || !strings.Contains(d, "B") {
		t.Errorf("Diff() = %q", d)
	}
	if Diff("same", "same") != "" {
		t.Error("identical input must produce empty diff")
	}
}

func TestDroppedMarkerSeparator(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "vanished assertion between declarations",
			src:  "package p\n\nvar a = 1; var _ = expect.Output(\"\"); var b = 2\n",
			want: "package p\n\nvar a = 1;  var b = 2\n",
		},
		{
			name: "part label between declarations",
			src:  "package p\n\nvar a = 1; var _ = expect.Part(\"x\"); var b = 2\n",
			want: "package p\n\nvar a = 1;  var b = 2\n",
		},
		{
			name: "marker on its own line",
			src:  "package p\n\nvar a = 1\nvar _ = expect.Output(\"\")\nvar b = 2\n",
			want: "package p\n\nvar a = 1\n\nvar b = 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("p.go", []byte(tt.src)))
			units, err := unit.Parse(file)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			rec, err := marker.NewRecognizer(marker.DefaultNames())
			if err != nil {
				t.Fatalf("recognizer: %v", err)
			}
			blocks, err := reconstruct.Reconstruct(units, file, rec, render.New(render.DefaultOptions()))
			if err != nil {
				t.Fatalf("reconstruct: %v", err)
			}
			got := String(blocks, marker.DefaultNames())
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if _, err := unit.Parse(fs.Get(fs.AddVirtual("printed.go", []byte(got)))); err != nil {
				t.Errorf("printed text does not parse: %v", err)
			}
		})
	}
}
