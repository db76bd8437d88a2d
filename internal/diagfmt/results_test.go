package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"markspan/internal/chunk"
	"markspan/internal/marker"
	"markspan/internal/reconstruct"
	"markspan/internal/render"
	"markspan/internal/source"
	"markspan/internal/unit"
)

const sample = `package demo

var _ = expect.Part("greeting")

func main() { println("hi") }

var _ = expect.Output(` + "`hi`" + `)

var _ = expect.Exact("")

func tail() {}
`

func load(t *testing.T) (*source.FileSet, *source.File, []unit.Unit, *marker.Recognizer) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("demo.go", []byte(sample)))
	units, err := unit.Parse(file)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	rec, err := marker.NewRecognizer(marker.DefaultNames())
	if err != nil {
		t.Fatalf("NewRecognizer: %v", err)
	}
	return fs, file, units, rec
}

func TestFormatChunks(t *testing.T) {
	fs, file, units, rec := load(t)
	res, err := chunk.Split(units, source.At(file.ID, 0), rec, render.New(render.DefaultOptions()))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	var buf bytes.Buffer
	if err := FormatChunksPretty(&buf, res, file, fs); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"demo.go (2 chunks)\n",
		"Chunk[0] part \"greeting\"",
		"├─ func main",
		"└─ expect tolerant: \"hi\"",
		"└─ expect exact: <nothing>",
		"Leftover part \"greeting\"",
		"└─ func tail",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := FormatChunksJSON(&buf, res, file, fs); err != nil {
		t.Fatal(err)
	}
	var decoded ChunksOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded.Chunks) != 2 || decoded.Leftover == nil {
		t.Fatalf("unexpected JSON shape: %s", buf.String())
	}
	if e := decoded.Chunks[0].Expected; e == nil || *e != "hi" {
		t.Errorf("chunk 0 expected = %v", e)
	}
	if decoded.Chunks[1].Expected != nil {
		t.Errorf("chunk 1 should render nothing")
	}
	if got := decoded.Chunks[0].Units; len(got) != 1 || got[0] != "func main" {
		t.Errorf("chunk 0 units = %v", got)
	}
}

func TestFormatBlocks(t *testing.T) {
	fs, file, units, rec := load(t)
	blocks, err := reconstruct.Reconstruct(units, file, rec, render.New(render.DefaultOptions()))
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}

	var buf bytes.Buffer
	if err := FormatBlocksPretty(&buf, blocks, file, fs); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "assertion/tolerant") {
		t.Errorf("pretty output lacks the assertion block:\n%s", buf.String())
	}

	buf.Reset()
	if err := FormatBlocksJSON(&buf, blocks, file, fs); err != nil {
		t.Fatal(err)
	}
	var decoded BlocksOutput
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(decoded.Blocks) != len(blocks) {
		t.Fatalf("got %d blocks, want %d", len(decoded.Blocks), len(blocks))
	}
	for i, b := range decoded.Blocks {
		if b.Kind != blocks[i].Kind.String() || b.Text != blocks[i].Text {
			t.Errorf("block %d = %+v", i, b)
		}
	}
}
