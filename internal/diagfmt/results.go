package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"markspan/internal/chunk"
	"markspan/internal/reconstruct"
	"markspan/internal/source"
)

type ChunkOutput struct {
	Part        string       `json:"part,omitempty"`
	Location    LocationJSON `json:"location"`
	Units       []string     `json:"units"`
	Match       string       `json:"match"`
	Payload     string       `json:"payload"`
	Expected    *string      `json:"expected"`
	MarkerRange LocationJSON `json:"marker"`
}

type LeftoverOutput struct {
	Part     string       `json:"part,omitempty"`
	Location LocationJSON `json:"location"`
	Units    []string     `json:"units"`
}

type ChunksOutput struct {
	File     string          `json:"file"`
	Chunks   []ChunkOutput   `json:"chunks"`
	Leftover *LeftoverOutput `json:"leftover,omitempty"`
}

type BlockOutput struct {
	Kind     string       `json:"kind"`
	Match    string       `json:"match,omitempty"`
	Text     string       `json:"text"`
	Location LocationJSON `json:"location"`
}

type BlocksOutput struct {
	File   string        `json:"file"`
	Blocks []BlockOutput `json:"blocks"`
}

// FormatChunksPretty выводит чанки деревом: код чанка, затем закрывающий маркер.
func FormatChunksPretty(w io.Writer, res chunk.Result, file *source.File, fs *source.FileSet) error {
	fmt.Fprintf(w, "%s (%d chunks)\n", formatPath(file, PathModeAuto, fs.BaseDir()), len(res.Chunks))
	for i, c := range res.Chunks {
		fmt.Fprintf(w, "Chunk[%d]", i)
		if c.Part != "" {
			fmt.Fprintf(w, " part %q", c.Part)
		}
		fmt.Fprintf(w, " (span: %s)\n", formatSpan(c.Span, fs))
		for _, u := range c.Units {
			fmt.Fprintf(w, "├─ %s (span: %s)\n", u.Label(), formatSpan(u.Span, fs))
		}
		expected := "<nothing>"
		if c.HasExpected {
			expected = fmt.Sprintf("%q", c.Expected)
		}
		fmt.Fprintf(w, "└─ expect %s: %s (span: %s)\n", c.Marker.Match, expected, formatSpan(c.Marker.Span, fs))
	}
	if lo := res.Leftover; lo != nil {
		fmt.Fprintf(w, "Leftover")
		if lo.Part != "" {
			fmt.Fprintf(w, " part %q", lo.Part)
		}
		fmt.Fprintf(w, " (span: %s)\n", formatSpan(lo.Span, fs))
		for i, u := range lo.Units {
			branch := "├─"
			if i == len(lo.Units)-1 {
				branch = "└─"
			}
			fmt.Fprintf(w, "%s %s (span: %s)\n", branch, u.Label(), formatSpan(u.Span, fs))
		}
	}
	return nil
}

// BuildChunksOutput формирует структуру JSON-вывода чанков.
func BuildChunksOutput(res chunk.Result, file *source.File, fs *source.FileSet) ChunksOutput {
	out := ChunksOutput{
		File:   formatPath(file, PathModeAuto, fs.BaseDir()),
		Chunks: make([]ChunkOutput, 0, len(res.Chunks)),
	}
	for _, c := range res.Chunks {
		co := ChunkOutput{
			Part:        c.Part,
			Location:    makeLocation(c.Span, fs, PathModeAuto, true),
			Units:       labels(c.Units),
			Match:       c.Marker.Match.String(),
			Payload:     c.Marker.Payload,
			MarkerRange: makeLocation(c.Marker.Span, fs, PathModeAuto, true),
		}
		if c.HasExpected {
			expected := c.Expected
			co.Expected = &expected
		}
		out.Chunks = append(out.Chunks, co)
	}
	if lo := res.Leftover; lo != nil {
		out.Leftover = &LeftoverOutput{
			Part:     lo.Part,
			Location: makeLocation(lo.Span, fs, PathModeAuto, true),
			Units:    labels(lo.Units),
		}
	}
	return out
}

// FormatChunksJSON выводит чанки в JSON формате
func FormatChunksJSON(w io.Writer, res chunk.Result, file *source.File, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildChunksOutput(res, file, fs))
}

// FormatBlocksPretty выводит блоки реконструкции по одному на строку,
// текст блока обрезан до первой строки.
func FormatBlocksPretty(w io.Writer, blocks []reconstruct.Block, file *source.File, fs *source.FileSet) error {
	fmt.Fprintf(w, "%s (%d blocks)\n", formatPath(file, PathModeAuto, fs.BaseDir()), len(blocks))
	for i, b := range blocks {
		kind := b.Kind.String()
		if b.Kind == reconstruct.BlockAssertion {
			kind += "/" + b.Match.String()
		}
		fmt.Fprintf(w, "%3d: %-20s %-12s %q\n", i+1, kind, formatSpan(b.Span, fs), firstLine(b.Text))
	}
	return nil
}

// BuildBlocksOutput формирует структуру JSON-вывода блоков.
func BuildBlocksOutput(blocks []reconstruct.Block, file *source.File, fs *source.FileSet) BlocksOutput {
	out := BlocksOutput{
		File:   formatPath(file, PathModeAuto, fs.BaseDir()),
		Blocks: make([]BlockOutput, 0, len(blocks)),
	}
	for _, b := range blocks {
		bo := BlockOutput{
			Kind:     b.Kind.String(),
			Text:     b.Text,
			Location: makeLocation(b.Span, fs, PathModeAuto, true),
		}
		if b.Kind == reconstruct.BlockAssertion {
			bo.Match = b.Match.String()
		}
		out.Blocks = append(out.Blocks, bo)
	}
	return out
}

// FormatBlocksJSON выводит блоки в JSON формате
func FormatBlocksJSON(w io.Writer, blocks []reconstruct.Block, file *source.File, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildBlocksOutput(blocks, file, fs))
}

func formatSpan(sp source.Span, fs *source.FileSet) string {
	start, end := fs.Resolve(sp)
	return start.String() + "-" + end.String()
}

func labels[U interface{ Label() string }](units []U) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.Label())
	}
	return out
}

func firstLine(s string) string {
	s = strings.TrimLeft(s, "\n")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
