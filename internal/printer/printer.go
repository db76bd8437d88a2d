// Package printer writes reconstructed blocks back out as a marker file.
package printer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/go-cmp/cmp"

	"markspan/internal/marker"
	"markspan/internal/reconstruct"
)

// Print concatenates blocks. Code is written verbatim; directives and
// assertions are wrapped back into their marker declaration.
func Print(w io.Writer, blocks []reconstruct.Block, names marker.Names) error {
	bw := bufio.NewWriter(w)
	for i := range blocks {
		if _, err := bw.WriteString(piece(blocks, i, names)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String is Print into a string.
func String(blocks []reconstruct.Block, names marker.Names) string {
	var sb strings.Builder
	for i := range blocks {
		sb.WriteString(piece(blocks, i, names))
	}
	return sb.String()
}

// piece renders blocks[i]. A code block that starts after a hole left by a
// dropped marker loses the `;` that terminated that marker: `a; ; b` does
// not parse at top level.
func piece(blocks []reconstruct.Block, i int, names marker.Names) string {
	b := blocks[i]
	if b.Kind != reconstruct.BlockCode {
		return Wrap(b, names)
	}
	var prevEnd uint32
	if i > 0 {
		prevEnd = blocks[i-1].Span.End
	}
	if b.Span.Start <= prevEnd {
		return b.Text
	}
	return dropSeparator(b.Text)
}

func dropSeparator(s string) string {
	rest := strings.TrimLeft(s, " \t")
	if !strings.HasPrefix(rest, ";") {
		return s
	}
	return s[:len(s)-len(rest)] + rest[1:]
}

// Wrap renders a single block.
func Wrap(b reconstruct.Block, names marker.Names) string {
	var name string
	switch b.Kind {
	case reconstruct.BlockCode:
		return b.Text
	case reconstruct.BlockDirective:
		name = names.Primary(marker.KindDirective, 0)
	case reconstruct.BlockAssertion:
		name = names.Primary(marker.KindAssertion, b.Match)
	default:
		return b.Text
	}
	return fmt.Sprintf("var _ = %s.%s(%s)", names.Qualifier, name, Quote(b.Text))
}

// Quote prefers a raw string literal and falls back to an interpreted one
// when the text cannot be written raw.
func Quote(s string) string {
	if !strconv.CanBackquote(strings.ReplaceAll(s, "\n", "")) {
		return strconv.Quote(s)
	}
	return "`" + s + "`"
}

// Diff returns a line diff between the original buffer and the printed
// reconstruction, or "" when they are identical.
func Diff(original, printed string) string {
	if original == printed {
		return ""
	}
	return cmp.Diff(strings.Split(original, "\n"), strings.Split(printed, "\n"))
}
