package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"markspan/internal/diag"
	"markspan/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, gutter, caret, bold *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgGreen),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgRed),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^^^ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		header := fmt.Sprintf("%s %s", d.Severity, d.Code.ID())
		fmt.Fprintf(w, "%s: %s: %s\n",
			p.bold.Sprint(location(fs, d.Primary, opts.PathMode)),
			p.severity(d.Severity).Sprint(header),
			d.Message)
		writeSnippet(w, fs, d.Primary, int(opts.Context), p)

		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n",
				p.note.Sprint("note:"),
				location(fs, n.Span, opts.PathMode),
				n.Msg)
			writeSnippet(w, fs, n.Span, 0, p)
		}
	}
}

func location(fs *source.FileSet, sp source.Span, mode PathMode) string {
	if int(sp.File) >= fs.Len() {
		return "<unknown>"
	}
	start, _ := fs.Resolve(sp)
	path := formatPath(fs.Get(sp.File), mode, fs.BaseDir())
	return path + ":" + start.String()
}

func writeSnippet(w io.Writer, fs *source.FileSet, sp source.Span, context int, p palette) {
	if int(sp.File) >= fs.Len() {
		return
	}
	f := fs.Get(sp.File)
	start, end := fs.Resolve(sp)

	firstLine := start.Line
	if context > 0 && int(firstLine) > context {
		firstLine -= uint32(context) //nolint:gosec
	} else if context > 0 {
		firstLine = 1
	}
	lastLine := start.Line + uint32(max(context, 0)) //nolint:gosec
	total := uint32(len(f.LineIdx)) + 1              //nolint:gosec
	lastLine = min(lastLine, total)

	gutterWidth := len(fmt.Sprint(lastLine))
	pad := strings.Repeat(" ", gutterWidth)
	for ln := firstLine; ln <= lastLine; ln++ {
		line := expandTabs(f.GetLine(ln))
		fmt.Fprintf(w, " %s %s %s\n",
			p.gutter.Sprintf("%*d", gutterWidth, ln), p.gutter.Sprint("|"), line)
		if ln != start.Line {
			continue
		}
		raw := f.GetLine(ln)
		col := min(int(start.Col)-1, len(raw))
		lead := runewidth.StringWidth(expandTabs(raw[:col]))
		width := 1
		if end.Line == start.Line && end.Col > start.Col {
			stop := min(int(end.Col)-1, len(raw))
			width = max(runewidth.StringWidth(expandTabs(raw[:stop]))-lead, 1)
		} else if end.Line > start.Line {
			width = max(runewidth.StringWidth(line)-lead, 1)
		}
		fmt.Fprintf(w, " %s %s %s%s\n", pad, p.gutter.Sprint("|"),
			strings.Repeat(" ", lead), p.caret.Sprint(strings.Repeat("^", width)))
	}
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
