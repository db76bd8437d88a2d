// Package render provides the default assertion renderer.
package render

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"markspan/internal/marker"
)

// Options tune how tolerant assertions are displayed. Exact assertions are
// always shown verbatim.
type Options struct {
	// Trim strips leading and trailing whitespace and common indentation.
	Trim bool
	// NFC normalizes tolerant payloads to Unicode NFC.
	NFC bool
}

// DefaultOptions enables both normalizations.
func DefaultOptions() Options {
	return Options{Trim: true, NFC: true}
}

// New returns a renderer. A payload that is empty or only whitespace renders
// to nothing.
func New(opts Options) marker.RenderFunc {
	return func(a marker.Assertion) (string, bool) {
		if strings.TrimSpace(a.Payload) == "" {
			return "", false
		}
		if a.Match == marker.MatchExact {
			return a.Payload, true
		}
		text := a.Payload
		if opts.NFC {
			text = norm.NFC.String(text)
		}
		if opts.Trim {
			text = dedent(text)
		}
		return text, true
	}
}

// dedent trims surrounding blank lines, trailing spaces, and the indentation
// shared by every non-blank line.
func dedent(s string) string {
	lines := strings.Split(strings.Trim(s, "\n"), "\n")
	indent := -1
	for i, l := range lines {
		l = strings.TrimRight(l, " \t")
		lines[i] = l
		if l == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	if indent > 0 {
		for i, l := range lines {
			if len(l) >= indent {
				lines[i] = l[indent:]
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
