// Package unit turns a Go source file into the ordered list of top-level
// units the marker passes consume.
//
// go/parser records declaration ranges without their comments or the blank
// lines around them; the gaps are recovered later by slicing the buffer.
package unit

import (
	"go/ast"
	"go/token"

	"fortio.org/safecast"

	"markspan/internal/source"
)

// Unit is one top-level declaration.
type Unit struct {
	Span source.Span
	Node ast.Node
	File *source.File
}

// Empty reports whether the unit declares nothing, e.g. `var ()`.
func (u Unit) Empty() bool {
	if d, ok := u.Node.(*ast.GenDecl); ok {
		return len(d.Specs) == 0
	}
	return u.Span.Empty()
}

// Text returns the unit's source text.
func (u Unit) Text() string {
	if u.File == nil {
		return ""
	}
	return u.File.Slice(u.Span)
}

// SpanOf maps a node nested inside the unit to its byte range.
// Positions inside one token.File differ by exactly their byte distance,
// so the unit's own span anchors the conversion.
func (u Unit) SpanOf(n ast.Node) source.Span {
	if u.Node == nil || n == nil {
		return u.Span
	}
	delta := func(p token.Pos) (uint32, error) {
		return safecast.Conv[uint32](max(int(p)-int(u.Node.Pos()), 0))
	}
	start, err := delta(n.Pos())
	if err != nil {
		return u.Span
	}
	end, err := delta(n.End())
	if err != nil {
		return u.Span
	}
	return source.Span{
		File:  u.Span.File,
		Start: u.Span.Start + start,
		End:   u.Span.Start + end,
	}
}

// Label is a short human description such as "func main" or "var x".
func (u Unit) Label() string {
	switch d := u.Node.(type) {
	case *ast.FuncDecl:
		if d.Recv != nil && len(d.Recv.List) > 0 {
			return "method " + d.Name.Name
		}
		return "func " + d.Name.Name
	case *ast.GenDecl:
		kw := d.Tok.String()
		if len(d.Specs) == 0 {
			return kw + " ()"
		}
		var name string
		switch s := d.Specs[0].(type) {
		case *ast.ValueSpec:
			if len(s.Names) > 0 {
				name = s.Names[0].Name
			}
		case *ast.TypeSpec:
			name = s.Name.Name
		case *ast.ImportSpec:
			name = s.Path.Value
		}
		if len(d.Specs) > 1 {
			return kw + " (" + name + ", ...)"
		}
		return kw + " " + name
	case *ast.BadDecl:
		return "bad declaration"
	}
	return "unit"
}
