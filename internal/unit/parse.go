package unit

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"

	"fortio.org/safecast"

	"markspan/internal/source"
)

// Parse runs go/parser over file and returns its top-level units in source
// order. Comments are not attached to any unit. The package clause and the
// import declarations are preamble, not units: Go requires them before every
// other declaration, so they could never follow a part label. The preamble
// is recovered by slicing like any other gap.
//
// A syntax error is returned as-is (a scanner.ErrorList) so callers can map
// every entry to a diagnostic.
func Parse(file *source.File) ([]Unit, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file.Path, file.Content, parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	tf := fset.File(f.Package)
	if tf == nil {
		return nil, fmt.Errorf("%s: parser returned no position table", file.Path)
	}

	units := make([]Unit, 0, len(f.Decls))
	add := func(n ast.Node) error {
		start, err := safecast.Conv[uint32](tf.Offset(n.Pos()))
		if err != nil {
			return fmt.Errorf("%s: unit start overflow: %w", file.Path, err)
		}
		end, err := safecast.Conv[uint32](tf.Offset(n.End()))
		if err != nil {
			return fmt.Errorf("%s: unit end overflow: %w", file.Path, err)
		}
		units = append(units, Unit{
			Span: source.Span{File: file.ID, Start: start, End: end},
			Node: n,
			File: file,
		})
		return nil
	}

	for _, decl := range f.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}
		if err := add(decl); err != nil {
			return nil, err
		}
	}
	return units, nil
}
