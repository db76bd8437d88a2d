package driver

import (
	"markspan/internal/marker"
	"markspan/internal/printer"
	"markspan/internal/reconstruct"
	"markspan/internal/source"
	"markspan/internal/unit"
)

// roundTrip prints blocks, reconstructs the printed text, and prints it
// again. The two prints must agree: a printed file is its own fixed point.
// Part labels and vanished assertions are dropped by the first print, so the
// original buffer itself is not the reference.
func roundTrip(blocks []reconstruct.Block, file *source.File, names marker.Names) string {
	first := printer.String(blocks, names)

	fs := source.NewFileSet()
	again := fs.Get(fs.AddVirtual(file.Path, []byte(first)))
	units, err := unit.Parse(again)
	if err != nil {
		return "printed blocks do not parse: " + err.Error()
	}
	rec, err := marker.NewRecognizer(names)
	if err != nil {
		return err.Error()
	}
	// payloads were rendered by the first pass; keep them verbatim now
	reblocks, err := reconstruct.Reconstruct(units, again, rec, nil)
	if err != nil {
		return "printed blocks do not reconstruct: " + err.Error()
	}
	return printer.Diff(first, printer.String(reblocks, names))
}
