// Package chunk pairs the code of a marker file with the assertions that
// check it.
//
// Ordinary units accumulate until an assertion marker closes them into a
// chunk. A part label names every following chunk until the next label.
package chunk

import (
	"markspan/internal/marker"
	"markspan/internal/source"
	"markspan/internal/unit"
)

// Chunk is the code accumulated since the previous assertion together with
// the assertion closing it.
type Chunk struct {
	Part   string // "" when no part label is in effect
	Units  []unit.Unit
	Marker marker.Assertion
	// Span runs from the end of the previous marker (or the origin) to the
	// start of the closing assertion.
	Span source.Span

	// Expected is the rendered assertion text. HasExpected is false when the
	// marker renders to nothing.
	Expected    string
	HasExpected bool
}

// Leftover is trailing code that no assertion closes.
type Leftover struct {
	Part  string
	Units []unit.Unit
	Span  source.Span
}

// Result is the outcome of Split.
type Result struct {
	Chunks   []Chunk
	Leftover *Leftover
}
