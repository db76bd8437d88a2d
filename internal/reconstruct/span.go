package reconstruct

import (
	"markspan/internal/marker"
	"markspan/internal/source"
)

// SpanKind tags an entry of the reconstruction queue.
type SpanKind uint8

const (
	// Expansive content is recovered later by slicing the buffer.
	Expansive SpanKind = iota + 1
	// Fixed content is already rendered; Range only keeps its position.
	Fixed
	// Ignored ranges produce no block at all.
	Ignored
)

func (k SpanKind) String() string {
	switch k {
	case Expansive:
		return "expansive"
	case Fixed:
		return "fixed"
	case Ignored:
		return "ignored"
	default:
		return "unknown"
	}
}

// Span is one entry of the reconstruction queue.
type Span struct {
	Kind  SpanKind
	Range source.Span

	// Fixed only.
	Text  string
	Block BlockKind
	Match marker.Match
}

// BlockKind classifies an output block.
type BlockKind uint8

const (
	BlockCode BlockKind = iota + 1
	BlockDirective
	BlockAssertion
)

func (k BlockKind) String() string {
	switch k {
	case BlockCode:
		return "code"
	case BlockDirective:
		return "directive"
	case BlockAssertion:
		return "assertion"
	default:
		return "unknown"
	}
}

// Block is a classified piece of the reconstructed buffer. Span is the range
// of the original buffer the block stands for.
type Block struct {
	Kind  BlockKind
	Text  string
	Match marker.Match // BlockAssertion only
	Span  source.Span
}
