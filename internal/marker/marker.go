// Package marker recognizes the marker declarations of a marker file.
//
// A marker is a top-level declaration of the form
//
//	var _ = expect.Output(`text`)
//
// where the qualifier and the function name decide its role: a tolerant or
// exact assertion, a narrative directive, or a part label. Everything else is
// ordinary code.
package marker

import "markspan/internal/source"

// Kind is the classification of a unit.
type Kind uint8

const (
	KindNone Kind = iota
	KindAssertion
	KindDirective
	KindPartLabel
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAssertion:
		return "assertion"
	case KindDirective:
		return "directive"
	case KindPartLabel:
		return "part"
	default:
		return "unknown"
	}
}

// Match selects how an assertion payload is compared against captured output.
type Match uint8

const (
	MatchTolerant Match = iota + 1 // whitespace-insensitive
	MatchExact                     // byte-for-byte
)

func (m Match) String() string {
	switch m {
	case MatchTolerant:
		return "tolerant"
	case MatchExact:
		return "exact"
	default:
		return "unknown"
	}
}

// Assertion is the payload of an assertion marker.
type Assertion struct {
	Match   Match
	Payload string
	Span    source.Span
}

// Marker is the result of classifying one unit.
type Marker struct {
	Kind      Kind
	Span      source.Span
	Assertion Assertion // KindAssertion
	Text      string    // KindDirective
	Name      string    // KindPartLabel
}

// RenderFunc turns an assertion payload into display text. ok is false when
// the marker has nothing to show (an empty placeholder, for instance); such a
// marker still closes its chunk.
type RenderFunc func(a Assertion) (text string, ok bool)
