// Package reconstruct partitions a marker file into an ordered list of
// code, directive and assertion blocks covering the whole buffer.
//
// The pass runs in four strictly sequential phases: scan the units into a
// span queue, fill the gaps the parser left (comments, blank lines, the
// package clause), merge adjacent expansive spans, then materialize blocks.
// Any error aborts the whole pass; no partial block list is returned.
package reconstruct

import (
	"markspan/internal/marker"
	"markspan/internal/source"
	"markspan/internal/unit"
)

// Reconstruct classifies file into blocks. render turns assertion payloads
// into text; nil uses the payload verbatim.
func Reconstruct(units []unit.Unit, file *source.File, rec *marker.Recognizer, render marker.RenderFunc) ([]Block, error) {
	queue, err := scan(units, rec, render)
	if err != nil {
		return nil, err
	}
	queue, err = fill(queue, file)
	if err != nil {
		return nil, err
	}
	return materialize(merge(queue), file), nil
}

func scan(units []unit.Unit, rec *marker.Recognizer, render marker.RenderFunc) ([]Span, error) {
	queue := make([]Span, 0, len(units))
	for _, u := range units {
		m, err := rec.Classify(u)
		if err != nil {
			return nil, err
		}

		switch m.Kind {
		case marker.KindAssertion:
			text, ok := m.Assertion.Payload, true
			if render != nil {
				text, ok = render(m.Assertion)
			}
			if !ok {
				// a marker that renders to nothing vanishes, bytes included
				queue = append(queue, Span{Kind: Ignored, Range: u.Span})
				continue
			}
			queue = append(queue, Span{
				Kind:  Fixed,
				Range: u.Span,
				Text:  text,
				Block: BlockAssertion,
				Match: m.Assertion.Match,
			})

		case marker.KindDirective:
			queue = append(queue, Span{Kind: Fixed, Range: u.Span, Text: m.Text, Block: BlockDirective})

		case marker.KindPartLabel:
			queue = append(queue, Span{Kind: Ignored, Range: u.Span})

		default:
			queue = append(queue, Span{Kind: Expansive, Range: u.Span})
		}
	}
	return queue, nil
}

// fill brackets the queue with zero-width boundaries at 0 and at the end of
// the buffer, and inserts an expansive span into every gap between
// neighbours.
func fill(queue []Span, file *source.File) ([]Span, error) {
	out := make([]Span, 0, 2*len(queue)+2)
	prev := Span{Kind: Expansive, Range: source.At(file.ID, 0)}
	out = append(out, prev)

	tail := Span{Kind: Expansive, Range: source.At(file.ID, file.Size())}
	for i := 0; i <= len(queue); i++ {
		next := tail
		if i < len(queue) {
			next = queue[i]
		}
		gap, ok := prev.Range.Between(next.Range)
		if !ok {
			return nil, &OverlappingSpansError{Prev: prev.Range, Next: next.Range}
		}
		if !gap.Empty() {
			out = append(out, Span{Kind: Expansive, Range: gap})
		}
		out = append(out, next)
		prev = next
	}
	return out, nil
}

// merge joins runs of adjacent expansive spans. Fixed and ignored spans are
// boundaries and never merge.
func merge(queue []Span) []Span {
	out := make([]Span, 0, len(queue))
	for _, s := range queue {
		if n := len(out); n > 0 && s.Kind == Expansive && out[n-1].Kind == Expansive {
			out[n-1].Range = out[n-1].Range.Cover(s.Range)
			continue
		}
		out = append(out, s)
	}
	return out
}

func materialize(queue []Span, file *source.File) []Block {
	blocks := make([]Block, 0, len(queue))
	for _, s := range queue {
		switch s.Kind {
		case Fixed:
			blocks = append(blocks, Block{Kind: s.Block, Text: s.Text, Match: s.Match, Span: s.Range})
		case Expansive:
			text := file.Slice(s.Range)
			if text == "" {
				continue
			}
			blocks = append(blocks, Block{Kind: BlockCode, Text: text, Span: s.Range})
		}
	}
	return blocks
}
