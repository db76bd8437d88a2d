package chunk

import (
	"markspan/internal/marker"
	"markspan/internal/source"
	"markspan/internal/unit"
)

// state is the running accumulator of a single forward pass.
type state struct {
	part     string
	pending  []unit.Unit
	position uint32
}

func (s *state) span(file source.FileID, end uint32) source.Span {
	return source.Span{File: file, Start: s.position, End: end}
}

// Split walks units once and groups them into chunks. origin is the position
// the first chunk starts at, usually the start of the file.
//
// render produces each chunk's expected text; nil uses the assertion payload
// verbatim. The buffer itself is never read.
func Split(units []unit.Unit, origin source.Span, rec *marker.Recognizer, render marker.RenderFunc) (Result, error) {
	var (
		res Result
		st  = state{position: origin.Start}
	)

	for _, u := range units {
		if u.Empty() {
			continue
		}
		m, err := rec.Classify(u)
		if err != nil {
			return Result{}, err
		}

		switch m.Kind {
		case marker.KindAssertion:
			c := Chunk{
				Part:   st.part,
				Units:  st.pending,
				Marker: m.Assertion,
				Span:   st.span(origin.File, m.Span.Start),
			}
			if render != nil {
				c.Expected, c.HasExpected = render(m.Assertion)
			} else {
				c.Expected, c.HasExpected = m.Assertion.Payload, true
			}
			res.Chunks = append(res.Chunks, c)
			st.pending = nil
			st.position = m.Span.End

		case marker.KindPartLabel:
			if len(st.pending) > 0 {
				return Result{}, &marker.MisplacedPartLabelError{
					Span:    m.Span,
					Name:    m.Name,
					Pending: st.pending[0].Span,
				}
			}
			st.part = m.Name
			st.position = m.Span.End

		default:
			// directives accumulate like ordinary code
			st.pending = append(st.pending, u)
		}
	}

	if len(st.pending) > 0 {
		last := st.pending[len(st.pending)-1]
		res.Leftover = &Leftover{
			Part:  st.part,
			Units: st.pending,
			Span:  st.span(origin.File, last.Span.End),
		}
	}
	return res, nil
}
