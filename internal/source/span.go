package source

import (
	"fmt"
)

// Span is a half-open byte range [Start, End) inside one file.
type Span struct {
	File  FileID
	Start uint32 // в байтах включительно
	End   uint32 // в байтах не включительно
}

// At returns the zero-width span at off.
func At(file FileID, off uint32) Span {
	return Span{File: file, Start: off, End: off}
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not combined.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}

// Precedes reports whether s ends at or before next starts.
func (s Span) Precedes(next Span) bool {
	return s.End <= next.Start
}

// Overlaps reports whether the two ranges intersect. A zero-width span
// strictly inside the other counts as an intersection.
func (s Span) Overlaps(next Span) bool {
	return s.End > next.Start && next.End > s.Start
}

// Between returns the gap [s.End, next.Start). ok is false when the spans overlap.
func (s Span) Between(next Span) (gap Span, ok bool) {
	if s.End > next.Start {
		return Span{}, false
	}
	return Span{File: s.File, Start: s.End, End: next.Start}, true
}
