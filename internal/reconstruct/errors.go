package reconstruct

import (
	"errors"
	"fmt"

	"markspan/internal/source"
)

var ErrOverlappingSpans = errors.New("overlapping spans")

// OverlappingSpansError reports two queue entries out of order or sharing
// bytes. It always means a defect upstream: the parser or the scan broke the
// ordering invariant.
type OverlappingSpansError struct {
	Prev source.Span
	Next source.Span
}

func (e *OverlappingSpansError) Error() string {
	return fmt.Sprintf("span %s overlaps following span %s", e.Prev, e.Next)
}

func (e *OverlappingSpansError) Is(target error) bool {
	return target == ErrOverlappingSpans
}
