package marker

import (
	"errors"
	"fmt"
	"strings"

	"markspan/internal/source"
)

var (
	ErrConflictingMarkers      = errors.New("conflicting markers")
	ErrMisplacedPartLabel      = errors.New("misplaced part label")
	ErrUnhandledExtensionShape = errors.New("unhandled extension shape")
)

// ConflictingMarkersError reports a unit matched by more than one marker shape.
type ConflictingMarkersError struct {
	Span    source.Span
	Excerpt string
	Roles   []string
}

func (e *ConflictingMarkersError) Error() string {
	return fmt.Sprintf("%s: unit matches several marker shapes (%s): %s",
		e.Span, strings.Join(e.Roles, ", "), e.Excerpt)
}

func (e *ConflictingMarkersError) Is(target error) bool {
	return target == ErrConflictingMarkers
}

// MisplacedPartLabelError reports a part label that follows code which was
// already accumulating for the next chunk.
type MisplacedPartLabelError struct {
	Span    source.Span
	Name    string
	Pending source.Span // first accumulated unit
}

func (e *MisplacedPartLabelError) Error() string {
	return fmt.Sprintf("%s: part label %q after code starting at %s; part labels must precede the chunk's code",
		e.Span, e.Name, e.Pending)
}

func (e *MisplacedPartLabelError) Is(target error) bool {
	return target == ErrMisplacedPartLabel
}

// UnhandledExtensionShapeError reports a marker declaration carrying
// decorations markers may not have.
type UnhandledExtensionShapeError struct {
	Span    source.Span
	Excerpt string
	Reason  string
}

func (e *UnhandledExtensionShapeError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Span, e.Reason, e.Excerpt)
}

func (e *UnhandledExtensionShapeError) Is(target error) bool {
	return target == ErrUnhandledExtensionShape
}
