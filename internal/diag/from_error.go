package diag

import (
	"errors"
	"fmt"
	"go/scanner"
	"io/fs"
	"strings"

	"fortio.org/safecast"

	"markspan/internal/marker"
	"markspan/internal/reconstruct"
	"markspan/internal/source"
)

// FromError maps an error returned by a markspan pass over file to
// diagnostics. Known error types keep their spans; anything else becomes a
// single error anchored at the start of file. file may be nil for errors
// raised before the file was loaded.
func FromError(err error, file *source.File) []Diagnostic {
	if err == nil {
		return nil
	}
	var origin source.Span
	if file != nil {
		origin = source.At(file.ID, 0)
	}

	var (
		list      scanner.ErrorList
		conflict  *marker.ConflictingMarkersError
		misplaced *marker.MisplacedPartLabelError
		shape     *marker.UnhandledExtensionShapeError
		overlap   *reconstruct.OverlappingSpansError
		pathErr   *fs.PathError
	)
	switch {
	case errors.As(err, &list):
		out := make([]Diagnostic, 0, len(list))
		for _, e := range list {
			out = append(out, NewError(SynParseError, scannerSpan(e, file, origin), e.Msg))
		}
		return out
	case errors.As(err, &conflict):
		msg := "unit matches several marker shapes"
		if len(conflict.Roles) > 0 {
			msg += ": " + strings.Join(conflict.Roles, ", ")
		}
		return []Diagnostic{NewError(MarkConflicting, conflict.Span, msg)}
	case errors.As(err, &misplaced):
		d := NewError(MarkMisplacedPart, misplaced.Span,
			fmt.Sprintf("part label %q must precede the code of its chunk", misplaced.Name))
		if !misplaced.Pending.Empty() {
			d = d.WithNote(misplaced.Pending, "code accumulated from here")
		}
		return []Diagnostic{d}
	case errors.As(err, &shape):
		return []Diagnostic{NewError(MarkUnhandledShape, shape.Span, shape.Reason)}
	case errors.As(err, &overlap):
		d := NewError(SpanOverlap, overlap.Next, "span overlaps the preceding span").
			WithNote(overlap.Prev, "preceding span")
		return []Diagnostic{d}
	case errors.As(err, &pathErr):
		return []Diagnostic{NewError(IOLoadFileError, origin, err.Error())}
	}
	return []Diagnostic{NewError(SpanInternalError, origin, err.Error())}
}

func scannerSpan(e *scanner.Error, file *source.File, origin source.Span) source.Span {
	if file == nil {
		return origin
	}
	off, err := safecast.Conv[uint32](e.Pos.Offset)
	if err != nil {
		return origin
	}
	return source.At(file.ID, min(off, file.Size()))
}
