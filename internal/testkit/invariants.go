// Package testkit holds invariant checks shared by tests and fuzz harnesses.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"markspan/internal/reconstruct"
	"markspan/internal/source"
	"markspan/internal/unit"
)

// CheckUnitSpans runs a minimal set of span invariants on parsed units:
// 1) every span points at sf and lies within its content
// 2) units are non-empty, ordered and do not overlap
func CheckUnitSpans(units []unit.Unit, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	size, err := contentLen(sf)
	if err != nil {
		return err
	}
	var prevEnd uint32
	for i, u := range units {
		sp := u.Span
		if sp.File != sf.ID {
			return fmt.Errorf("unit %d span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End <= sp.Start {
			return fmt.Errorf("unit %d has empty span %v", i, sp)
		}
		if sp.End > size {
			return fmt.Errorf("unit %d span end beyond content: %d > %d", i, sp.End, size)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("unit %d span %v overlaps previous end %d", i, sp, prevEnd)
		}
		prevEnd = sp.End
	}
	return nil
}

// CheckPartition verifies reconstructed blocks against their file:
// 1) spans are ordered, disjoint and inside the file
// 2) code blocks are non-empty and carry exactly the bytes of their span
func CheckPartition(blocks []reconstruct.Block, sf *source.File) error {
	if sf == nil {
		return fmt.Errorf("nil file")
	}
	size, err := contentLen(sf)
	if err != nil {
		return err
	}
	var prevEnd uint32
	for i, b := range blocks {
		sp := b.Span
		if sp.File != sf.ID {
			return fmt.Errorf("block %d span file mismatch: got=%d want=%d", i, sp.File, sf.ID)
		}
		if sp.End < sp.Start || sp.End > size {
			return fmt.Errorf("block %d span %v outside content of %d bytes", i, sp, size)
		}
		if sp.Start < prevEnd {
			return fmt.Errorf("block %d span %v overlaps previous end %d", i, sp, prevEnd)
		}
		prevEnd = sp.End
		if b.Kind != reconstruct.BlockCode {
			continue
		}
		if b.Text == "" {
			return fmt.Errorf("block %d is an empty code block", i)
		}
		if b.Text != sf.Slice(sp) {
			return fmt.Errorf("block %d text does not match span %v", i, sp)
		}
	}
	return nil
}

func contentLen(sf *source.File) (uint32, error) {
	n, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return 0, fmt.Errorf("len content overflow: %w", err)
	}
	return n, nil
}
