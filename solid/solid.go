package solid

import (
	"github.com/wippyai/nativeptr/errors"
)

// Range is a byte range relative to the start of an aggregate.
type Range struct {
	Offset uint64
	Length uint64
}

// End returns the offset just past the range.
func (r Range) End() uint64 {
	return r.Offset + r.Length
}

// Ranges is the minimal set of disjoint, non-adjacent byte ranges covering a
// sequence of field ranges. Offsets are strictly increasing.
type Ranges struct {
	ranges []Range
}

// New coalesces parallel offset and length slices. Offsets must be
// non-decreasing, as produced by walking a field layout in order.
func New(offsets, lengths []uint64) (*Ranges, error) {
	if len(offsets) != len(lengths) {
		return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Detail("%d offsets but %d lengths", len(offsets), len(lengths)).
			Build()
	}
	c := coalescer{}
	for i := range offsets {
		if err := c.add(offsets[i], lengths[i]); err != nil {
			return nil, err
		}
	}
	return &Ranges{ranges: c.out}, nil
}

// FromRanges coalesces a sequence of ranges in non-decreasing offset order.
func FromRanges(in ...Range) (*Ranges, error) {
	c := coalescer{}
	for _, r := range in {
		if err := c.add(r.Offset, r.Length); err != nil {
			return nil, err
		}
	}
	return &Ranges{ranges: c.out}, nil
}

// Len returns the number of coalesced ranges.
func (r *Ranges) Len() int {
	return len(r.ranges)
}

// At returns the i-th range.
func (r *Ranges) At(i int) Range {
	return r.ranges[i]
}

// Ranges returns a copy of the coalesced ranges.
func (r *Ranges) Ranges() []Range {
	return append([]Range(nil), r.ranges...)
}

// Offsets returns the start offset of every range.
func (r *Ranges) Offsets() []uint64 {
	out := make([]uint64, len(r.ranges))
	for i, rg := range r.ranges {
		out[i] = rg.Offset
	}
	return out
}

// Lengths returns the length of every range.
func (r *Ranges) Lengths() []uint64 {
	out := make([]uint64, len(r.ranges))
	for i, rg := range r.ranges {
		out[i] = rg.Length
	}
	return out
}

// Total returns the number of bytes covered.
func (r *Ranges) Total() uint64 {
	var n uint64
	for _, rg := range r.ranges {
		n += rg.Length
	}
	return n
}

// Each calls fn for every range in offset order, stopping at the first error.
func (r *Ranges) Each(fn func(offset, length uint64) error) error {
	for _, rg := range r.ranges {
		if err := fn(rg.Offset, rg.Length); err != nil {
			return err
		}
	}
	return nil
}

type coalescer struct {
	out          []Range
	lastOffset   uint64
	nextExpected uint64
}

func (c *coalescer) add(offset, length uint64) error {
	if length == 0 {
		return nil
	}
	if len(c.out) > 0 && offset < c.lastOffset {
		return errors.New(errors.PhaseLayout, errors.KindInvalidInput).
			Detail("offset %d follows offset %d", offset, c.lastOffset).
			Value(offset).
			Build()
	}

	switch {
	case len(c.out) == 0:
		c.out = append(c.out, Range{Offset: offset, Length: length})
	case offset == c.lastOffset:
		// fields sharing an offset, e.g. union members
		prev := &c.out[len(c.out)-1]
		if end := offset + length; end > prev.End() {
			prev.Length = end - prev.Offset
		}
	case offset == c.nextExpected:
		c.out[len(c.out)-1].Length += length
	case offset < c.nextExpected:
		// partial overlap with the previous range
		prev := &c.out[len(c.out)-1]
		if end := offset + length; end > prev.End() {
			prev.Length = end - prev.Offset
		}
	default:
		c.out = append(c.out, Range{Offset: offset, Length: length})
	}

	c.lastOffset = offset
	c.nextExpected = c.out[len(c.out)-1].End()
	return nil
}
