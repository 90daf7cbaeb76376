package tensor

// Chunk is a non-copying window into the trailing dimension of a tensor.
// It materializes data only through Padded.
type Chunk struct {
	tensor *Tensor
	offset int
	length int
}

// NewChunk creates a view of [offset, offset+length) on the trailing
// dimension of t.
func NewChunk(t *Tensor, offset, length int) (*Chunk, error) {
	total := t.Dim(-1)
	if offset < 0 || offset >= total || length < 0 || length > total-offset {
		return nil, &RangeError{Op: "tensor.NewChunk", Offset: offset, Length: length, Bound: total}
	}
	return &Chunk{tensor: t, offset: offset, length: length}, nil
}

// Offset returns the window start in the source tensor.
func (c *Chunk) Offset() int {
	return c.offset
}

// Length returns the window length.
func (c *Chunk) Length() int {
	return c.length
}

// Padded materializes a copy of exactly target samples per outer slice. The
// chunk's valid region is centered (the odd sample of an uneven pad goes to
// the right), clamped to the source tensor's bounds, and zero-filled where
// the centered window falls outside them.
func (c *Chunk) Padded(target int) (*Tensor, error) {
	delta := target - c.length
	if delta < 0 {
		return nil, &RangeError{Op: "tensor.Chunk.Padded", Offset: c.offset, Length: target, Bound: c.length}
	}
	total := c.tensor.Dim(-1)

	start := c.offset - delta/2
	end := start + target
	clampedStart := max(0, start)
	clampedEnd := min(total, end)

	out, err := c.tensor.NarrowLast(clampedStart, clampedEnd-clampedStart)
	if err != nil {
		return nil, err
	}
	return Pad1D(out, clampedStart-start, end-clampedEnd, PadConstant)
}
