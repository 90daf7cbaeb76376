// Package tensor provides the flat numeric buffers the separation pipeline
// moves audio and spectra through: a row-major {data, shape} tensor, a
// complex pair, trailing-dimension padding, and non-copying chunk views.
//
// Tensors are value-like. Every operation that changes shape allocates a new
// buffer instead of mutating in place, so no two pipeline stages can alias
// each other's storage across chunk boundaries.
package tensor

// Tensor is a flat float64 buffer with a row-major shape. The last shape
// dimension varies fastest.
type Tensor struct {
	Data  []float64
	Shape []int
}

// New creates a zero-filled tensor with the given shape.
func New(shape ...int) *Tensor {
	return &Tensor{
		Data:  make([]float64, prod(shape)),
		Shape: append([]int(nil), shape...),
	}
}

// FromSlice wraps data in a tensor of the given shape.
func FromSlice(data []float64, shape ...int) (*Tensor, error) {
	if len(data) != prod(shape) {
		return nil, &ShapeError{Op: "tensor.FromSlice", Got: []int{len(data)}, Want: shape}
	}
	return &Tensor{
		Data:  data,
		Shape: append([]int(nil), shape...),
	}, nil
}

// Size returns the total number of elements.
func (t *Tensor) Size() int {
	return len(t.Data)
}

// NumDims returns the number of dimensions.
func (t *Tensor) NumDims() int {
	return len(t.Shape)
}

// Dim returns the size of dimension i. Negative indices count from the end,
// so Dim(-1) is the trailing dimension.
func (t *Tensor) Dim(i int) int {
	if i < 0 {
		i += len(t.Shape)
	}
	return t.Shape[i]
}

// Outer returns the product of all leading dimensions, i.e. the number of
// independent trailing-dimension slices.
func (t *Tensor) Outer() int {
	return prod(t.Shape[:len(t.Shape)-1])
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	out := New(t.Shape...)
	copy(out.Data, t.Data)
	return out
}

// Reshape returns a copy of t with a new shape holding the same elements.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if prod(shape) != len(t.Data) {
		return nil, &ShapeError{Op: "tensor.Reshape", Got: t.Shape, Want: shape}
	}
	out := New(shape...)
	copy(out.Data, t.Data)
	return out, nil
}

// Index selects slice i of the leading dimension, dropping it from the shape.
func (t *Tensor) Index(i int) (*Tensor, error) {
	if len(t.Shape) == 0 || i < 0 || i >= t.Shape[0] {
		return nil, &RangeError{Op: "tensor.Index", Offset: i, Length: 1, Bound: t.Dim(0)}
	}
	stride := prod(t.Shape[1:])
	out := New(t.Shape[1:]...)
	copy(out.Data, t.Data[i*stride:(i+1)*stride])
	return out, nil
}

// NarrowLast copies the half-open range [start, start+length) of the trailing
// dimension from every outer slice.
func (t *Tensor) NarrowLast(start, length int) (*Tensor, error) {
	inner := t.Dim(-1)
	if start < 0 || length < 0 || start+length > inner {
		return nil, &RangeError{Op: "tensor.NarrowLast", Offset: start, Length: length, Bound: inner}
	}
	shape := append([]int(nil), t.Shape...)
	shape[len(shape)-1] = length
	out := New(shape...)
	for o := 0; o < t.Outer(); o++ {
		copy(out.Data[o*length:(o+1)*length], t.Data[o*inner+start:o*inner+start+length])
	}
	return out, nil
}

// CenterTrim removes equal amounts from both ends of the trailing dimension
// so it matches target. The extra sample of an odd surplus comes off the
// back, mirroring how Chunk.Padded distributes an odd pad.
func (t *Tensor) CenterTrim(target int) (*Tensor, error) {
	delta := t.Dim(-1) - target
	if delta < 0 {
		return nil, &RangeError{Op: "tensor.CenterTrim", Offset: 0, Length: target, Bound: t.Dim(-1)}
	}
	if delta == 0 {
		return t.Clone(), nil
	}
	return t.NarrowLast(delta/2, target)
}

func prod(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}
