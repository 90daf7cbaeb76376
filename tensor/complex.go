package tensor

// ComplexTensor pairs two equal-shaped tensors holding the real and
// imaginary parts of a complex array.
type ComplexTensor struct {
	Real *Tensor
	Imag *Tensor
}

// NewComplex creates a zero-filled complex tensor with the given shape.
func NewComplex(shape ...int) *ComplexTensor {
	return &ComplexTensor{Real: New(shape...), Imag: New(shape...)}
}

// ComplexFrom pairs real and imag, which must share a shape.
func ComplexFrom(real, imag *Tensor) (*ComplexTensor, error) {
	if !sameShape(real.Shape, imag.Shape) {
		return nil, &ShapeError{Op: "tensor.ComplexFrom", Got: imag.Shape, Want: real.Shape}
	}
	return &ComplexTensor{Real: real, Imag: imag}, nil
}

// Shape returns the shared shape of both parts.
func (c *ComplexTensor) Shape() []int {
	return c.Real.Shape
}

// Dim returns the size of dimension i, negative indices counting from the end.
func (c *ComplexTensor) Dim(i int) int {
	return c.Real.Dim(i)
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
