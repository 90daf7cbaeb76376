package tensor

import "fmt"

// SizeError reports a buffer whose length does not satisfy a structural
// requirement of a transform (e.g. an FFT input that is not a power of two).
type SizeError struct {
	Op   string
	Size int
	Want string
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%s: invalid size %d, want %s", e.Op, e.Size, e.Want)
}

// ShapeError reports a mismatch between tensor dimensions that the pipeline
// requires to agree.
type ShapeError struct {
	Op   string
	Got  []int
	Want []int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: shape %v, want %v", e.Op, e.Got, e.Want)
}

// RangeError reports an offset or length that falls outside the bounds of the
// tensor it addresses.
type RangeError struct {
	Op     string
	Offset int
	Length int
	Bound  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: offset %d length %d out of range for size %d", e.Op, e.Offset, e.Length, e.Bound)
}
