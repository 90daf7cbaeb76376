package separation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-stems/tensor"
)

// applyInference runs one chunk through the model: pad to the model's valid
// length, zero-pad the tail up to the fixed training length, transform,
// forward, invert the predicted mask, add the time-domain branch, and trim
// back to the chunk's own length.
func applyInference(sp *Spectrogram, model Model, chunk *tensor.Chunk) (*tensor.Tensor, error) {
	length := chunk.Length()
	valid := model.ValidLength(length)
	training := model.SegmentSamples()
	if valid < length || valid > training {
		return nil, &tensor.RangeError{Op: "separation.applyInference", Offset: length, Length: valid, Bound: training}
	}

	padded, err := chunk.Padded(valid)
	if err != nil {
		return nil, err
	}
	mix, err := tensor.Pad1D(padded, 0, training-valid, tensor.PadConstant)
	if err != nil {
		return nil, err
	}

	channels := mix.Dim(0)
	mix, err = mix.Reshape(1, channels, training)
	if err != nil {
		return nil, err
	}

	z, err := sp.Spec(mix)
	if err != nil {
		return nil, fmt.Errorf("spectrogram: %w", err)
	}
	mag, err := Magnitude(z)
	if err != nil {
		return nil, err
	}

	maskOut, timeOut, err := model.Forward(mix, mag)
	if err != nil {
		return nil, fmt.Errorf("model forward: %w", err)
	}

	masked, err := Mask(maskOut)
	if err != nil {
		return nil, fmt.Errorf("model mask output: %w", err)
	}
	sources := masked.Dim(1)
	if masked.Dim(0) != 1 || masked.Dim(2) != channels {
		return nil, &tensor.ShapeError{Op: "separation.applyInference", Got: maskOut.Shape,
			Want: []int{1, sources, 2 * channels, maskOut.Dim(3), maskOut.Dim(4)}}
	}

	// The mask branch inverts back to the time domain per source; treat the
	// source axis as the batch axis for the inverse transform.
	flat, err := tensor.ComplexFrom(
		mustReshape(masked.Real, sources, masked.Dim(2), masked.Dim(3), masked.Dim(4)),
		mustReshape(masked.Imag, sources, masked.Dim(2), masked.Dim(3), masked.Dim(4)),
	)
	if err != nil {
		return nil, err
	}
	freq, err := sp.ISpec(flat, training)
	if err != nil {
		return nil, fmt.Errorf("inverse spectrogram: %w", err)
	}

	timeBranch, err := timeOut.Reshape(sources, channels, training)
	if err != nil {
		return nil, &tensor.ShapeError{Op: "separation.applyInference", Got: timeOut.Shape, Want: freq.Shape}
	}
	if !shapeEqual(freq.Shape, timeBranch.Shape) {
		return nil, &tensor.ShapeError{Op: "separation.applyInference", Got: timeBranch.Shape, Want: freq.Shape}
	}

	out := freq.Clone()
	floats.Add(out.Data, timeBranch.Data)

	out, err = out.NarrowLast(0, valid)
	if err != nil {
		return nil, err
	}
	return out.CenterTrim(length)
}

func mustReshape(t *tensor.Tensor, shape ...int) *tensor.Tensor {
	out, err := t.Reshape(shape...)
	if err != nil {
		panic(err)
	}
	return out
}

func shapeEqual(a, b []int) bool {
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
