package separation

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-stems/logging"
	"github.com/RyanBlaney/sonido-stems/tensor"
)

// ApplySplits separates a [channels, length] mix of arbitrary duration by
// walking it in overlapping segments of the model's training length, running
// each through applyInference, and crossfading the per-chunk outputs with a
// triangular weight so adjacent predictions blend without seams. The result
// is [sources, channels, length].
//
// The chunk loop is strictly sequential: each inference call completes before
// its output is folded into the shared accumulator. The context is checked
// between chunks only, never mid-transform.
func ApplySplits(ctx context.Context, model Model, mix *tensor.Tensor, progress ProgressFunc, overlap float64) (*tensor.Tensor, error) {
	if mix.NumDims() != 2 {
		return nil, &tensor.ShapeError{Op: "separation.ApplySplits", Got: mix.Shape, Want: []int{-1, -1}}
	}
	segment := model.SegmentSamples()
	stride := int((1 - overlap) * float64(segment))
	// Overlap just under 1 floors the stride to zero, so the bound is on
	// the stride as well as the fraction.
	if overlap < 0 || overlap >= 1 || stride < 1 {
		return nil, fmt.Errorf("separation.ApplySplits: overlap %g gives stride %d for segment %d: %w",
			overlap, stride, segment,
			&tensor.RangeError{Op: "separation.ApplySplits", Offset: 0, Length: stride, Bound: segment})
	}

	channels := mix.Dim(0)
	length := mix.Dim(1)
	total := ceilDiv(length, stride)

	logger := logging.GetGlobalLogger().WithFields(logging.Fields{
		"component": "separation",
		"segment":   segment,
		"stride":    stride,
		"chunks":    total,
	})
	logger.Debug("starting chunked inference")

	sp := NewSpectrogram()
	weight := triangularWeight(segment)
	acc := newAccumulator(len(model.Sources()), channels, length)

	if progress != nil {
		progress(0, total)
	}

	done := 0
	for offset := 0; offset < length; offset += stride {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("separation canceled: %w", err)
		}

		chunk, err := tensor.NewChunk(mix, offset, min(segment, length-offset))
		if err != nil {
			return nil, err
		}
		out, err := applyInference(sp, model, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk at %d: %w", offset, err)
		}
		acc.add(out, offset, weight)

		done++
		if progress != nil {
			progress(done, total)
		}
	}

	return acc.normalized(), nil
}

// triangularWeight builds the crossfade window: a triangle peaking at the
// segment midpoint, scaled to a maximum of 1.
func triangularWeight(segment int) []float64 {
	w := make([]float64, segment)
	half := segment / 2
	for i := 0; i < half; i++ {
		w[i] = float64(i + 1)
	}
	for i := half; i < segment; i++ {
		w[i] = float64(segment - i)
	}
	floats.Scale(1/floats.Max(w), w)
	return w
}

// accumulator collects weighted chunk outputs and the per-sample weight mass
// applied to them. It is owned by exactly one ApplySplits call and never
// escapes it.
type accumulator struct {
	out       *tensor.Tensor // [sources, channels, length]
	weightSum []float64      // per time sample
	length    int
}

func newAccumulator(sources, channels, length int) *accumulator {
	return &accumulator{
		out:       tensor.New(sources, channels, length),
		weightSum: make([]float64, length),
		length:    length,
	}
}

// add folds a [sources, channels, chunkLen] chunk output in at the given
// absolute offset, weighting every sample by the crossfade window.
func (a *accumulator) add(chunk *tensor.Tensor, offset int, weight []float64) {
	chunkLen := chunk.Dim(-1)
	for row := 0; row < chunk.Outer(); row++ {
		src := chunk.Data[row*chunkLen : (row+1)*chunkLen]
		dst := a.out.Data[row*a.length+offset : row*a.length+offset+chunkLen]
		for i, v := range src {
			dst[i] += weight[i] * v
		}
	}
	floats.Add(a.weightSum[offset:offset+chunkLen], weight[:chunkLen])
}

// normalized divides every sample by its accumulated weight mass, turning the
// weighted sums into a seamless full-length signal.
func (a *accumulator) normalized() *tensor.Tensor {
	for row := 0; row < a.out.Outer(); row++ {
		floats.Div(a.out.Data[row*a.length:(row+1)*a.length], a.weightSum)
	}
	return a.out
}
