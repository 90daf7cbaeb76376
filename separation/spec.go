// Package separation implements the chunked-inference pipeline that splits a
// mixed recording into per-source stems: the model-facing spectrogram
// adapter, the overlap-add chunk orchestrator, and the top-level separator.
package separation

import (
	"github.com/RyanBlaney/sonido-stems/algorithms/spectral"
	"github.com/RyanBlaney/sonido-stems/tensor"
)

// Framing constants the separation network was trained with. The asymmetric
// padding and the 2-frame crop offset below are contractual values matched to
// the network's training-time preprocessing, not derived quantities; changing
// any of them silently misaligns the context the network sees.
const (
	specNFFT = 4096
	specHop  = 1024
	specPad  = specHop / 2 * 3 // 1536
)

// Spectrogram converts between time-domain tensors and the exact
// frequency-domain layout the separation network expects.
type Spectrogram struct {
	engine *spectral.STFT
}

// NewSpectrogram creates the adapter with the network's fixed STFT
// configuration.
func NewSpectrogram() *Spectrogram {
	return &Spectrogram{
		engine: spectral.New(spectral.Config{
			NFFT:       specNFFT,
			HopLength:  specHop,
			Normalized: true,
			Center:     true,
			PadMode:    tensor.PadReflect,
		}),
	}
}

// Spec computes the network-facing spectrogram of a [batch, channels, length]
// tensor. The input is reflect-padded by 1536 on the left and by
// 1536 + (ceil(length/1024)*1024 - length) on the right so the signal spans a
// whole number of hops, transformed, stripped of the Nyquist bin, and cropped
// to exactly ceil(length/1024) frames starting at frame 2.
func (sp *Spectrogram) Spec(x *tensor.Tensor) (*tensor.ComplexTensor, error) {
	if x.NumDims() != 3 {
		return nil, &tensor.ShapeError{Op: "separation.Spec", Got: x.Shape, Want: []int{-1, -1, -1}}
	}
	batch, channels, length := x.Dim(0), x.Dim(1), x.Dim(2)

	le := ceilDiv(length, specHop)
	flat, err := x.Reshape(batch*channels, length)
	if err != nil {
		return nil, err
	}
	padded, err := tensor.Pad1D(flat, specPad, specPad+le*specHop-length, tensor.PadReflect)
	if err != nil {
		return nil, err
	}

	z, err := sp.engine.Compute(padded)
	if err != nil {
		return nil, err
	}

	// Drop the Nyquist bin and keep le frames starting at the fixed +2
	// frame offset.
	bins := z.Dim(1) - 1
	frames := z.Dim(2)
	out := tensor.NewComplex(batch, channels, bins, le)
	for n := 0; n < batch*channels; n++ {
		for k := 0; k < bins; k++ {
			src := (n*(bins+1) + k) * frames
			dst := (n*bins + k) * le
			for f := 0; f < le; f++ {
				out.Real.Data[dst+f] = z.Real.Data[src+f+2]
				out.Imag.Data[dst+f] = z.Imag.Data[src+f+2]
			}
		}
	}
	return out, nil
}

// ISpec inverts Spec, reconstructing a [batch, channels, length] signal from
// a [batch, channels, freqBins, frames] spectrogram. The Nyquist bin and the
// two frames Spec cropped from each side are restored as zeros before the
// inverse transform, and the 1536-sample pad is cut off the result.
func (sp *Spectrogram) ISpec(z *tensor.ComplexTensor, length int) (*tensor.Tensor, error) {
	if len(z.Shape()) != 4 {
		return nil, &tensor.ShapeError{Op: "separation.ISpec", Got: z.Shape(), Want: []int{-1, -1, -1, -1}}
	}
	batch, channels, bins, frames := z.Dim(0), z.Dim(1), z.Dim(2), z.Dim(3)

	full := tensor.NewComplex(batch*channels, bins+1, frames+4)
	for n := 0; n < batch*channels; n++ {
		for k := 0; k < bins; k++ {
			src := (n*bins + k) * frames
			dst := (n*(bins+1)+k)*(frames+4) + 2
			copy(full.Real.Data[dst:dst+frames], z.Real.Data[src:src+frames])
			copy(full.Imag.Data[dst:dst+frames], z.Imag.Data[src:src+frames])
		}
	}

	le := specHop*ceilDiv(length, specHop) + 2*specPad
	x, err := sp.engine.Inverse(full, le)
	if err != nil {
		return nil, err
	}
	cropped, err := x.NarrowLast(specPad, length)
	if err != nil {
		return nil, err
	}
	return cropped.Reshape(batch, channels, length)
}

// Magnitude lays a [B, C, Fr, T] complex spectrogram out as the
// [B, 2C, Fr, T] real tensor the network's spectral branch expects, with the
// real and imaginary planes of channel c interleaved as channels 2c and 2c+1.
func Magnitude(z *tensor.ComplexTensor) (*tensor.Tensor, error) {
	if len(z.Shape()) != 4 {
		return nil, &tensor.ShapeError{Op: "separation.Magnitude", Got: z.Shape(), Want: []int{-1, -1, -1, -1}}
	}
	batch, channels, bins, frames := z.Dim(0), z.Dim(1), z.Dim(2), z.Dim(3)
	out := tensor.New(batch, 2*channels, bins, frames)

	plane := bins * frames
	for b := 0; b < batch; b++ {
		for c := 0; c < channels; c++ {
			src := (b*channels + c) * plane
			dstRe := (b*2*channels + 2*c) * plane
			dstIm := (b*2*channels + 2*c + 1) * plane
			copy(out.Data[dstRe:dstRe+plane], z.Real.Data[src:src+plane])
			copy(out.Data[dstIm:dstIm+plane], z.Imag.Data[src:src+plane])
		}
	}
	return out, nil
}

// Mask undoes Magnitude's channel interleaving on the network's predicted
// per-source output, turning a [B, S, C, Fr, T] real tensor with an even C
// into a [B, S, C/2, Fr, T] complex spectrogram.
func Mask(m *tensor.Tensor) (*tensor.ComplexTensor, error) {
	if m.NumDims() != 5 || m.Dim(2)%2 != 0 {
		return nil, &tensor.ShapeError{Op: "separation.Mask", Got: m.Shape, Want: []int{-1, -1, -2, -1, -1}}
	}
	batch, sources, channels, bins, frames := m.Dim(0), m.Dim(1), m.Dim(2)/2, m.Dim(3), m.Dim(4)
	out := tensor.NewComplex(batch, sources, channels, bins, frames)

	plane := bins * frames
	for bs := 0; bs < batch*sources; bs++ {
		for c := 0; c < channels; c++ {
			srcRe := (bs*2*channels + 2*c) * plane
			srcIm := (bs*2*channels + 2*c + 1) * plane
			dst := (bs*channels + c) * plane
			copy(out.Real.Data[dst:dst+plane], m.Data[srcRe:srcRe+plane])
			copy(out.Imag.Data[dst:dst+plane], m.Data[srcIm:srcIm+plane])
		}
	}
	return out, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
