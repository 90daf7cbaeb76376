package spectral

import (
	"math"

	"github.com/RyanBlaney/sonido-stems/tensor"
)

// FFT computes the forward discrete Fourier transform of the complex signal
// (re, im) in place using the iterative radix-2 Cooley-Tukey algorithm.
//
// Both slices must have the same power-of-two length. The separation network
// was trained against this exact transform, so the engine does not fall back
// to a mixed-radix implementation for other sizes.
func FFT(re, im []float64) error {
	n := len(re)
	if n == 0 || n&(n-1) != 0 {
		return &tensor.SizeError{Op: "spectral.FFT", Size: n, Want: "a power of two"}
	}
	if len(im) != n {
		return &tensor.ShapeError{Op: "spectral.FFT", Got: []int{len(im)}, Want: []int{n}}
	}

	// Bit-reversal permutation of both parts.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Butterfly stages combining sub-transforms of doubling length.
	for length := 2; length <= n; length <<= 1 {
		ang := -2 * math.Pi / float64(length)
		half := length >> 1
		for i := 0; i < n; i += length {
			for j := 0; j < half; j++ {
				wRe := math.Cos(ang * float64(j))
				wIm := math.Sin(ang * float64(j))

				a, b := i+j, i+j+half
				tRe := re[b]*wRe - im[b]*wIm
				tIm := re[b]*wIm + im[b]*wRe
				re[b] = re[a] - tRe
				im[b] = im[a] - tIm
				re[a] += tRe
				im[a] += tIm
			}
		}
	}
	return nil
}

// FFTReal transforms a real signal, zero-initializing the imaginary part.
// The input is left untouched; fresh output buffers are returned.
func FFTReal(signal []float64) (re, im []float64, err error) {
	re = make([]float64, len(signal))
	copy(re, signal)
	im = make([]float64, len(signal))
	if err := FFT(re, im); err != nil {
		return nil, nil, err
	}
	return re, im, nil
}

// IFFT computes the inverse transform in place as
// conjugate -> forward FFT -> conjugate and 1/n scale. Routing the inverse
// through FFT keeps a single butterfly code path and a single source of
// numerical error.
func IFFT(re, im []float64) error {
	for i := range im {
		im[i] = -im[i]
	}
	if err := FFT(re, im); err != nil {
		return err
	}
	n := float64(len(re))
	for i := range re {
		re[i] /= n
		im[i] = -im[i] / n
	}
	return nil
}
