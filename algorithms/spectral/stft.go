package spectral

import (
	"math"
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/RyanBlaney/sonido-stems/algorithms/windowing"
	"github.com/RyanBlaney/sonido-stems/logging"
	"github.com/RyanBlaney/sonido-stems/tensor"
)

// windowSumFloor is the window-energy threshold below which ISTFT leaves the
// raw overlap-add accumulation untouched instead of dividing, so thin window
// coverage at the buffer edges cannot blow up the output.
const windowSumFloor = 1e-8

// Config holds the framing parameters shared by STFT and ISTFT.
// Zero values mean "use the conventional default".
type Config struct {
	NFFT       int            // FFT size, must be a power of two
	HopLength  int            // frame advance; defaults to NFFT/4
	Window     []float64      // analysis/synthesis window; defaults to a periodic Hann of length NFFT
	Normalized bool           // scale frames by 1/sqrt(NFFT) forward, sqrt(NFFT) inverse
	Center     bool           // pad NFFT/2 on both sides so frames are centered on their sample
	PadMode    tensor.PadMode // centering pad mode; defaults to reflect
}

// STFT computes forward and inverse short-time Fourier transforms with the
// framing conventions of Config.
type STFT struct {
	cfg    Config
	hop    int
	window []float64
	logger logging.Logger
}

// New creates an STFT engine, resolving every unset Config field to its
// documented default.
func New(cfg Config) *STFT {
	hop := cfg.HopLength
	if hop == 0 {
		hop = cfg.NFFT / 4
	}
	window := cfg.Window
	if window == nil {
		window = windowing.NewPeriodicHann(cfg.NFFT).Coefficients()
	}
	if cfg.PadMode == "" {
		cfg.PadMode = tensor.PadReflect
	}
	return &STFT{
		cfg:    cfg,
		hop:    hop,
		window: window,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "stft"}),
	}
}

// Compute computes the one-sided spectrogram of a [batch, length] tensor,
// returning a [batch, NFFT/2+1, frames] complex tensor. Frame count is
// floor((paddedLength-NFFT)/hop) + 1.
func (s *STFT) Compute(t *tensor.Tensor) (*tensor.ComplexTensor, error) {
	if t.NumDims() != 2 {
		return nil, &tensor.ShapeError{Op: "spectral.STFT.Compute", Got: t.Shape, Want: []int{-1, -1}}
	}
	nFFT := s.cfg.NFFT
	if nFFT == 0 || nFFT&(nFFT-1) != 0 {
		return nil, &tensor.SizeError{Op: "spectral.STFT.Compute", Size: nFFT, Want: "a power of two"}
	}

	if s.cfg.Center {
		padded, err := tensor.Pad1D(t, nFFT/2, nFFT/2, s.cfg.PadMode)
		if err != nil {
			return nil, err
		}
		t = padded
	}

	batch := t.Dim(0)
	length := t.Dim(-1)
	if length < nFFT {
		return nil, &tensor.SizeError{Op: "spectral.STFT.Compute", Size: length, Want: "at least one frame of input"}
	}
	frames := (length-nFFT)/s.hop + 1
	bins := nFFT/2 + 1
	out := tensor.NewComplex(batch, bins, frames)

	scale := 1.0
	if s.cfg.Normalized {
		scale = 1.0 / math.Sqrt(float64(nFFT))
	}

	s.logger.Debug("computing spectrogram", logging.Fields{
		"batch": batch, "frames": frames, "bins": bins, "hop": s.hop,
	})

	// Frames are independent, so the frame loop is fanned out to a worker
	// pool. Each (batch, frame) job writes a disjoint column of the output,
	// which keeps the result bit-deterministic.
	type frameJob struct {
		batch, frame int
	}
	jobs := make(chan frameJob, batch*frames)

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	for w := 0; w < workerCount(batch*frames); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			re := make([]float64, nFFT)
			im := make([]float64, nFFT)

			for job := range jobs {
				start := job.batch*length + job.frame*s.hop
				copy(re, t.Data[start:start+nFFT])
				floats.Mul(re, s.window)
				if s.cfg.Normalized {
					floats.Scale(scale, re)
				}
				clear(im)

				if err := FFT(re, im); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}

				for k := 0; k < bins; k++ {
					idx := (job.batch*bins+k)*frames + job.frame
					out.Real.Data[idx] = re[k]
					out.Imag.Data[idx] = im[k]
				}
			}
		}()
	}

	for b := 0; b < batch; b++ {
		for f := 0; f < frames; f++ {
			jobs <- frameJob{batch: b, frame: f}
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// Inverse reconstructs a [batch, targetLength] signal from a one-sided
// [batch, NFFT/2+1, frames] spectrogram by conjugate-symmetric spectrum
// rebuild, per-frame inverse FFT and windowed overlap-add. A targetLength of
// zero derives the conventional length from the frame count.
func (s *STFT) Inverse(z *tensor.ComplexTensor, targetLength int) (*tensor.Tensor, error) {
	if len(z.Shape()) != 3 {
		return nil, &tensor.ShapeError{Op: "spectral.STFT.Inverse", Got: z.Shape(), Want: []int{-1, -1, -1}}
	}
	nFFT := s.cfg.NFFT
	bins := z.Dim(1)
	if 2*bins-2 != nFFT {
		return nil, &tensor.ShapeError{Op: "spectral.STFT.Inverse", Got: []int{bins}, Want: []int{nFFT/2 + 1}}
	}

	batch := z.Dim(0)
	frames := z.Dim(2)
	offset := 0
	if s.cfg.Center {
		offset = nFFT / 2
	}
	if targetLength == 0 {
		targetLength = (frames-1)*s.hop + nFFT - 2*offset
	}

	out := tensor.New(batch, targetLength)
	windowSum := make([]float64, targetLength)

	scale := 1.0
	if s.cfg.Normalized {
		scale = math.Sqrt(float64(nFFT))
	}

	re := make([]float64, nFFT)
	im := make([]float64, nFFT)

	for b := 0; b < batch; b++ {
		for f := 0; f < frames; f++ {
			// Rebuild the two-sided spectrum via conjugate symmetry.
			for k := 0; k < bins; k++ {
				idx := (b*bins+k)*frames + f
				re[k] = z.Real.Data[idx]
				im[k] = z.Imag.Data[idx]
			}
			for k := bins; k < nFFT; k++ {
				re[k] = re[nFFT-k]
				im[k] = -im[nFFT-k]
			}

			if err := IFFT(re, im); err != nil {
				return nil, err
			}

			pos := f*s.hop - offset
			for i := 0; i < nFFT; i++ {
				j := pos + i
				if j < 0 || j >= targetLength {
					continue
				}
				out.Data[b*targetLength+j] += re[i] * scale * s.window[i]
				if b == 0 {
					windowSum[j] += s.window[i] * s.window[i]
				}
			}
		}
	}

	for j, sum := range windowSum {
		if sum <= windowSumFloor {
			continue
		}
		for b := 0; b < batch; b++ {
			out.Data[b*targetLength+j] /= sum
		}
	}
	return out, nil
}

// workerCount sizes the frame worker pool to the workload so small
// spectrograms don't pay goroutine overhead for nothing.
func workerCount(jobs int) int {
	numCPU := runtime.NumCPU()
	if jobs < 64 {
		return max(1, min(numCPU/2, jobs))
	}
	return numCPU
}
