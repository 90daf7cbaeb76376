package spectral

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-stems/tensor"
)

func TestSTFTShape(t *testing.T) {
	const (
		nFFT   = 512
		hop    = 128
		length = 4000
	)
	s := New(Config{NFFT: nFFT, HopLength: hop, Normalized: true, Center: true})

	x, _ := tensor.FromSlice(randomSignal(2*length, 7), 2, length)
	z, err := s.Compute(x)
	if err != nil {
		t.Fatal(err)
	}

	wantFrames := (length+nFFT-nFFT)/hop + 1 // centering pads nFFT/2 per side
	shape := z.Shape()
	if shape[0] != 2 || shape[1] != nFFT/2+1 || shape[2] != wantFrames {
		t.Errorf("spectrogram shape = %v, want [2 %d %d]", shape, nFFT/2+1, wantFrames)
	}
}

func TestSTFTDefaultsHopToQuarterWindow(t *testing.T) {
	s := New(Config{NFFT: 512})
	if s.hop != 128 {
		t.Errorf("default hop = %d, want 128", s.hop)
	}
	if len(s.window) != 512 {
		t.Errorf("default window length = %d, want 512", len(s.window))
	}
}

func TestISTFTRejectsBadBinCount(t *testing.T) {
	s := New(Config{NFFT: 512, Normalized: true, Center: true})
	z := tensor.NewComplex(1, 100, 8)

	var shapeErr *tensor.ShapeError
	if _, err := s.Inverse(z, 0); !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestSTFTISTFTRoundTrip(t *testing.T) {
	const (
		nFFT   = 512
		hop    = 128
		length = 4096
	)
	s := New(Config{
		NFFT:       nFFT,
		HopLength:  hop,
		Normalized: true,
		Center:     true,
		PadMode:    tensor.PadReflect,
	})

	signal := randomSignal(length, 42)
	x, _ := tensor.FromSlice(signal, 1, length)

	z, err := s.Compute(x)
	if err != nil {
		t.Fatal(err)
	}
	y, err := s.Inverse(z, length)
	if err != nil {
		t.Fatal(err)
	}
	if y.Dim(0) != 1 || y.Dim(1) != length {
		t.Fatalf("reconstruction shape = %v", y.Shape)
	}

	// Window coverage thins at the buffer edges; compare away from them.
	for i := nFFT / 2; i < length-nFFT/2; i++ {
		if math.Abs(y.Data[i]-signal[i]) > 1e-5 {
			t.Fatalf("sample %d: got %v, want %v", i, y.Data[i], signal[i])
		}
	}
}

func TestSTFTDeterministic(t *testing.T) {
	// The frame worker pool writes disjoint output columns, so repeated runs
	// must agree bit for bit.
	s := New(Config{NFFT: 256, HopLength: 64, Normalized: true, Center: true})
	x, _ := tensor.FromSlice(randomSignal(3000, 9), 1, 3000)

	a, err := s.Compute(x)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Compute(x)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Real.Data {
		if a.Real.Data[i] != b.Real.Data[i] || a.Imag.Data[i] != b.Imag.Data[i] {
			t.Fatalf("run mismatch at %d", i)
		}
	}
}
