package transcode

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testTone(n int, cycles float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 0.5 * math.Sin(2*math.Pi*cycles*float64(i)/float64(n))
	}
	return x
}

func TestWAVRoundTrip(t *testing.T) {
	const (
		sampleRate = 44100
		length     = 4410
	)
	in := &AudioData{
		Samples: [][]float64{
			testTone(length, 100),
			testTone(length, 50),
		},
		SampleRate: sampleRate,
	}

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := EncodeWAVFile(path, in); err != nil {
		t.Fatal(err)
	}

	out, err := DecodeWAVFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if out.Channels() != 2 || out.SampleRate != sampleRate || out.Length() != length {
		t.Fatalf("decoded %d channels x %d samples at %d Hz", out.Channels(), out.Length(), out.SampleRate)
	}

	// 16-bit quantization bounds the round-trip error by one LSB.
	const tolerance = 1.0 / 32768 * 1.01
	for c := range in.Samples {
		for i := range in.Samples[c] {
			if math.Abs(out.Samples[c][i]-in.Samples[c][i]) > tolerance {
				t.Fatalf("channel %d sample %d: got %v, want %v",
					c, i, out.Samples[c][i], in.Samples[c][i])
			}
		}
	}
}

func TestAudioDataDuration(t *testing.T) {
	a := &AudioData{
		Samples:    [][]float64{make([]float64, 22050)},
		SampleRate: 44100,
	}
	if got := a.Duration(); got != 500*time.Millisecond {
		t.Errorf("duration = %v, want 500ms", got)
	}
}

func TestEncodeRejectsRaggedChannels(t *testing.T) {
	a := &AudioData{
		Samples:    [][]float64{make([]float64, 10), make([]float64, 9)},
		SampleRate: 44100,
	}
	if err := EncodeWAVFile(filepath.Join(t.TempDir(), "bad.wav"), a); err == nil {
		t.Error("expected error for ragged channels")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not a wav"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeWAVFile(path); err == nil {
		t.Error("expected error for invalid file")
	}
}
