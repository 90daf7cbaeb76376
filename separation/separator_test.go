package separation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/sonido-stems/tensor"
	"github.com/RyanBlaney/sonido-stems/transcode"
)

func TestSeparateSingleChunkScenario(t *testing.T) {
	// One second of mono audio against a 7.8 s training segment: the stride
	// exceeds the signal, so exactly one chunk runs and progress reads 1/1.
	const (
		sampleRate = 44100
		length     = 44100
		segment    = 343980 // 7.8 s at 44.1 kHz
	)
	stub := newStub(4, 1, segment, timeEchoForward)

	mix := &transcode.AudioData{
		Samples:    [][]float64{sineSignal(length, 441)},
		SampleRate: sampleRate,
	}

	var progress [][2]int
	sep := NewSeparator(stub, &Config{
		Overlap: 0.25,
		Progress: func(done, total int) {
			progress = append(progress, [2]int{done, total})
		},
	})

	stems, err := sep.Separate(context.Background(), mix)
	if err != nil {
		t.Fatal(err)
	}

	if stub.calls != 1 {
		t.Errorf("forward calls = %d, want 1", stub.calls)
	}
	want := [][2]int{{0, 1}, {1, 1}}
	if len(progress) != 2 || progress[0] != want[0] || progress[1] != want[1] {
		t.Errorf("progress = %v, want %v", progress, want)
	}

	if len(stems) != 4 {
		t.Fatalf("stems = %d, want 4", len(stems))
	}
	for _, name := range []string{"drums", "bass", "other", "vocals"} {
		stem, ok := stems[name]
		if !ok {
			t.Fatalf("missing stem %q", name)
		}
		if stem.Channels() != 1 || stem.Length() != length {
			t.Errorf("stem %q: %d channels x %d samples, want 1 x %d",
				name, stem.Channels(), stem.Length(), length)
		}
		if stem.SampleRate != sampleRate {
			t.Errorf("stem %q sample rate = %d, want %d", name, stem.SampleRate, sampleRate)
		}
		// The echo stub routes the mix straight through the time branch,
		// so every stem reproduces the input.
		for i := range stem.Samples[0] {
			if math.Abs(stem.Samples[0][i]-mix.Samples[0][i]) > 1e-9 {
				t.Fatalf("stem %q sample %d: got %v, want %v",
					name, i, stem.Samples[0][i], mix.Samples[0][i])
			}
		}
	}
}

func TestSeparateRejectsChannelMismatch(t *testing.T) {
	stub := newStub(4, 2, 4096, timeEchoForward)
	mono := &transcode.AudioData{
		Samples:    [][]float64{make([]float64, 1000)},
		SampleRate: 44100,
	}

	var shapeErr *tensor.ShapeError
	if _, err := NewSeparator(stub, nil).Separate(context.Background(), mono); !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestSeparateRejectsRaggedChannels(t *testing.T) {
	stub := newStub(4, 2, 4096, timeEchoForward)
	ragged := &transcode.AudioData{
		Samples:    [][]float64{make([]float64, 1000), make([]float64, 999)},
		SampleRate: 44100,
	}

	var shapeErr *tensor.ShapeError
	if _, err := NewSeparator(stub, nil).Separate(context.Background(), ragged); !errors.As(err, &shapeErr) {
		t.Errorf("expected ShapeError, got %v", err)
	}
}

func TestDefaultConfigOverlap(t *testing.T) {
	if got := DefaultConfig().Overlap; got != 0.25 {
		t.Errorf("default overlap = %v, want 0.25", got)
	}
}
