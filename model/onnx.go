package model

import (
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/RyanBlaney/sonido-stems/logging"
	"github.com/RyanBlaney/sonido-stems/tensor"
)

// Spectral geometry of the network's magnitude input: a 4096-point transform
// with hop 1024, Nyquist bin dropped. Must stay in lockstep with the
// separation adapter's framing.
const (
	specHop  = 1024
	specBins = 2048
)

// ortInitOnce ensures the ONNX Runtime environment is initialized exactly
// once; the error is kept so later sessions surface the failure instead of
// running against an uninitialized environment.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// Session runs the separation network through ONNX Runtime. Input and output
// tensors are allocated once at the network's fixed shapes and reused across
// Forward calls, which are serialized by a mutex.
type Session struct {
	config *Config
	logger logging.Logger

	mu      sync.Mutex
	session *ort.AdvancedSession

	mixTensor  *ort.Tensor[float32] // [1, channels, segment]
	magTensor  *ort.Tensor[float32] // [1, 2*channels, bins, frames]
	maskTensor *ort.Tensor[float32] // [1, sources, 2*channels, bins, frames]
	timeTensor *ort.Tensor[float32] // [1, sources, channels, segment]
}

// NewSession loads the ONNX model at path. A nil config uses DefaultConfig.
func NewSession(path string, config *Config) (*Session, error) {
	cfg := config.withDefaults()

	ortInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		ortInitErr = ort.InitializeEnvironment()
	})
	if ortInitErr != nil {
		return nil, fmt.Errorf("model: initialize onnxruntime: %w", ortInitErr)
	}

	segment := cfg.SegmentSamples()
	frames := (segment + specHop - 1) / specHop
	sources := len(cfg.Sources)

	mixTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(cfg.Channels), int64(segment)))
	if err != nil {
		return nil, fmt.Errorf("model: create mix tensor: %w", err)
	}
	magTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(2*cfg.Channels), specBins, int64(frames)))
	if err != nil {
		mixTensor.Destroy()
		return nil, fmt.Errorf("model: create magnitude tensor: %w", err)
	}
	maskTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(sources), int64(2*cfg.Channels), specBins, int64(frames)))
	if err != nil {
		mixTensor.Destroy()
		magTensor.Destroy()
		return nil, fmt.Errorf("model: create mask tensor: %w", err)
	}
	timeTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(sources), int64(cfg.Channels), int64(segment)))
	if err != nil {
		mixTensor.Destroy()
		magTensor.Destroy()
		maskTensor.Destroy()
		return nil, fmt.Errorf("model: create time tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(path,
		cfg.InputNames, cfg.OutputNames,
		[]ort.Value{mixTensor, magTensor},
		[]ort.Value{maskTensor, timeTensor},
		nil)
	if err != nil {
		mixTensor.Destroy()
		magTensor.Destroy()
		maskTensor.Destroy()
		timeTensor.Destroy()
		return nil, fmt.Errorf("model: create session: %w", err)
	}

	s := &Session{
		config:     cfg,
		logger:     logging.GetGlobalLogger().WithFields(logging.Fields{"component": "model"}),
		session:    session,
		mixTensor:  mixTensor,
		magTensor:  magTensor,
		maskTensor: maskTensor,
		timeTensor: timeTensor,
	}
	s.logger.Debug("loaded model", logging.Fields{
		"path":    path,
		"sources": cfg.Sources,
		"segment": segment,
		"frames":  frames,
	})
	return s, nil
}

// Forward runs one inference pass over a fixed-length segment.
func (s *Session) Forward(mix, magnitude *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fillInput(s.mixTensor, mix, "mix"); err != nil {
		return nil, nil, err
	}
	if err := fillInput(s.magTensor, magnitude, "magnitude"); err != nil {
		return nil, nil, err
	}

	if err := s.session.Run(); err != nil {
		return nil, nil, fmt.Errorf("model: run: %w", err)
	}

	segment := s.config.SegmentSamples()
	frames := (segment + specHop - 1) / specHop
	sources := len(s.config.Sources)

	mask := readOutput(s.maskTensor, 1, sources, 2*s.config.Channels, specBins, frames)
	time := readOutput(s.timeTensor, 1, sources, s.config.Channels, segment)
	return mask, time, nil
}

// Sources names the stems the network predicts.
func (s *Session) Sources() []string {
	return s.config.Sources
}

// Channels returns the trained channel count.
func (s *Session) Channels() int {
	return s.config.Channels
}

// SampleRate returns the trained sample rate.
func (s *Session) SampleRate() int {
	return s.config.SampleRate
}

// SegmentSamples returns the fixed training segment length.
func (s *Session) SegmentSamples() int {
	return s.config.SegmentSamples()
}

// ValidLength reports the input length the network needs for a chunk of the
// given length. The graph has fixed shapes, so it is the training length for
// any chunk.
func (s *Session) ValidLength(int) int {
	return s.config.SegmentSamples()
}

// Close releases the session and its tensors.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.mixTensor.Destroy()
	s.magTensor.Destroy()
	s.maskTensor.Destroy()
	s.timeTensor.Destroy()
	s.session = nil
	return err
}

// fillInput copies a float64 tensor into a reusable float32 session input.
func fillInput(dst *ort.Tensor[float32], src *tensor.Tensor, name string) error {
	data := dst.GetData()
	if len(data) != src.Size() {
		return &tensor.ShapeError{Op: "model." + name, Got: src.Shape, Want: []int{len(data)}}
	}
	for i, v := range src.Data {
		data[i] = float32(v)
	}
	return nil
}

// readOutput copies a float32 session output into a fresh float64 tensor.
func readOutput(src *ort.Tensor[float32], shape ...int) *tensor.Tensor {
	out := tensor.New(shape...)
	for i, v := range src.GetData() {
		out.Data[i] = float64(v)
	}
	return out
}
