package separation

import (
	"context"
	"fmt"

	"github.com/RyanBlaney/sonido-stems/logging"
	"github.com/RyanBlaney/sonido-stems/tensor"
	"github.com/RyanBlaney/sonido-stems/transcode"
)

// Config holds separation settings.
type Config struct {
	// Overlap is the fraction of each segment shared with its neighbor,
	// in [0, 1).
	Overlap float64

	// Progress, when set, receives chunk completion updates.
	Progress ProgressFunc
}

// DefaultConfig returns the separation defaults.
func DefaultConfig() *Config {
	return &Config{
		Overlap: 0.25,
	}
}

// Separator splits mixed recordings into the model's stems.
type Separator struct {
	model  Model
	config *Config
	logger logging.Logger
}

// NewSeparator creates a separator for the given model. A nil config uses
// DefaultConfig.
func NewSeparator(model Model, config *Config) *Separator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Separator{
		model:  model,
		config: config,
		logger: logging.GetGlobalLogger().WithFields(logging.Fields{"component": "separator"}),
	}
}

// Separate splits the mix into one AudioData per model source, keyed by
// source name. Sample rate and channel count carry over from the input.
func (s *Separator) Separate(ctx context.Context, mix *transcode.AudioData) (map[string]*transcode.AudioData, error) {
	channels := mix.Channels()
	if channels == 0 {
		return nil, &tensor.ShapeError{Op: "separation.Separate", Got: []int{0}, Want: []int{s.model.Channels()}}
	}
	if channels != s.model.Channels() {
		return nil, &tensor.ShapeError{Op: "separation.Separate", Got: []int{channels}, Want: []int{s.model.Channels()}}
	}
	length := mix.Length()
	for c, ch := range mix.Samples {
		if len(ch) != length {
			return nil, &tensor.ShapeError{Op: "separation.Separate",
				Got: []int{c, len(ch)}, Want: []int{c, length}}
		}
	}
	if mix.SampleRate != s.model.SampleRate() {
		s.logger.Warn("input sample rate differs from the model's training rate", logging.Fields{
			"input": mix.SampleRate,
			"model": s.model.SampleRate(),
		})
	}

	s.logger.Info("separating", logging.Fields{
		"channels": channels,
		"samples":  length,
		"sources":  s.model.Sources(),
		"overlap":  s.config.Overlap,
	})

	in := tensor.New(channels, length)
	for c, ch := range mix.Samples {
		copy(in.Data[c*length:(c+1)*length], ch)
	}

	out, err := ApplySplits(ctx, s.model, in, s.config.Progress, s.config.Overlap)
	if err != nil {
		return nil, fmt.Errorf("separation: %w", err)
	}

	stems := make(map[string]*transcode.AudioData, len(s.model.Sources()))
	for si, name := range s.model.Sources() {
		src, err := out.Index(si)
		if err != nil {
			return nil, err
		}
		samples := make([][]float64, channels)
		for c := range samples {
			samples[c] = make([]float64, length)
			copy(samples[c], src.Data[c*length:(c+1)*length])
		}
		stems[name] = &transcode.AudioData{Samples: samples, SampleRate: mix.SampleRate}
	}
	return stems, nil
}
