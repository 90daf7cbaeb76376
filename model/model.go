// Package model runs the pretrained separation network through ONNX Runtime,
// implementing the inference contract the separation pipeline expects.
package model

// Config describes the trained network's fixed geometry and the ONNX session
// wiring. Zero values resolve to the 4-source 44.1 kHz defaults.
type Config struct {
	// Sources names the stems in the network's output order.
	Sources []string

	// Channels is the trained channel count.
	Channels int

	// SampleRate is the trained sample rate.
	SampleRate int

	// SegmentSeconds is the trained segment duration; the fixed input
	// length is SegmentSeconds*SampleRate samples.
	SegmentSeconds float64

	// InputNames and OutputNames are the graph's tensor names:
	// inputs (mix, magnitude), outputs (mask, time).
	InputNames  []string
	OutputNames []string

	// LibraryPath optionally points at the ONNX Runtime shared library.
	// When empty the platform default lookup applies.
	LibraryPath string
}

// DefaultConfig returns the configuration of the 4-source hybrid network
// this project ships support for.
func DefaultConfig() *Config {
	return &Config{
		Sources:        []string{"drums", "bass", "other", "vocals"},
		Channels:       2,
		SampleRate:     44100,
		SegmentSeconds: 7.8,
		InputNames:     []string{"mix", "mag"},
		OutputNames:    []string{"mask", "time"},
	}
}

// SegmentSamples returns the fixed training segment length in samples.
func (c *Config) SegmentSamples() int {
	return int(c.SegmentSeconds * float64(c.SampleRate))
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Sources == nil {
		out.Sources = def.Sources
	}
	if out.Channels == 0 {
		out.Channels = def.Channels
	}
	if out.SampleRate == 0 {
		out.SampleRate = def.SampleRate
	}
	if out.SegmentSeconds == 0 {
		out.SegmentSeconds = def.SegmentSeconds
	}
	if out.InputNames == nil {
		out.InputNames = def.InputNames
	}
	if out.OutputNames == nil {
		out.OutputNames = def.OutputNames
	}
	return &out
}
