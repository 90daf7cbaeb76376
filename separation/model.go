package separation

import "github.com/RyanBlaney/sonido-stems/tensor"

// Model is the inference collaborator. The pipeline prepares its inputs and
// consumes its outputs; everything between is opaque.
//
// Forward receives the padded time-domain mix, shaped
// [1, Channels, SegmentSamples], together with its interleaved spectrogram,
// shaped [1, 2*Channels, freqBins, frames], and returns the predicted
// per-source spectral mask [1, len(Sources), 2*Channels, freqBins, frames]
// and the direct time-domain branch [1, len(Sources), Channels,
// SegmentSamples].
type Model interface {
	Forward(mix, magnitude *tensor.Tensor) (mask, time *tensor.Tensor, err error)

	// Sources names the stems the model predicts, in output order.
	Sources() []string

	// Channels is the audio channel count the model was trained on.
	Channels() int

	// SampleRate is the sample rate the model was trained on.
	SampleRate() int

	// SegmentSamples is the fixed training segment length in samples;
	// every Forward call receives exactly this many samples per channel.
	SegmentSamples() int

	// ValidLength returns the input length the model requires to cover a
	// chunk of the given length. It is always >= length and <=
	// SegmentSamples.
	ValidLength(length int) int
}

// ProgressFunc receives (completed, total) chunk counts. It is called once
// with (0, total) before any work and once after each chunk; completed is
// monotonically non-decreasing.
type ProgressFunc func(completed, total int)
