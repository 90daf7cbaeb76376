// Package transcode moves audio between WAV containers and the per-channel
// float64 sample arrays the separation pipeline works on.
package transcode

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/RyanBlaney/sonido-stems/logging"
)

// AudioData represents decoded audio: one equal-length sample array per
// channel, in [-1, 1], plus the sample rate.
type AudioData struct {
	Samples    [][]float64
	SampleRate int
}

// Channels returns the channel count.
func (a *AudioData) Channels() int {
	return len(a.Samples)
}

// Length returns the per-channel sample count.
func (a *AudioData) Length() int {
	if len(a.Samples) == 0 {
		return 0
	}
	return len(a.Samples[0])
}

// Duration returns the audio duration.
func (a *AudioData) Duration() time.Duration {
	if a.SampleRate == 0 {
		return 0
	}
	return time.Duration(float64(a.Length()) / float64(a.SampleRate) * float64(time.Second))
}

// DecodeWAV decodes a PCM WAV stream into per-channel float64 samples.
func DecodeWAV(r io.ReadSeeker) (*AudioData, error) {
	decoder := wav.NewDecoder(r)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("transcode: not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("transcode: read PCM: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		return nil, fmt.Errorf("transcode: invalid channel count %d", channels)
	}
	frames := len(buf.Data) / channels
	scale := 1.0 / float64(int(1)<<(decoder.BitDepth-1))

	samples := make([][]float64, channels)
	for c := range samples {
		samples[c] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			samples[c][i] = float64(buf.Data[i*channels+c]) * scale
		}
	}

	out := &AudioData{Samples: samples, SampleRate: buf.Format.SampleRate}
	logging.Debug("decoded WAV", logging.Fields{
		"channels":    channels,
		"sample_rate": out.SampleRate,
		"duration":    out.Duration().String(),
		"bit_depth":   decoder.BitDepth,
	})
	return out, nil
}

// DecodeWAVFile decodes the WAV file at path.
func DecodeWAVFile(path string) (*AudioData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("transcode: %w", err)
	}
	defer f.Close()
	return DecodeWAV(f)
}

// EncodeWAV writes audio as 16-bit PCM WAV.
func EncodeWAV(w io.WriteSeeker, a *AudioData) error {
	channels := a.Channels()
	if channels == 0 {
		return fmt.Errorf("transcode: no channels to encode")
	}
	frames := a.Length()
	for c, ch := range a.Samples {
		if len(ch) != frames {
			return fmt.Errorf("transcode: channel %d has %d samples, want %d", c, len(ch), frames)
		}
	}

	const bitDepth = 16
	const maxSample = 1<<(bitDepth-1) - 1

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: a.SampleRate},
		SourceBitDepth: bitDepth,
		Data:           make([]int, frames*channels),
	}
	for i := 0; i < frames; i++ {
		for c := 0; c < channels; c++ {
			v := a.Samples[c][i] * (maxSample + 1)
			if v > maxSample {
				v = maxSample
			} else if v < -(maxSample + 1) {
				v = -(maxSample + 1)
			}
			buf.Data[i*channels+c] = int(v)
		}
	}

	enc := wav.NewEncoder(w, a.SampleRate, bitDepth, channels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("transcode: write PCM: %w", err)
	}
	return enc.Close()
}

// EncodeWAVFile writes audio as a 16-bit PCM WAV file at path.
func EncodeWAVFile(path string, a *AudioData) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("transcode: %w", err)
	}
	defer f.Close()
	return EncodeWAV(f, a)
}
