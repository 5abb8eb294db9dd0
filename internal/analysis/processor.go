// SPDX-License-Identifier: MIT
/*
Package analysis measures the audio a run writes: per-channel levels,
clipping, and an averaged spectrum of the first channel.

Processors see each output block once, after it has been handed to the
sink, and keep running totals so that Report can be called at the end of
the run without holding the whole file in memory.
*/
package analysis

import "github.com/teragonaudio/MrsWatson-sub000/internal/audio"

// BlockProcessor consumes output blocks in order.
type BlockProcessor interface {
	Process(buf *audio.SampleBuffer)
}

// SpectrumProvider exposes a magnitude spectrum. It decouples consumers like
// BandEnergies from the FFT implementation.
type SpectrumProvider interface {
	Magnitudes() []float64
	FrequencyForBin(bin int) float64
	FFTSize() int
	SampleRate() float64
}
