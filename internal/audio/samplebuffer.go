// SPDX-License-Identifier: MIT
package audio

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// SampleBuffer is one block of non-interleaved audio. Samples always holds
// NumChannels rows of exactly Blocksize values each.
type SampleBuffer struct {
	Samples   [][]float64
	blocksize int
}

// NewSampleBuffer allocates a zeroed buffer.
func NewSampleBuffer(numChannels, blocksize int) *SampleBuffer {
	if numChannels < 0 {
		numChannels = 0
	}
	if blocksize < 0 {
		blocksize = 0
	}
	b := &SampleBuffer{
		Samples:   make([][]float64, numChannels),
		blocksize: blocksize,
	}
	for i := range b.Samples {
		b.Samples[i] = make([]float64, blocksize)
	}
	return b
}

func (b *SampleBuffer) NumChannels() int { return len(b.Samples) }
func (b *SampleBuffer) Blocksize() int   { return b.blocksize }

// Clear zero-fills every channel in place.
func (b *SampleBuffer) Clear() {
	for _, ch := range b.Samples {
		clear(ch)
	}
}

// CopyFrom copies src into b. Buffers that differ in channel count or block
// size are never copied; b is left untouched and false is returned.
func (b *SampleBuffer) CopyFrom(src *SampleBuffer) bool {
	if src == nil || b.NumChannels() != src.NumChannels() || b.blocksize != src.blocksize {
		return false
	}
	for i := range b.Samples {
		copy(b.Samples[i], src.Samples[i])
	}
	return true
}

// Resize changes the channel count. Existing channels keep their samples.
// New channels are either copies of channel 0 (up-mixing a source into a
// plugin with more inputs) or silence.
func (b *SampleBuffer) Resize(numChannels int, duplicateFirstChannel bool) {
	if numChannels < 0 {
		numChannels = 0
	}
	old := b.NumChannels()
	if numChannels == old {
		return
	}
	if numChannels < old {
		b.Samples = b.Samples[:numChannels:numChannels]
		return
	}

	samples := make([][]float64, numChannels)
	copy(samples, b.Samples)
	for i := old; i < numChannels; i++ {
		samples[i] = make([]float64, b.blocksize)
		if duplicateFirstChannel && old > 0 {
			copy(samples[i], samples[0])
		}
	}
	b.Samples = samples
}

// CopyAndMapChannels copies src into b when both have the same block size.
// Channel i of b receives channel i modulo src's channel count, so a stereo
// source fills a four channel buffer as L R L R. A source with no channels
// clears b.
func (b *SampleBuffer) CopyAndMapChannels(src *SampleBuffer) bool {
	if src == nil || b.blocksize != src.blocksize {
		log.InternalErrorf("source and destination buffer are not the same size")
		return false
	}
	if src.NumChannels() != b.NumChannels() {
		log.Debugf("Mapping channels from %d -> %d", src.NumChannels(), b.NumChannels())
	}
	for i := range b.Samples {
		if src.NumChannels() == 0 {
			clear(b.Samples[i])
			continue
		}
		copy(b.Samples[i], src.Samples[i%src.NumChannels()])
	}
	return true
}
