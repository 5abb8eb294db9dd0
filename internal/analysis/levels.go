// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
)

// ChannelLevels summarises one output channel.
type ChannelLevels struct {
	Peak     float64 // largest absolute sample
	RMS      float64
	DCOffset float64 // mean sample value
	Clipped  int64   // samples at or above the clip threshold
	Silent   bool
}

// LevelMeter accumulates per-channel levels.
type LevelMeter struct {
	threshold float64
	peak      []float64
	sum       []float64
	sumSq     []float64
	clipped   []int64
	frames    int64
	scratch   []float64
}

var _ BlockProcessor = (*LevelMeter)(nil)

// NewLevelMeter counts samples whose magnitude reaches clipThreshold as
// clipped.
func NewLevelMeter(clipThreshold float64) *LevelMeter {
	return &LevelMeter{threshold: clipThreshold}
}

func (m *LevelMeter) Process(buf *audio.SampleBuffer) {
	m.grow(buf.NumChannels())
	if cap(m.scratch) < buf.Blocksize() {
		m.scratch = make([]float64, buf.Blocksize())
	}
	abs := m.scratch[:buf.Blocksize()]

	for c, ch := range buf.Samples {
		if len(ch) == 0 {
			continue
		}
		for i, v := range ch {
			abs[i] = math.Abs(v)
			if abs[i] >= m.threshold {
				m.clipped[c]++
			}
		}
		m.peak[c] = math.Max(m.peak[c], floats.Max(abs))
		m.sum[c] += floats.Sum(ch)
		m.sumSq[c] += floats.Dot(ch, ch)
	}
	m.frames += int64(buf.Blocksize())
}

func (m *LevelMeter) grow(channels int) {
	for len(m.peak) < channels {
		m.peak = append(m.peak, 0)
		m.sum = append(m.sum, 0)
		m.sumSq = append(m.sumSq, 0)
		m.clipped = append(m.clipped, 0)
	}
}

// Frames is the number of frames measured.
func (m *LevelMeter) Frames() int64 { return m.frames }

// Levels returns the totals for every channel seen so far.
func (m *LevelMeter) Levels() []ChannelLevels {
	out := make([]ChannelLevels, len(m.peak))
	for c := range out {
		out[c] = ChannelLevels{
			Peak:    m.peak[c],
			Clipped: m.clipped[c],
			Silent:  m.peak[c] == 0,
		}
		if m.frames > 0 {
			n := float64(m.frames)
			out[c].RMS = math.Sqrt(m.sumSq[c] / n)
			out[c].DCOffset = m.sum[c] / n
		}
	}
	return out
}

// Decibels converts a linear level to dBFS, with silence at -Inf.
func Decibels(level float64) float64 {
	return 20 * math.Log10(level)
}
