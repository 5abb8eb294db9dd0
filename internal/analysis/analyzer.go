// SPDX-License-Identifier: MIT
package analysis

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// Options configures an Analyzer. Zero values select the defaults.
type Options struct {
	FFTSize       int
	ClipThreshold float64
	Window        string // see ParseWindowFunc
}

const (
	defaultFFTSize       = 2048
	defaultClipThreshold = 1.0
)

// Analyzer combines a LevelMeter with an FFTProcessor.
type Analyzer struct {
	levels *LevelMeter
	fft    *FFTProcessor
}

var _ BlockProcessor = (*Analyzer)(nil)

func NewAnalyzer(sampleRate float64, opts Options) (*Analyzer, error) {
	if opts.FFTSize == 0 {
		opts.FFTSize = defaultFFTSize
	}
	if opts.ClipThreshold <= 0 {
		opts.ClipThreshold = defaultClipThreshold
	}
	win, err := ParseWindowFunc(opts.Window)
	if err != nil {
		return nil, err
	}
	fft, err := NewFFTProcessor(opts.FFTSize, sampleRate, win)
	if err != nil {
		return nil, err
	}
	return &Analyzer{levels: NewLevelMeter(opts.ClipThreshold), fft: fft}, nil
}

func (a *Analyzer) Process(buf *audio.SampleBuffer) {
	a.levels.Process(buf)
	a.fft.Process(buf)
}

// Report is the end-of-run summary.
type Report struct {
	Frames     int64
	Channels   []ChannelLevels
	DominantHz float64
	Bands      []BandEnergy
}

// Clipped is the total number of clipped samples over all channels.
func (r Report) Clipped() int64 {
	var n int64
	for _, ch := range r.Channels {
		n += ch.Clipped
	}
	return n
}

// Silent reports whether every channel was silent.
func (r Report) Silent() bool {
	for _, ch := range r.Channels {
		if !ch.Silent {
			return false
		}
	}
	return true
}

// Report flushes any partial FFT frame and summarises the run.
func (a *Analyzer) Report() Report {
	a.fft.Flush()
	return Report{
		Frames:     a.levels.Frames(),
		Channels:   a.levels.Levels(),
		DominantHz: a.fft.DominantFrequency(),
		Bands:      BandEnergies(a.fft, DefaultBands),
	}
}

// Log writes the report at info level.
func (r Report) Log() {
	log.Infof("Analyzed %d frames of output", r.Frames)
	for c, ch := range r.Channels {
		if ch.Silent {
			log.Infof("  Channel %d: silent", c)
			continue
		}
		log.Infof("  Channel %d: peak %.1f dBFS, RMS %.1f dBFS, DC offset %.5f, %d clipped samples",
			c, Decibels(ch.Peak), Decibels(ch.RMS), ch.DCOffset, ch.Clipped)
	}
	if r.DominantHz > 0 {
		log.Infof("  Dominant frequency: %.1fHz", r.DominantHz)
	}
	for _, b := range r.Bands {
		log.Debugf("  Band %-8s %6.0f-%-6.0fHz: %.4f", b.Name, b.LowHz, b.HighHz, b.Level)
	}
	if n := r.Clipped(); n > 0 {
		log.Warnf("Output clipped %d times", n)
	}
}
