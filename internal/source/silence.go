// SPDX-License-Identifier: MIT
package source

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
)

// Silence is an endless source of zeroed blocks. The engine stops it once
// MIDI input or the tail runs out.
type Silence struct {
	opts Options
	open bool
}

func NewSilence(opts Options) *Silence {
	return &Silence{opts: opts.withDefaults()}
}

func (s *Silence) Open() error {
	s.open = true
	return nil
}

func (s *Silence) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if !s.open {
		return 0, ErrNotOpen
	}
	buf.Clear()
	return buf.Blocksize(), nil
}

func (s *Silence) Close() error {
	s.open = false
	return nil
}

func (s *Silence) Info() Info {
	return Info{
		Format:      FormatSilence,
		SampleRate:  s.opts.SampleRate,
		NumChannels: s.opts.NumChannels,
		BitDepth:    s.opts.BitDepth,
		Frames:      -1,
	}
}
