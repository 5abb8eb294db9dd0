// SPDX-License-Identifier: MIT
package source

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
)

// NullSink discards everything written to it but counts the frames.
type NullSink struct {
	opts   Options
	frames int64
}

func (n *NullSink) Open() error  { return nil }
func (n *NullSink) Close() error { return nil }

func (n *NullSink) WriteBlock(buf *audio.SampleBuffer) error {
	n.frames += int64(buf.Blocksize())
	return nil
}

func (n *NullSink) Info() Info {
	return Info{
		Format:      FormatNull,
		SampleRate:  n.opts.SampleRate,
		NumChannels: n.opts.NumChannels,
		BitDepth:    n.opts.BitDepth,
		Frames:      n.frames,
	}
}
