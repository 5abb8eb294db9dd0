// SPDX-License-Identifier: MIT
package plugin

import "github.com/teragonaudio/MrsWatson-sub000/internal/audio"

// Silence is an instrument that only produces silence. It is useful for
// testing a chain without any audio input.
type Silence struct {
	builtin
}

func NewSilence(name string, session *audio.Session) *Silence {
	return &Silence{
		builtin: newBuiltin(name, session, TypeInstrument, 0, 2,
			"an instrument which generates silence"),
	}
}

func (s *Silence) ProcessAudio(_, out *audio.SampleBuffer) {
	out.Clear()
}
