// SPDX-License-Identifier: MIT
package plugin

import "github.com/teragonaudio/MrsWatson-sub000/internal/audio"

// Passthru copies its input to its output unchanged.
type Passthru struct {
	builtin
}

func NewPassthru(name string, session *audio.Session) *Passthru {
	return &Passthru{
		builtin: newBuiltin(name, session, TypeEffect, 2, 2,
			"a passthru effect which copies input data to the output"),
	}
}

func (p *Passthru) ProcessAudio(in, out *audio.SampleBuffer) {
	out.CopyFrom(in)
}
