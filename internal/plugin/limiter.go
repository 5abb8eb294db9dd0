// SPDX-License-Identifier: MIT
package plugin

import "github.com/teragonaudio/MrsWatson-sub000/internal/audio"

// Limiter is a brickwall limiter clamping samples to [-1, 1].
type Limiter struct {
	builtin
}

func NewLimiter(name string, session *audio.Session) *Limiter {
	return &Limiter{
		builtin: newBuiltin(name, session, TypeEffect, 2, 2, "a brickwall limiter effect"),
	}
}

func (l *Limiter) ProcessAudio(in, out *audio.SampleBuffer) {
	out.CopyAndMapChannels(in)
	for _, ch := range out.Samples {
		for i, v := range ch {
			ch[i] = max(-1.0, min(1.0, v))
		}
	}
}
