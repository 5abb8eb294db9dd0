// SPDX-License-Identifier: MIT
package plugin

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// GainParameter is the index of the linear gain parameter.
const GainParameter = 0

// Gain multiplies every sample by a linear gain factor, 1.0 by default.
type Gain struct {
	builtin
	gain float32
}

func NewGain(name string, session *audio.Session) *Gain {
	return &Gain{
		builtin: newBuiltin(name, session, TypeEffect, 2, 2, "a basic gain effect"),
		gain:    1.0,
	}
}

func (g *Gain) ProcessAudio(in, out *audio.SampleBuffer) {
	out.CopyAndMapChannels(in)
	gain := float64(g.gain)
	for _, ch := range out.Samples {
		for i := range ch {
			ch[i] *= gain
		}
	}
}

func (g *Gain) SetParameter(index int, value float32) bool {
	if index != GainParameter {
		log.Errorf("Attempt to set invalid parameter %d on internal gain plugin", index)
		return false
	}
	g.gain = value
	return true
}

func (g *Gain) Info() Info {
	info := g.builtin.Info()
	info.Parameters = []ParameterInfo{{Index: GainParameter, Name: "Gain", Value: g.gain}}
	return info
}
