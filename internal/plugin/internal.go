// SPDX-License-Identifier: MIT
package plugin

import (
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
)

// InternalPrefix marks a plugin name as one of the built-in processors.
const InternalPrefix = "mrs_"

// Built-in plugin names.
const (
	PassthruName = InternalPrefix + "passthru"
	SilenceName  = InternalPrefix + "silence"
	GainName     = InternalPrefix + "gain"
	LimiterName  = InternalPrefix + "limiter"
)

// internalLocation is reported as the location of built-in plugins.
const internalLocation = "Internal"

// InternalNames lists the built-in plugins in listing order.
func InternalNames() []string {
	return []string{PassthruName, SilenceName, GainName, LimiterName}
}

// internalNameMatches compares only the length of the built-in name, so
// extra text may follow it.
func internalNameMatches(name, internalName string) bool {
	return strings.HasPrefix(name, internalName)
}

// builtin is the common part of the mrs_* plugins.
type builtin struct {
	base
	typ         Type
	numInputs   int
	numOutputs  int
	description string
}

func newBuiltin(name string, session *audio.Session, typ Type, inputs, outputs int, description string) builtin {
	return builtin{
		base:        base{name: name, location: internalLocation, session: session},
		typ:         typ,
		numInputs:   inputs,
		numOutputs:  outputs,
		description: description,
	}
}

func (b *builtin) Variant() Variant { return VariantInternal }
func (b *builtin) Type() Type       { return b.typ }

func (b *builtin) Open() error {
	b.state = StateOpen
	return nil
}

func (b *builtin) PrepareForProcessing() {
	b.state = StatePrepared
}

func (b *builtin) ProcessMidiEvents([]midi.Event) {}

func (b *builtin) Setting(s Setting) int {
	switch s {
	case SettingNumInputs:
		return b.numInputs
	case SettingNumOutputs:
		return b.numOutputs
	default:
		return 0
	}
}

func (b *builtin) SetParameter(index int, value float32) bool {
	log.Errorf("Attempt to set invalid parameter %d on internal plugin '%s'", index, b.name)
	return false
}

func (b *builtin) Info() Info {
	return Info{
		Name:        b.name,
		Location:    b.location,
		Variant:     VariantInternal,
		Type:        b.typ,
		Description: b.description,
		NumInputs:   b.numInputs,
		NumOutputs:  b.numOutputs,
	}
}

func (b *builtin) Close() {
	b.state = StateClosed
}
