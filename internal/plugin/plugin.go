// SPDX-License-Identifier: MIT
/*
Package plugin implements the processing units of a render: the Plugin
variants (hosted VST 2.x modules and the built-in mrs_* processors), the
presets that can be loaded into them, and the Chain that drives a block of
audio and MIDI through every plugin in order.

Plugin lifecycle:

	Unopened -> Open -> PreparedForProcessing -> Closed

Open failures leave a plugin Unopened. ProcessAudio and ProcessMidiEvents
may only be called once a plugin has been prepared.
*/
package plugin

import (
	"fmt"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
)

// Variant is the interface type of a plugin.
type Variant int

const (
	VariantInvalid Variant = iota
	VariantVst2x
	VariantInternal
)

func (v Variant) String() string {
	switch v {
	case VariantVst2x:
		return "VST2.x"
	case VariantInternal:
		return "Internal"
	default:
		return "Invalid"
	}
}

// Type tells effects, which transform audio, from instruments, which
// generate it from MIDI.
type Type int

const (
	TypeUnknown Type = iota
	TypeUnsupported
	TypeEffect
	TypeInstrument
)

func (t Type) String() string {
	switch t {
	case TypeEffect:
		return "effect"
	case TypeInstrument:
		return "instrument"
	case TypeUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// State is a plugin's position in its lifecycle.
type State int

const (
	StateUnopened State = iota
	StateOpen
	StatePrepared
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StatePrepared:
		return "prepared"
	case StateClosed:
		return "closed"
	default:
		return "unopened"
	}
}

// Setting identifies a value queried with Plugin.Setting.
type Setting int

const (
	SettingTailTimeMs Setting = iota
	SettingNumInputs
	SettingNumOutputs
	SettingInitialDelay
)

// Plugin is one processing unit in a chain.
type Plugin interface {
	Name() string
	Location() string
	Variant() Variant
	Type() Type
	State() State

	Open() error
	PrepareForProcessing()
	ProcessAudio(in, out *audio.SampleBuffer)
	ProcessMidiEvents(events []midi.Event)
	Setting(s Setting) int
	SetParameter(index int, value float32) bool
	Info() Info
	Close()
}

// Info describes a plugin for listings and the info command.
type Info struct {
	Name        string
	Location    string
	Variant     Variant
	Type        Type
	Description string
	NumInputs   int
	NumOutputs  int
	Vendor      string
	Version     int
	UniqueID    string
	Parameters  []ParameterInfo
	Programs    []string
	Program     string
	CanDo       map[string]string
	SubPlugins  []string
}

// ParameterInfo is one entry in Info.Parameters.
type ParameterInfo struct {
	Index int
	Name  string
	Value float32
}

func (p ParameterInfo) String() string {
	return fmt.Sprintf("%d: '%s' (%f)", p.Index, p.Name, p.Value)
}

// ProgramSetter is implemented by plugins that can load a numbered program.
type ProgramSetter interface {
	NumPrograms() int
	SetProgram(program int) error
}

// ChunkLoader is implemented by plugins that accept opaque state chunks.
type ChunkLoader interface {
	UniqueID() int32
	NumParams() int
	SetChunk(chunk []byte, isPreset bool) error
}

// base carries the fields every variant shares.
type base struct {
	name     string
	location string
	session  *audio.Session
	state    State
}

func (b *base) Name() string     { return b.name }
func (b *base) Location() string { return b.location }
func (b *base) State() State     { return b.state }
