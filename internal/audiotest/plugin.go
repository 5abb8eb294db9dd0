// SPDX-License-Identifier: MIT
package audiotest

import (
	"time"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
)

// MockPlugin is a configurable plugin.Plugin. It copies its input to its
// output scaled by Gain, optionally sleeping first to force dropouts.
type MockPlugin struct {
	PluginName string
	PluginType plugin.Type
	Inputs     int
	Outputs    int
	TailMs     int
	NumParams  int
	Gain       float64
	Sleep      time.Duration
	OpenErr    error

	Calls      []string
	Params     map[int]float32
	MidiEvents [][]midi.Event
	Blocks     int

	state plugin.State
}

// NewMockPlugin returns a 2 in / 2 out effect with unity gain.
func NewMockPlugin(name string) *MockPlugin {
	return &MockPlugin{
		PluginName: name,
		PluginType: plugin.TypeEffect,
		Inputs:     2,
		Outputs:    2,
		Gain:       1,
		Params:     make(map[int]float32),
	}
}

func (m *MockPlugin) Name() string            { return m.PluginName }
func (m *MockPlugin) Location() string        { return "mock" }
func (m *MockPlugin) Variant() plugin.Variant { return plugin.VariantInternal }
func (m *MockPlugin) Type() plugin.Type       { return m.PluginType }
func (m *MockPlugin) State() plugin.State     { return m.state }

func (m *MockPlugin) Open() error {
	m.Calls = append(m.Calls, "open")
	if m.OpenErr != nil {
		return m.OpenErr
	}
	m.state = plugin.StateOpen
	return nil
}

func (m *MockPlugin) PrepareForProcessing() {
	m.Calls = append(m.Calls, "prepare")
	m.state = plugin.StatePrepared
}

func (m *MockPlugin) ProcessAudio(in, out *audio.SampleBuffer) {
	m.Blocks++
	if m.Sleep > 0 {
		time.Sleep(m.Sleep)
	}
	out.CopyAndMapChannels(in)
	if m.Gain == 1 {
		return
	}
	for _, ch := range out.Samples {
		for i := range ch {
			ch[i] *= m.Gain
		}
	}
}

func (m *MockPlugin) ProcessMidiEvents(events []midi.Event) {
	m.MidiEvents = append(m.MidiEvents, append([]midi.Event(nil), events...))
}

func (m *MockPlugin) Setting(s plugin.Setting) int {
	switch s {
	case plugin.SettingNumInputs:
		return m.Inputs
	case plugin.SettingNumOutputs:
		return m.Outputs
	case plugin.SettingTailTimeMs:
		return m.TailMs
	default:
		return 0
	}
}

func (m *MockPlugin) SetParameter(index int, value float32) bool {
	if index < 0 || index >= m.NumParams {
		return false
	}
	m.Params[index] = value
	return true
}

func (m *MockPlugin) Info() plugin.Info {
	return plugin.Info{
		Name:       m.PluginName,
		Location:   m.Location(),
		Variant:    m.Variant(),
		Type:       m.PluginType,
		NumInputs:  m.Inputs,
		NumOutputs: m.Outputs,
	}
}

func (m *MockPlugin) Close() {
	m.Calls = append(m.Calls, "close")
	m.state = plugin.StateClosed
}
