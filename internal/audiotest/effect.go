// SPDX-License-Identifier: MIT
package audiotest

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/vst2"
)

// MockEffect is an in-memory vst2.Effect. It behaves like a simple gain
// effect whose parameter 0 scales the signal, records every dispatched
// opcode and keeps program and chunk state.
type MockEffect struct {
	ID           int32
	EffectFlags  vst2.EffectFlags
	BadMagic     bool
	Inputs       int
	Outputs      int
	Params       []float32
	ParamNames   []string
	ProgramNames []string
	TailFrames   int64
	Category     int64
	SubPlugins   map[int32]string
	// RejectProgram makes EffSetProgram fail for every program.
	RejectProgram bool
	// LieAboutProgram makes EffSetProgram succeed without switching.
	LieAboutProgram bool

	Host       vst2.HostCallback
	Ops        []vst2.EffectOpcode
	Program    int
	Chunk      []byte
	ChunkIndex int32
	Events     []vst2.MidiEvent
	SampleRate float32
	Blocksize  int64
	Speakers   vst2.SpeakerArrangements
	TimeInfos  []vst2.TimeInfo

	shellCursor []int32
}

// NewMockEffect returns a stereo effect with one parameter at 1.0 and no
// programs.
func NewMockEffect(id string) *MockEffect {
	return &MockEffect{
		ID:          vst2.IDFromString(id),
		EffectFlags: vst2.FlagCanReplacing,
		Inputs:      2,
		Outputs:     2,
		Params:      []float32{1},
		ParamNames:  []string{"Gain"},
	}
}

// Loader returns a vst2.Loader that hands out m and stores the host
// callback it was given.
func (m *MockEffect) Loader() vst2.Loader {
	return vst2.LoaderFunc(func(path string, host vst2.HostCallback) (vst2.Effect, error) {
		m.Host = host
		return m, nil
	})
}

func (m *MockEffect) Dispatch(op vst2.EffectOpcode, index int32, value int64, ptr any, opt float32) int64 {
	m.Ops = append(m.Ops, op)
	switch op {
	case vst2.EffSetSampleRate:
		m.SampleRate = opt
	case vst2.EffSetBlockSize:
		m.Blocksize = value
	case vst2.EffSetSpeakerArrangement:
		if s, ok := ptr.(*vst2.SpeakerArrangements); ok {
			m.Speakers = *s
		}
	case vst2.EffGetPlugCategory:
		return m.Category
	case vst2.EffSetProgram:
		if m.RejectProgram {
			return 1
		}
		if !m.LieAboutProgram {
			m.Program = int(value)
		}
	case vst2.EffGetProgram:
		return int64(m.Program)
	case vst2.EffGetProgramName:
		if m.Program < len(m.ProgramNames) {
			setString(ptr, m.ProgramNames[m.Program])
		}
	case vst2.EffGetProgramNameIndexed:
		if int(index) < len(m.ProgramNames) {
			setString(ptr, m.ProgramNames[index])
			return 1
		}
	case vst2.EffGetParamName:
		if int(index) < len(m.ParamNames) {
			setString(ptr, m.ParamNames[index])
		}
	case vst2.EffGetVendorString:
		setString(ptr, "Mock Audio")
		return 1
	case vst2.EffGetVendorVersion:
		return 1000
	case vst2.EffSetChunk:
		if b, ok := ptr.([]byte); ok {
			m.Chunk = append([]byte(nil), b...)
			m.ChunkIndex = index
			return 1
		}
	case vst2.EffGetTailSize:
		return m.TailFrames
	case vst2.EffProcessEvents:
		if e, ok := ptr.(*vst2.Events); ok {
			m.Events = append(m.Events, e.Events...)
			return 1
		}
	case vst2.EffCanDo:
		if ptr == "receiveVstMidiEvent" {
			return 1
		}
		return -1
	case vst2.EffShellGetNextPlugin:
		if m.shellCursor == nil {
			for id := range m.SubPlugins {
				m.shellCursor = append(m.shellCursor, id)
			}
		}
		if len(m.shellCursor) == 0 {
			return 0
		}
		id := m.shellCursor[0]
		m.shellCursor = m.shellCursor[1:]
		setString(ptr, m.SubPlugins[id])
		return int64(id)
	}
	return 0
}

// ProcessReplacing asks the host for the time, then writes input times
// parameter 0 to the output. Missing input channels produce silence.
func (m *MockEffect) ProcessReplacing(in, out [][]float32, frames int) {
	if m.Host != nil {
		var info vst2.TimeInfo
		m.Host(m, vst2.HostGetTime, 0, int64(vst2.PpqPosValid|vst2.TempoValid), &info, 0)
		m.TimeInfos = append(m.TimeInfos, info)
	}
	gain := float32(1)
	if len(m.Params) > 0 {
		gain = m.Params[0]
	}
	for c := range out {
		for i := range frames {
			var v float32
			if c < len(in) {
				v = in[c][i]
			}
			out[c][i] = v * gain
		}
	}
}

func (m *MockEffect) SetParameter(index int32, value float32) { m.Params[index] = value }
func (m *MockEffect) GetParameter(index int32) float32        { return m.Params[index] }

func (m *MockEffect) Magic() int32 {
	if m.BadMagic {
		return 0
	}
	return vst2.EffectMagic
}

func (m *MockEffect) Flags() vst2.EffectFlags { return m.EffectFlags }
func (m *MockEffect) NumInputs() int          { return m.Inputs }
func (m *MockEffect) NumOutputs() int         { return m.Outputs }
func (m *MockEffect) NumParams() int          { return len(m.Params) }
func (m *MockEffect) NumPrograms() int        { return len(m.ProgramNames) }
func (m *MockEffect) UniqueID() int32         { return m.ID }
func (m *MockEffect) Version() int32          { return 1 }

// Called reports whether op was dispatched at least once.
func (m *MockEffect) Called(op vst2.EffectOpcode) bool {
	for _, o := range m.Ops {
		if o == op {
			return true
		}
	}
	return false
}

func setString(ptr any, s string) {
	if p, ok := ptr.(*string); ok {
		*p = s
	}
}
