// SPDX-License-Identifier: MIT
package vst2

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

type stubEffect struct {
	id      int32
	inputs  int
	outputs int
}

func (e *stubEffect) Dispatch(EffectOpcode, int32, int64, any, float32) int64 { return 0 }
func (e *stubEffect) ProcessReplacing(in, out [][]float32, frames int)        {}
func (e *stubEffect) SetParameter(int32, float32)                             {}
func (e *stubEffect) GetParameter(int32) float32                              { return 0 }
func (e *stubEffect) Magic() int32                                            { return EffectMagic }
func (e *stubEffect) Flags() EffectFlags                                      { return FlagCanReplacing }
func (e *stubEffect) NumInputs() int                                          { return e.inputs }
func (e *stubEffect) NumOutputs() int                                         { return e.outputs }
func (e *stubEffect) NumParams() int                                          { return 0 }
func (e *stubEffect) NumPrograms() int                                        { return 0 }
func (e *stubEffect) UniqueID() int32                                         { return e.id }
func (e *stubEffect) Version() int32                                          { return 1 }

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	prev := log.GetLevel()
	log.SetLevel(log.LevelDebug)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(prev)
	})
	return &buf
}

func playingSession(t *testing.T, frame int) *audio.Session {
	t.Helper()
	session := audio.NewSession(nil)
	if err := session.Settings.SetBlocksize(frame); err != nil {
		t.Fatalf("SetBlocksize: %v", err)
	}
	session.Clock.Advance(frame)
	return session
}

func TestGetTimePPQ(t *testing.T) {
	host := NewHostCallback(playingSession(t, 22050), "test", 0)

	var info TimeInfo
	if got := host.Dispatch(nil, HostGetTime, 0, int64(PpqPosValid), &info, 0); got != 1 {
		t.Fatalf("GetTime returned %d, want 1", got)
	}

	want := 22050.0*22050.0 + 1
	if info.PpqPos != want {
		t.Errorf("PpqPos = %f, want %f", info.PpqPos, want)
	}
	if info.SamplePos != 22050 || info.SampleRate != 44100 {
		t.Errorf("SamplePos/SampleRate = %f/%f", info.SamplePos, info.SampleRate)
	}
	if !info.Flags.Has(PpqPosValid) {
		t.Error("PpqPosValid not set")
	}
	if !info.Flags.Has(TransportPlaying) || !info.Flags.Has(TransportChanged) {
		t.Errorf("transport flags = %b, want playing and changed", info.Flags)
	}
}

func TestGetTimeAtFrameZero(t *testing.T) {
	host := NewHostCallback(audio.NewSession(nil), "test", 0)

	var info TimeInfo
	host.Dispatch(nil, HostGetTime, 0, int64(PpqPosValid|BarsValid), &info, 0)
	if info.PpqPos != 1 {
		t.Errorf("PpqPos = %f, want 1", info.PpqPos)
	}
	if info.BarStartPos != 1 {
		t.Errorf("BarStartPos = %f, want 1", info.BarStartPos)
	}
	if info.Flags.Has(TransportPlaying) {
		t.Error("stopped clock reported as playing")
	}
}

func TestGetTimeBarStart(t *testing.T) {
	session := playingSession(t, 1)
	if err := session.Settings.SetTimeSigBeatsPerMeasure(3); err != nil {
		t.Fatal(err)
	}
	host := NewHostCallback(session, "test", 0)

	var info TimeInfo
	host.Dispatch(nil, HostGetTime, 0, int64(PpqPosValid|BarsValid), &info, 0)
	// ppq = 22050*1 + 1 = 22051; floor(22051/3)*3 + 1 = 22051
	if info.PpqPos != 22051 {
		t.Fatalf("PpqPos = %f, want 22051", info.PpqPos)
	}
	if info.BarStartPos != 22051 {
		t.Errorf("BarStartPos = %f, want 22051", info.BarStartPos)
	}
}

func TestGetTimeBarsWithoutPPQ(t *testing.T) {
	buf := captureLog(t)
	host := NewHostCallback(playingSession(t, 512), "test", 0)

	var info TimeInfo
	host.Dispatch(nil, HostGetTime, 0, int64(BarsValid), &info, 0)
	if !strings.Contains(buf.String(), "[ERROR]") {
		t.Errorf("expected error log, got %q", buf.String())
	}
	if !info.Flags.Has(BarsValid) {
		t.Error("BarsValid should still be set")
	}
}

func TestGetTimeOptionalFields(t *testing.T) {
	session := audio.NewSession(nil)
	session.Settings.SetTempo(96)
	session.Settings.SetTimeSignatureFromString("6/8")
	host := NewHostCallback(session, "test", 0)

	tests := []struct {
		name  string
		mask  TimeInfoFlags
		check func(t *testing.T, info TimeInfo)
	}{
		{"tempo", TempoValid, func(t *testing.T, info TimeInfo) {
			if info.Tempo != 96 || !info.Flags.Has(TempoValid) {
				t.Errorf("Tempo = %f flags %b", info.Tempo, info.Flags)
			}
		}},
		{"time signature", TimeSigValid, func(t *testing.T, info TimeInfo) {
			if info.TimeSigNumerator != 6 || info.TimeSigDenominator != 8 {
				t.Errorf("time signature = %d/%d", info.TimeSigNumerator, info.TimeSigDenominator)
			}
		}},
		{"nanos unsupported", NanosValid, func(t *testing.T, info TimeInfo) {
			if info.Flags.Has(NanosValid) {
				t.Error("NanosValid must not be set")
			}
		}},
		{"smpte unsupported", SmpteValid | ClockValid, func(t *testing.T, info TimeInfo) {
			if info.Flags.Has(SmpteValid) || info.Flags.Has(ClockValid) {
				t.Error("SMPTE and clock flags must not be set")
			}
		}},
		{"nothing requested", 0, func(t *testing.T, info TimeInfo) {
			if info.Flags != 0 {
				t.Errorf("Flags = %b, want 0", info.Flags)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var info TimeInfo
			if got := host.Dispatch(nil, HostGetTime, 0, int64(tt.mask), &info, 0); got != 1 {
				t.Fatalf("GetTime returned %d", got)
			}
			tt.check(t, info)
		})
	}
}

func TestGetTimeWithoutTimeInfo(t *testing.T) {
	buf := captureLog(t)
	host := NewHostCallback(nil, "test", 0)
	if got := host.Dispatch(nil, HostGetTime, 0, 0, nil, 0); got != 0 {
		t.Errorf("GetTime with nil ptr = %d, want 0", got)
	}
	if !strings.Contains(buf.String(), "internal error") {
		t.Errorf("expected internal error log, got %q", buf.String())
	}
}

func TestDispatchFixedAnswers(t *testing.T) {
	session := audio.NewSession(nil)
	session.Settings.SetBlocksize(256)
	host := NewHostCallback(session, "test", IDFromString("TCR2"))

	tests := []struct {
		opcode HostOpcode
		want   int64
	}{
		{HostVersion, 2400},
		{HostCurrentID, int64(IDFromString("TCR2"))},
		{HostIdle, 1},
		{HostWantMidi, 1},
		{HostGetSampleRate, 44100},
		{HostGetBlockSize, 256},
		{HostGetInputLatency, 0},
		{HostGetOutputLatency, 0},
		{HostGetCurrentProcessLevel, 0},
		{HostGetAutomationState, 1},
		{HostGetVendorVersion, 907},
		{HostGetLanguage, 1},
		{HostAutomate, 0},
		{HostUpdateDisplay, 0},
	}

	for _, tt := range tests {
		t.Run(tt.opcode.String(), func(t *testing.T) {
			if got := host.Dispatch(nil, tt.opcode, 0, 0, nil, 0); got != tt.want {
				t.Errorf("Dispatch(%s) = %d, want %d", tt.opcode, got, tt.want)
			}
		})
	}
}

func TestDispatchNeutralAnswers(t *testing.T) {
	buf := captureLog(t)
	host := NewHostCallback(nil, "test", 0)
	effect := &stubEffect{id: IDFromString("abcd")}

	opcodes := []HostOpcode{
		HostPinConnected, HostProcessEvents, HostSetTime, HostTempoAt,
		HostGetNumAutomatableParameters, HostGetParameterQuantization, HostNeedIdle,
		HostSizeWindow, HostGetPreviousPlug, HostGetNextPlug, HostWillReplaceOrAccumulate,
		HostOfflineStart, HostOfflineRead, HostOfflineWrite, HostOfflineGetCurrentPass,
		HostOfflineGetCurrentMetaPass, HostSetOutputSampleRate, HostGetOutputSpeakerArrangement,
		HostVendorSpecific, HostSetIcon, HostOpenWindow, HostCloseWindow, HostGetDirectory,
		HostBeginEdit, HostEndEdit, HostOpenFileSelector, HostCloseFileSelector, HostEditFile,
		HostGetChunkFile, HostGetInputSpeakerArrangement, HostOpcode(5), HostOpcode(9999),
		HostOpcode(-1),
	}
	for _, op := range opcodes {
		buf.Reset()
		if got := host.Dispatch(effect, op, 0, 0, nil, 0); got != 0 {
			t.Errorf("Dispatch(%s) = %d, want 0", op, got)
		}
		if !strings.Contains(buf.String(), "[WARN]") {
			t.Errorf("Dispatch(%s) did not warn: %q", op, buf.String())
		}
		if !strings.Contains(buf.String(), "abcd") && !strings.Contains(buf.String(), "unsupported feature") {
			t.Errorf("Dispatch(%s) log does not name the plugin: %q", op, buf.String())
		}
	}
}

func TestDispatchStrings(t *testing.T) {
	host := NewHostCallback(nil, "test", 0)

	var vendor string
	if got := host.Dispatch(nil, HostGetVendorString, 0, 0, &vendor, 0); got != 1 || vendor != HostVendor {
		t.Errorf("vendor = %q (%d)", vendor, got)
	}

	product := []byte("previous contents")
	if got := host.Dispatch(nil, HostGetProductString, 0, 0, &product, 0); got != 1 || string(product) != HostProduct {
		t.Errorf("product = %q (%d)", product, got)
	}

	if got := host.Dispatch(nil, HostGetVendorString, 0, 0, 42, 0); got != 0 {
		t.Errorf("vendor into int = %d, want 0", got)
	}
}

func TestDispatchCanDo(t *testing.T) {
	host := NewHostCallback(nil, "test", 0)
	tests := []struct {
		what any
		want int64
	}{
		{"sendVstEvents", 1},
		{"sendVstTimeInfo", 1},
		{"shellCategory", 1},
		{"receiveVstEvents", 0},
		{"offline", 0},
		{"somethingNew", 0},
		{"", 0},
		{nil, 0},
	}
	for _, tt := range tests {
		if got := host.Dispatch(nil, HostCanDo, 0, 0, tt.what, 0); got != tt.want {
			t.Errorf("CanDo(%v) = %d, want %d", tt.what, got, tt.want)
		}
	}

	what := "startStopProcess"
	if got := host.Dispatch(nil, HostCanDo, 0, 0, &what, 0); got != 1 {
		t.Errorf("CanDo(*string) = %d, want 1", got)
	}
}

func TestDispatchIOChanged(t *testing.T) {
	host := NewHostCallback(nil, "test", 0)
	effect := &stubEffect{inputs: 1, outputs: 4}

	if got := host.Dispatch(effect, HostIOChanged, 0, 0, nil, 0); got != -1 {
		t.Errorf("IOChanged without hook = %d, want -1", got)
	}

	var seen Effect
	host.OnIOChanged(func(e Effect) bool {
		seen = e
		return true
	})
	if got := host.Dispatch(effect, HostIOChanged, 0, 0, nil, 0); got != 0 {
		t.Errorf("IOChanged = %d, want 0", got)
	}
	if seen != effect {
		t.Error("hook did not receive the effect")
	}

	if got := host.Dispatch(nil, HostIOChanged, 0, 0, nil, 0); got != 0 {
		t.Errorf("IOChanged with nil effect = %d, want 0", got)
	}
}

func BenchmarkGetTime(b *testing.B) {
	session := audio.NewSession(nil)
	session.Clock.Advance(512)
	host := NewHostCallback(session, "bench", 0)
	log.SetLevel(log.LevelError)
	defer log.SetLevel(log.LevelInfo)

	var info TimeInfo
	mask := int64(PpqPosValid | TempoValid | BarsValid | TimeSigValid)
	for b.Loop() {
		host.Dispatch(nil, HostGetTime, 0, mask, &info, 0)
	}
}
