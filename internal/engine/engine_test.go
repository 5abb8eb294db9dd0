// SPDX-License-Identifier: MIT
package engine

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/analysis"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audiotest"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
	"github.com/teragonaudio/MrsWatson-sub000/internal/transport"
)

const testBlocksize = 64

func newSession(t *testing.T) *audio.Session {
	t.Helper()
	settings := audio.DefaultSettings()
	if err := settings.SetBlocksize(testBlocksize); err != nil {
		t.Fatal(err)
	}
	return audio.NewSession(settings)
}

// pcmInput returns frames of interleaved stereo 16-bit samples at value.
func pcmInput(frames int, value int16) *bytes.Reader {
	var raw bytes.Buffer
	for range frames * 2 {
		binary.Write(&raw, binary.LittleEndian, value)
	}
	return bytes.NewReader(raw.Bytes())
}

func decodePCM(b []byte) []int16 {
	samples := make([]int16, len(b)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return samples
}

type fixture struct {
	session   *audio.Session
	chain     *plugin.Chain
	plugin    *audiotest.MockPlugin
	output    *bytes.Buffer
	transport *audiotest.MockTransport
	opts      Options
}

func newFixture(t *testing.T, input string, stdin *bytes.Reader) *fixture {
	t.Helper()
	f := &fixture{
		session:   newSession(t),
		plugin:    audiotest.NewMockPlugin("mock"),
		output:    &bytes.Buffer{},
		transport: &audiotest.MockTransport{},
	}
	f.chain = plugin.NewChain(f.session)
	if err := f.chain.Append(f.plugin, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	ioOpts := source.OptionsFromSettings(f.session.Settings)
	ioOpts.Stdout = f.output
	if stdin != nil {
		ioOpts.Stdin = stdin
	}
	src, err := source.NewSource(input, ioOpts)
	if err != nil {
		t.Fatalf("NewSource: %v", err)
	}
	sink, err := source.NewSink(source.StreamName, ioOpts)
	if err != nil {
		t.Fatalf("NewSink: %v", err)
	}
	f.opts = Options{
		Session:   f.session,
		Chain:     f.chain,
		Source:    src,
		Sink:      sink,
		Transport: f.transport,
		RunID:     "test-run",
	}
	return f
}

func (f *fixture) progress(t *testing.T) []transport.Progress {
	t.Helper()
	var out []transport.Progress
	for _, msg := range f.transport.Sent() {
		p, ok := msg.(transport.Progress)
		if !ok {
			t.Fatalf("unexpected transport message %T", msg)
		}
		out = append(out, p)
	}
	return out
}

func TestNewEngineValidation(t *testing.T) {
	audiotest.CaptureLog(t)
	valid := newFixture(t, source.StreamName, pcmInput(1, 0)).opts

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{name: "no session", mutate: func(o *Options) { o.Session = nil }},
		{name: "no chain", mutate: func(o *Options) { o.Chain = nil }, wantErr: plugin.ErrInvalidChainSpec},
		{name: "empty chain", mutate: func(o *Options) { o.Chain = plugin.NewChain(o.Session) }, wantErr: plugin.ErrInvalidChainSpec},
		{name: "no source", mutate: func(o *Options) { o.Source = nil }},
		{name: "no sink", mutate: func(o *Options) { o.Sink = nil }},
		{name: "negative tail", mutate: func(o *Options) { o.TailTimeMs = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			_, err := NewEngine(opts)
			if err == nil {
				t.Fatal("NewEngine succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewEngineGeneratesRunID(t *testing.T) {
	audiotest.CaptureLog(t)
	opts := newFixture(t, source.StreamName, pcmInput(1, 0)).opts
	opts.RunID = ""
	a, err := NewEngine(opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewEngine(opts)
	if err != nil {
		t.Fatal(err)
	}
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("run IDs %q and %q should be unique and non-empty", a.RunID(), b.RunID())
	}
}

func TestRunProcessesInputThroughChain(t *testing.T) {
	audiotest.CaptureLog(t)
	// Three and a half blocks: the last block is zero-filled.
	f := newFixture(t, source.StreamName, pcmInput(3*testBlocksize+testBlocksize/2, 16384))
	f.plugin.Gain = 0.5

	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Blocks != 4 || res.Frames != 4*testBlocksize {
		t.Errorf("processed %d blocks / %d frames, want 4 / %d", res.Blocks, res.Frames, 4*testBlocksize)
	}
	if res.RunID != "test-run" {
		t.Errorf("RunID = %q", res.RunID)
	}
	if f.plugin.Blocks != 4 {
		t.Errorf("plugin saw %d blocks, want 4", f.plugin.Blocks)
	}

	samples := decodePCM(f.output.Bytes())
	if len(samples) != 4*testBlocksize*2 {
		t.Fatalf("wrote %d samples, want %d", len(samples), 4*testBlocksize*2)
	}
	if got := samples[0]; math.Abs(float64(got)-8192) > 1 {
		t.Errorf("first sample = %d, want ~8192", got)
	}
	if got := samples[len(samples)-1]; got != 0 {
		t.Errorf("last sample = %d, want zero-filled", got)
	}
	if f.session.Clock.IsPlaying() {
		t.Error("clock still playing after Run")
	}
}

func TestRunSendsProgress(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, source.StreamName, pcmInput(2*testBlocksize, 0))
	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	got := f.progress(t)
	want := []transport.Progress{
		{RunID: "test-run", Frame: testBlocksize, Block: 1},
		{RunID: "test-run", Frame: 2 * testBlocksize, Block: 2},
		{RunID: "test-run", Frame: 2 * testBlocksize, Block: 2, Done: true},
	}
	if len(got) != len(want) {
		t.Fatalf("sent %d events, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRunProcessesTail(t *testing.T) {
	audiotest.CaptureLog(t)
	tests := []struct {
		name       string
		pluginTail int
		userTail   int
		wantBlocks int
	}{
		{name: "none", wantBlocks: 1},
		// 10ms at 44.1kHz is 441 frames, which needs 7 blocks of 64.
		{name: "plugin", pluginTail: 10, wantBlocks: 1 + 7},
		{name: "user longer", pluginTail: 5, userTail: 10, wantBlocks: 1 + 7},
		{name: "plugin longer", pluginTail: 10, userTail: 1, wantBlocks: 1 + 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, source.StreamName, pcmInput(testBlocksize, 1000))
			f.plugin.TailMs = tt.pluginTail
			f.opts.TailTimeMs = tt.userTail

			e, err := NewEngine(f.opts)
			if err != nil {
				t.Fatal(err)
			}
			res, err := e.Run(context.Background())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if res.Blocks != tt.wantBlocks {
				t.Errorf("Blocks = %d, want %d", res.Blocks, tt.wantBlocks)
			}
			if f.output.Len() != tt.wantBlocks*testBlocksize*2*2 {
				t.Errorf("wrote %d bytes for %d blocks", f.output.Len(), tt.wantBlocks)
			}
		})
	}
}

func TestRunSilenceWithoutMidiOnlyProcessesTail(t *testing.T) {
	logs := audiotest.CaptureLog(t)
	f := newFixture(t, "", nil)
	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Blocks != 0 {
		t.Errorf("Blocks = %d, want 0", res.Blocks)
	}
	if !bytes.Contains(logs.Bytes(), []byte("No input audio or MIDI")) {
		t.Error("missing warning about empty input")
	}
}

func TestRunDeliversMidiToFirstPlugin(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, "", nil)
	f.plugin.PluginType = plugin.TypeInstrument

	seq := midi.NewSequence()
	seq.Append(midi.NoteOn(10, 0, 60, 100))
	seq.Append(midi.NoteOn(testBlocksize+5, 0, 64, 100))
	seq.Append(midi.NoteOff(3*testBlocksize+1, 0, 60))
	f.opts.Midi = seq

	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Silence runs until the block holding the last event.
	if res.Blocks != 4 {
		t.Errorf("Blocks = %d, want 4", res.Blocks)
	}
	if seq.Processed() != 3 {
		t.Errorf("processed %d events, want 3", seq.Processed())
	}
	if len(f.plugin.MidiEvents) != 3 {
		t.Fatalf("plugin received %d MIDI batches, want 3", len(f.plugin.MidiEvents))
	}
	wantDeltas := []int{10, 5, 1}
	for i, batch := range f.plugin.MidiEvents {
		if len(batch) != 1 || batch[0].DeltaFrames != wantDeltas[i] {
			t.Errorf("batch %d = %+v, want one event at delta %d", i, batch, wantDeltas[i])
		}
	}
}

func TestRunAppliesMetaEvents(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, "", nil)

	seq := midi.NewSequence()
	// 0x0927c0 is 600000us per quarter note, 100 BPM.
	seq.Append(midi.NewMeta(0, midi.MetaTempo, []byte{0x09, 0x27, 0xc0}))
	seq.Append(midi.NewMeta(1, midi.MetaTimeSignature, []byte{3, 2, 24, 8}))
	seq.Append(midi.NoteOn(2, 0, 60, 100))
	f.opts.Midi = seq

	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := f.session.Settings
	if math.Abs(s.Tempo()-100) > 1e-9 {
		t.Errorf("Tempo = %v, want 100", s.Tempo())
	}
	if s.TimeSigBeatsPerMeasure() != 3 || s.TimeSigNoteValue() != 4 {
		t.Errorf("time signature = %d/%d, want 3/4", s.TimeSigBeatsPerMeasure(), s.TimeSigNoteValue())
	}
	if len(f.plugin.MidiEvents) != 1 || len(f.plugin.MidiEvents[0]) != 1 {
		t.Fatalf("plugin got %+v, want only the note", f.plugin.MidiEvents)
	}
	if f.plugin.MidiEvents[0][0].Type == midi.EventMeta {
		t.Error("meta event was forwarded to the plugin")
	}
}

func TestRunInterrupted(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, source.StreamName, pcmInput(10*testBlocksize, 0))
	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}

	cause := errors.New("stop requested")
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(cause)

	res, err := e.Run(ctx)
	if !errors.Is(err, ErrInterrupted) || !errors.Is(err, cause) {
		t.Fatalf("err = %v, want ErrInterrupted wrapping the cause", err)
	}
	if res.Blocks != 0 {
		t.Errorf("Blocks = %d, want 0", res.Blocks)
	}
	last := f.progress(t)
	if len(last) != 1 || !last[0].Done {
		t.Errorf("progress = %+v, want a single done event", last)
	}
}

func TestRunMapsChannelsToSettings(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, source.StreamName, pcmInput(testBlocksize, 1000))
	// A mono-to-quad plugin widens the chain output; the sink still gets
	// the session's two channels.
	f.plugin.Inputs = 1
	f.plugin.Outputs = 4

	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got, want := f.output.Len(), testBlocksize*2*2; got != want {
		t.Errorf("wrote %d bytes, want %d", got, want)
	}
}

func TestRunWithAnalyzer(t *testing.T) {
	audiotest.CaptureLog(t)
	f := newFixture(t, source.StreamName, pcmInput(4*testBlocksize, 16384))
	analyzer, err := analysis.NewAnalyzer(f.session.Settings.SampleRate(), analysis.Options{FFTSize: 128})
	if err != nil {
		t.Fatal(err)
	}
	f.opts.Analyzer = analyzer

	e, err := NewEngine(f.opts)
	if err != nil {
		t.Fatal(err)
	}
	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Analysis == nil {
		t.Fatal("no analysis report")
	}
	if res.Analysis.Frames != 4*testBlocksize {
		t.Errorf("analysed %d frames, want %d", res.Analysis.Frames, 4*testBlocksize)
	}
	if res.Analysis.Silent() {
		t.Error("constant input reported as silent")
	}
}

func BenchmarkRun(b *testing.B) {
	audiotest.CaptureLog(b)
	input := pcmInput(64*testBlocksize, 1000)
	for b.Loop() {
		input.Seek(0, 0)
		session := audio.NewSession(nil)
		session.Settings.SetBlocksize(testBlocksize)
		chain := plugin.NewChain(session)
		chain.Append(plugin.NewGain(plugin.InternalPrefix+"gain", session), nil)

		ioOpts := source.OptionsFromSettings(session.Settings)
		ioOpts.Stdin = input
		ioOpts.Stdout = &bytes.Buffer{}
		src, _ := source.NewSource(source.StreamName, ioOpts)
		sink, _ := source.NewSink(source.StreamName, ioOpts)
		e, err := NewEngine(Options{Session: session, Chain: chain, Source: src, Sink: sink})
		if err != nil {
			b.Fatal(err)
		}
		if _, err := e.Run(context.Background()); err != nil {
			b.Fatal(err)
		}
	}
}
