// SPDX-License-Identifier: MIT
/*
Package engine drives an offline processing run.

Each block the engine reads input and only then advances the clock, so a
source at end of file leaves the frame count untouched. The MIDI events due
in the block go to the chain before its audio is processed and written.
Once input is exhausted it keeps feeding silence for the longest tail any
plugin or the user asked for.

	Source ──▶ in ──▶ Chain.ProcessAudio ──▶ out ──▶ map channels ──▶ Sink
	                     ▲                               │
	MIDI sequence ───────┘                               └──▶ Analyzer, Transport
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/teragonaudio/MrsWatson-sub000/internal/analysis"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
	"github.com/teragonaudio/MrsWatson-sub000/internal/transport"
)

// ErrInterrupted is returned when the context is cancelled mid-run. It
// wraps the context's cause.
var ErrInterrupted = errors.New("processing interrupted")

// Options are the collaborators of a run. Session, Chain, Source and Sink
// are required; the rest may be nil.
type Options struct {
	Session   *audio.Session
	Chain     *plugin.Chain
	Source    source.Source
	Sink      source.Sink
	Midi      *midi.Sequence
	Transport transport.Transport
	Analyzer  *analysis.Analyzer

	// TailTimeMs extends processing after input ends when it is longer
	// than every plugin's own tail.
	TailTimeMs int

	// RunID tags progress events. A random UUID is used when empty.
	RunID string
}

// Result summarises a finished or interrupted run.
type Result struct {
	RunID    string
	Frames   uint64
	Blocks   int
	Dropouts int
	Duration time.Duration
	Analysis *analysis.Report
}

// Engine runs one chain over one input.
type Engine struct {
	session   *audio.Session
	chain     *plugin.Chain
	source    source.Source
	sink      source.Sink
	midi      *midi.Sequence
	transport transport.Transport
	analyzer  *analysis.Analyzer
	tailMs    int
	runID     string

	in, out, final *audio.SampleBuffer
	events         []midi.Event
	blocks         int
}

func NewEngine(opts Options) (*Engine, error) {
	switch {
	case opts.Session == nil:
		return nil, errors.New("engine needs a session")
	case opts.Chain == nil || opts.Chain.Len() == 0:
		return nil, fmt.Errorf("%w: no plugins to run", plugin.ErrInvalidChainSpec)
	case opts.Source == nil:
		return nil, errors.New("engine needs an input source")
	case opts.Sink == nil:
		return nil, errors.New("engine needs an output sink")
	case opts.TailTimeMs < 0:
		return nil, fmt.Errorf("tail time must not be negative, got %dms", opts.TailTimeMs)
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	s := opts.Session.Settings
	return &Engine{
		session:   opts.Session,
		chain:     opts.Chain,
		source:    opts.Source,
		sink:      opts.Sink,
		midi:      opts.Midi,
		transport: opts.Transport,
		analyzer:  opts.Analyzer,
		tailMs:    opts.TailTimeMs,
		runID:     runID,
		in:        audio.NewSampleBuffer(s.NumChannels(), s.Blocksize()),
		out:       audio.NewSampleBuffer(s.NumChannels(), s.Blocksize()),
		final:     audio.NewSampleBuffer(s.NumChannels(), s.Blocksize()),
	}, nil
}

func (e *Engine) RunID() string { return e.runID }

// Run opens the source and sink, processes until input, MIDI and tail are
// exhausted, and closes them again. The sink is closed even when the run
// is interrupted so that partial output is still a valid file.
func (e *Engine) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	res.RunID = e.runID

	if err := e.source.Open(); err != nil {
		return res, fmt.Errorf("could not open input source '%s': %w", e.source.Info().Path, err)
	}
	defer e.source.Close()
	if err := e.sink.Open(); err != nil {
		return res, fmt.Errorf("could not open output '%s': %w", e.sink.Info().Path, err)
	}
	defer func() {
		if cerr := e.sink.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not finish writing output: %w", cerr)
		}
	}()
	e.checkSourceFormat()

	log.SetFrameSource(e.session.Clock.CurrentFrame)
	defer log.SetFrameSource(nil)
	log.Infof("Starting processing run %s", e.runID)
	e.chain.PrepareForProcessing()

	err = e.process(ctx)

	clock := e.session.Clock
	clock.Stop()
	res.Frames = clock.CurrentFrame()
	res.Blocks = e.blocks
	res.Dropouts = e.chain.TotalDropouts()
	res.Duration = time.Since(start)
	e.send(transport.Progress{
		RunID:    e.runID,
		Frame:    res.Frames,
		Block:    uint32(res.Blocks),
		Dropouts: uint32(res.Dropouts),
		Done:     true,
	})

	e.chain.LogTimingReport(res.Duration)
	if e.analyzer != nil {
		report := e.analyzer.Report()
		res.Analysis = &report
		report.Log()
	}
	if err != nil {
		return res, err
	}
	log.Infof("Processed %d blocks (%d frames) in %s", res.Blocks, res.Frames, res.Duration.Round(time.Millisecond))
	return res, nil
}

func (e *Engine) checkSourceFormat() {
	info := e.source.Info()
	s := e.session.Settings
	if info.SampleRate > 0 && info.SampleRate != s.SampleRate() {
		log.Unsupportedf("input is %gHz but the run is at %gHz; the input will not be resampled",
			info.SampleRate, s.SampleRate())
	}
	if info.NumChannels > 0 && info.NumChannels != s.NumChannels() {
		log.Infof("Mapping %d input channels to %d", info.NumChannels, s.NumChannels())
	}
}

func (e *Engine) process(ctx context.Context) error {
	_, silent := e.source.(*source.Silence)
	inputDone := silent && e.midi == nil
	if inputDone {
		log.Warnf("No input audio or MIDI, only the tail will be processed")
	}

	for !inputDone {
		if err := interrupted(ctx); err != nil {
			return err
		}

		// Read before advancing so that the clock stops at the last frame
		// of real input.
		n, err := e.source.ReadBlock(e.in)
		switch {
		case errors.Is(err, io.EOF):
			inputDone = true
			continue
		case err != nil:
			return fmt.Errorf("could not read input: %w", err)
		case n < e.in.Blocksize() && !silent:
			log.Debugf("Short read of %d frames, zero-filling the rest of the block", n)
		}
		e.session.Clock.Advance(e.session.Settings.Blocksize())

		pending := e.processMidi()
		e.processBlock()

		if silent && !pending {
			inputDone = true
		}
	}

	tailBlocks := e.tailBlocks()
	if tailBlocks > 0 {
		log.Infof("Processing %d blocks of tail", tailBlocks)
	}
	for range tailBlocks {
		if err := interrupted(ctx); err != nil {
			return err
		}
		e.session.Clock.Advance(e.session.Settings.Blocksize())
		e.in.Clear()
		e.processMidi()
		e.processBlock()
	}
	return nil
}

// processMidi sends the events that fall inside the current block to the
// chain, applying tempo and time signature changes to the settings first.
// It reports whether more events remain.
func (e *Engine) processMidi() bool {
	if e.midi == nil {
		return false
	}
	bs := e.session.Settings.Blocksize()
	start := e.session.Clock.CurrentFrame() - uint64(bs)

	e.events = e.events[:0]
	pending := e.midi.FillEventsFromRange(start, bs, &e.events)

	channel := e.events[:0]
	for _, ev := range e.events {
		if ev.Type == midi.EventMeta {
			e.applyMeta(ev)
			continue
		}
		channel = append(channel, ev)
	}
	e.chain.ProcessMidi(channel)
	return pending
}

func (e *Engine) applyMeta(ev midi.Event) {
	s := e.session.Settings
	var err error
	switch ev.Status {
	case midi.MetaTempo:
		err = s.SetTempoFromMidiBytes(ev.Extra)
	case midi.MetaTimeSignature:
		err = s.SetTimeSignatureFromMidiBytes(ev.Extra)
	case midi.MetaEndOfTrack:
		log.Debugf("Reached end of MIDI track at frame %d", ev.Timestamp)
	}
	if err != nil {
		log.Warnf("Ignoring MIDI meta event at frame %d: %v", ev.Timestamp, err)
	}
}

func (e *Engine) processBlock() {
	e.chain.ProcessAudio(e.in, e.out)
	e.final.CopyAndMapChannels(e.out)

	if err := e.sink.WriteBlock(e.final); err != nil {
		log.Errorf("Could not write block at frame %d: %v", e.session.Clock.CurrentFrame(), err)
	}
	if e.analyzer != nil {
		e.analyzer.Process(e.final)
	}
	e.blocks++
	e.send(transport.Progress{
		RunID:    e.runID,
		Frame:    e.session.Clock.CurrentFrame(),
		Block:    uint32(e.blocks),
		Dropouts: uint32(e.chain.TotalDropouts()),
	})
}

// tailBlocks is the number of silent blocks needed to cover the longest
// tail, rounded up to whole blocks.
func (e *Engine) tailBlocks() int {
	tailMs := max(e.chain.MaxTailTimeMs(), e.tailMs)
	if tailMs <= 0 {
		return 0
	}
	s := e.session.Settings
	frames := float64(tailMs) * s.SampleRate() / 1000
	return int(math.Ceil(frames / float64(s.Blocksize())))
}

func (e *Engine) send(p transport.Progress) {
	if e.transport == nil {
		return
	}
	if err := e.transport.Send(p); err != nil {
		log.Debugf("Could not send progress: %v", err)
	}
}

func interrupted(ctx context.Context) error {
	if ctx.Err() == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInterrupted, context.Cause(ctx))
}
