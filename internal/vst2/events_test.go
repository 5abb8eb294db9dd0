// SPDX-License-Identifier: MIT
package vst2

import (
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
)

func withDelta(ev midi.Event, delta int) midi.Event {
	ev.DeltaFrames = delta
	return ev
}

func TestConvertMidiEventsNoteOffsFirst(t *testing.T) {
	events := []midi.Event{
		withDelta(midi.NoteOn(0, 0, 62, 100), 10),
		withDelta(midi.NoteOff(0, 0, 60), 10),
		withDelta(midi.ControlChange(0, 0, 7, 90), 20),
		withDelta(midi.NoteOff(0, 1, 61), 30),
		midi.NewMeta(0, midi.MetaTempo, []byte{0x07, 0xa1, 0x20}),
	}

	got := ConvertMidiEvents(events, nil)
	if len(got.Events) != 4 {
		t.Fatalf("got %d events, want 4", len(got.Events))
	}

	wantStatus := []byte{0x80, 0x81, 0x90, 0xb0}
	wantDelta := []int32{10, 30, 10, 20}
	for i, ev := range got.Events {
		if ev.Type != MidiType {
			t.Errorf("event %d type = %d", i, ev.Type)
		}
		if ev.MidiData[0] != wantStatus[i] {
			t.Errorf("event %d status = 0x%02x, want 0x%02x", i, ev.MidiData[0], wantStatus[i])
		}
		if ev.DeltaFrames != wantDelta[i] {
			t.Errorf("event %d delta = %d, want %d", i, ev.DeltaFrames, wantDelta[i])
		}
	}
}

func TestConvertMidiEventsReusesBuffer(t *testing.T) {
	dst := &Events{Events: make([]MidiEvent, 0, 8)}
	events := []midi.Event{midi.NoteOn(0, 0, 60, 100)}

	allocs := testing.AllocsPerRun(100, func() {
		ConvertMidiEvents(events, dst)
	})
	if allocs != 0 {
		t.Errorf("ConvertMidiEvents allocated %v times per run", allocs)
	}
	if len(dst.Events) != 1 {
		t.Errorf("got %d events, want 1", len(dst.Events))
	}
}

func TestConvertMidiEventsDropsSysex(t *testing.T) {
	sysex, err := midi.FromBytes(0, []byte{0xf0, 0x41, 0xf7})
	if err != nil {
		t.Fatal(err)
	}
	got := ConvertMidiEvents([]midi.Event{sysex}, nil)
	if len(got.Events) != 0 {
		t.Errorf("sysex converted to %d events", len(got.Events))
	}
}
