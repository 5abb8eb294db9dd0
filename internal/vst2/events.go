// SPDX-License-Identifier: MIT
package vst2

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
)

// MidiType is the kVstMidiType event type.
const MidiType int32 = 1

// MidiEvent mirrors VstMidiEvent.
type MidiEvent struct {
	Type            int32
	DeltaFrames     int32
	Flags           int32
	NoteLength      int32
	NoteOffset      int32
	MidiData        [4]byte
	Detune          int8
	NoteOffVelocity byte
}

// Events is the block of events passed with EffProcessEvents.
type Events struct {
	Events []MidiEvent
}

// ConvertMidiEvents fills dst with the VST form of events and returns it.
// Note-off messages are placed before all other events, since some
// monophonic instruments mishandle a note-on that arrives before the
// previous note's release. Meta events are dropped; sysex is unsupported.
func ConvertMidiEvents(events []midi.Event, dst *Events) *Events {
	if dst == nil {
		dst = &Events{}
	}
	dst.Events = dst.Events[:0]

	for pass := range 2 {
		noteOffs := pass == 0
		for _, ev := range events {
			if isStatusNoteOff(ev) != noteOffs {
				continue
			}
			switch ev.Type {
			case midi.EventChannel:
				dst.Events = append(dst.Events, MidiEvent{
					Type:        MidiType,
					DeltaFrames: int32(ev.DeltaFrames),
					MidiData:    [4]byte{ev.Status, ev.Data1, ev.Data2, 0},
				})
			case midi.EventSystem:
				log.Unsupportedf("VST2.x plugin sysex messages")
			case midi.EventMeta:
			default:
				log.InternalErrorf("cannot convert MIDI event type '%s' to a VST event", ev.Type)
			}
		}
	}
	return dst
}

// isStatusNoteOff matches only 0x8n messages, leaving zero-velocity
// note-ons in their original position.
func isStatusNoteOff(ev midi.Event) bool {
	return ev.Type == midi.EventChannel && ev.Status>>4 == 0x08
}
