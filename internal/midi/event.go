// SPDX-License-Identifier: MIT
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// EventType classifies an Event by its status byte.
type EventType uint8

const (
	EventInvalid EventType = iota
	EventChannel
	EventSystem
	EventMeta
)

func (t EventType) String() string {
	switch t {
	case EventChannel:
		return "channel"
	case EventSystem:
		return "system"
	case EventMeta:
		return "meta"
	default:
		return "invalid"
	}
}

// Meta event types this host acts on.
const (
	MetaTempo         byte = 0x51
	MetaTimeSignature byte = 0x58
	MetaEndOfTrack    byte = 0x2f
)

// Event is a MIDI message placed at an absolute sample frame. For meta
// events Status holds the meta type and Extra the payload; for system
// exclusive events Extra holds the full message.
type Event struct {
	Type        EventType
	Timestamp   uint64
	DeltaFrames int
	Status      byte
	Data1       byte
	Data2       byte
	Extra       []byte
}

// FromBytes builds a channel or system event from a raw wire message.
func FromBytes(timestamp uint64, msg []byte) (Event, error) {
	if len(msg) == 0 {
		return Event{}, fmt.Errorf("empty MIDI message")
	}
	ev := Event{Timestamp: timestamp, Status: msg[0]}
	switch {
	case msg[0] < 0x80:
		return Event{}, fmt.Errorf("MIDI message starts with data byte 0x%02x", msg[0])
	case msg[0] < 0xf0:
		ev.Type = EventChannel
		if len(msg) > 1 {
			ev.Data1 = msg[1]
		}
		if len(msg) > 2 {
			ev.Data2 = msg[2]
		}
	case msg[0] == 0xff:
		return Event{}, fmt.Errorf("meta events are file-only and need NewMeta")
	default:
		ev.Type = EventSystem
		ev.Extra = append([]byte(nil), msg...)
	}
	return ev, nil
}

// NewMeta builds a meta event with a copy of its payload.
func NewMeta(timestamp uint64, metaType byte, data []byte) Event {
	return Event{
		Type:      EventMeta,
		Timestamp: timestamp,
		Status:    metaType,
		Extra:     append([]byte(nil), data...),
	}
}

// NoteOn builds a note-on channel event.
func NoteOn(timestamp uint64, channel, key, velocity uint8) Event {
	ev, _ := FromBytes(timestamp, gomidi.NoteOn(channel, key, velocity))
	return ev
}

// NoteOff builds a note-off channel event.
func NoteOff(timestamp uint64, channel, key uint8) Event {
	ev, _ := FromBytes(timestamp, gomidi.NoteOff(channel, key))
	return ev
}

// ControlChange builds a controller channel event.
func ControlChange(timestamp uint64, channel, controller, value uint8) Event {
	ev, _ := FromBytes(timestamp, gomidi.ControlChange(channel, controller, value))
	return ev
}

// IsNoteOff reports note-off messages, including note-on with velocity 0.
func (e Event) IsNoteOff() bool {
	if e.Type != EventChannel {
		return false
	}
	switch e.Status & 0xf0 {
	case 0x80:
		return true
	case 0x90:
		return e.Data2 == 0
	default:
		return false
	}
}

// Bytes returns the wire form of a channel or system event.
func (e Event) Bytes() []byte {
	switch e.Type {
	case EventChannel:
		switch e.Status & 0xf0 {
		case 0xc0, 0xd0:
			return []byte{e.Status, e.Data1}
		default:
			return []byte{e.Status, e.Data1, e.Data2}
		}
	case EventSystem:
		return e.Extra
	default:
		return nil
	}
}

func (e Event) String() string {
	if e.Type == EventMeta {
		return fmt.Sprintf("meta 0x%02x (%d bytes) @%d", e.Status, len(e.Extra), e.Timestamp)
	}
	return fmt.Sprintf("%s 0x%02x 0x%02x 0x%02x @%d", e.Type, e.Status, e.Data1, e.Data2, e.Timestamp)
}
