// SPDX-License-Identifier: MIT
package midi

import (
	"bytes"
	"testing"
)

func TestFromBytes(t *testing.T) {
	tests := []struct {
		name     string
		msg      []byte
		wantType EventType
		wantErr  bool
	}{
		{"note on", []byte{0x90, 60, 100}, EventChannel, false},
		{"program change", []byte{0xc3, 5}, EventChannel, false},
		{"sysex", []byte{0xf0, 0x41, 0x10, 0xf7}, EventSystem, false},
		{"empty", nil, EventInvalid, true},
		{"data byte", []byte{0x40, 0x40}, EventInvalid, true},
		{"meta", []byte{0xff, 0x2f, 0x00}, EventInvalid, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := FromBytes(42, tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if ev.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", ev.Type, tt.wantType)
			}
			if !tt.wantErr && !bytes.Equal(ev.Bytes(), tt.msg) {
				t.Errorf("Bytes = %x, want %x", ev.Bytes(), tt.msg)
			}
		})
	}
}

func TestIsNoteOff(t *testing.T) {
	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"note off", NoteOff(0, 1, 60), true},
		{"note on zero velocity", NoteOn(0, 1, 60, 0), true},
		{"note on", NoteOn(0, 1, 60, 1), false},
		{"controller", ControlChange(0, 1, 7, 0), false},
		{"meta", NewMeta(0, MetaTempo, []byte{1, 2, 3}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.IsNoteOff(); got != tt.want {
				t.Errorf("IsNoteOff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewMetaCopiesPayload(t *testing.T) {
	data := []byte{4, 2, 24, 8}
	ev := NewMeta(10, MetaTimeSignature, data)
	data[0] = 9
	if ev.Extra[0] != 4 {
		t.Error("meta payload aliases the caller's slice")
	}
	if ev.Bytes() != nil {
		t.Error("meta events have no wire form")
	}
}
