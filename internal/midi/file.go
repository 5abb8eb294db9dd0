// SPDX-License-Identifier: MIT
package midi

import (
	"errors"
	"fmt"
	"os"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

var (
	// ErrUnsupportedFile is returned for standard MIDI files this host
	// cannot place on a sample timeline.
	ErrUnsupportedFile = errors.New("unsupported MIDI file")
	// ErrInvalidFile is returned when a file does not parse as a standard
	// MIDI file.
	ErrInvalidFile = errors.New("invalid MIDI file")
)

// LoadFile reads one track of a standard MIDI file into a Sequence.
// Delta ticks are converted to sample frames using the sample rate in
// settings and the tempo in effect at each event, starting from the
// settings tempo. Tempo, time signature and end-of-track meta events are
// kept in the sequence so the driver can apply them when they come due.
func LoadFile(path string, settings *audio.Settings, track int) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s, err := smf.ReadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s' could not be parsed: %v", ErrInvalidFile, path, err)
	}
	return FromSMF(s, settings, track)
}

// FromSMF converts an already parsed SMF. It is split from LoadFile so tests
// can build files in memory.
func FromSMF(s *smf.SMF, settings *audio.Settings, track int) (*Sequence, error) {
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		log.Unsupportedf("MIDI file with time division in frames/second")
		return nil, fmt.Errorf("%w: SMPTE time division", ErrUnsupportedFile)
	}
	if track < 0 || track >= len(s.Tracks) {
		return nil, fmt.Errorf("cannot read track %d from MIDI file with %d tracks", track, len(s.Tracks))
	}

	division := float64(ticks.Resolution())
	tempo := settings.Tempo()
	framesPerTick := func() float64 {
		ticksPerSecond := division * tempo / 60.0
		return settings.SampleRate() / ticksPerSecond
	}
	log.Debugf("MIDI file has %d tracks and time division %d", len(s.Tracks), ticks.Resolution())

	seq := NewSequence()
	var position float64
	for _, ev := range s.Tracks[track] {
		position += float64(ev.Delta) * framesPerTick()
		timestamp := uint64(position)
		raw := []byte(ev.Message)
		if len(raw) == 0 {
			continue
		}

		if ev.Message.IsMeta() {
			metaType, data, ok := splitMeta(raw)
			if !ok {
				log.Warnf("Ignoring malformed MIDI meta event at %d", timestamp)
				continue
			}
			switch metaType {
			case MetaTempo:
				var bpm float64
				if ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
					tempo = bpm
				}
				log.Debugf("Adding MIDI meta event of type 0x%02x at %d", metaType, timestamp)
				seq.Append(NewMeta(timestamp, metaType, data))
			case MetaTimeSignature, MetaEndOfTrack:
				log.Debugf("Adding MIDI meta event of type 0x%02x at %d", metaType, timestamp)
				seq.Append(NewMeta(timestamp, metaType, data))
			default:
				log.Debugf("Ignoring MIDI meta event of type 0x%02x at %d", metaType, timestamp)
			}
			continue
		}

		out, err := FromBytes(timestamp, raw)
		if err != nil {
			log.Warnf("Ignoring MIDI event at %d: %v", timestamp, err)
			continue
		}
		if out.Type == EventSystem && raw[0] != 0xf0 {
			log.Infof("Ignoring MIDI system event of type 0x%02x", raw[0])
			continue
		}
		seq.Append(out)
	}

	log.Infof("Read %d MIDI events from track %d", seq.Len(), track)
	return seq, nil
}

// splitMeta separates a raw meta message (0xff, type, length, data) into its
// type and payload.
func splitMeta(raw []byte) (byte, []byte, bool) {
	if len(raw) < 3 || raw[0] != 0xff {
		return 0, nil, false
	}
	length, n := 0, 0
	for i := 2; i < len(raw); i++ {
		length = length<<7 | int(raw[i]&0x7f)
		n++
		if raw[i]&0x80 == 0 {
			break
		}
	}
	start := 2 + n
	if start+length > len(raw) {
		return 0, nil, false
	}
	return raw[1], raw[start : start+length], true
}
