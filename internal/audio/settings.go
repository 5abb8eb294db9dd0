// SPDX-License-Identifier: MIT
/*
Package audio holds the timing and sample data shared by every stage of an
offline processing run: the run's Settings, the transport Clock and the
SampleBuffer blocks that travel through a plugin chain.

A Session bundles Settings and Clock. It is created once per run and passed
explicitly to the chain, to each plugin and to the host callback; nothing in
this package keeps process-wide state.
*/
package audio

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// Defaults used when a run does not override them.
const (
	DefaultSampleRate             = 44100.0
	DefaultNumChannels            = 2
	DefaultBlocksize              = 512
	DefaultTempo                  = 120.0
	DefaultTimeSigBeatsPerMeasure = 4
	DefaultTimeSigNoteValue       = 4
	DefaultBitDepth               = 16
)

// Settings describes the format and musical context of a run. Values are
// written before processing starts and only read afterwards.
type Settings struct {
	sampleRate             float64
	numChannels            int
	blocksize              int
	tempo                  float64
	timeSigBeatsPerMeasure int
	timeSigNoteValue       int
	bitDepth               int
}

// DefaultSettings returns 44.1kHz stereo, 512 frame blocks at 120 BPM in 4/4.
func DefaultSettings() *Settings {
	return &Settings{
		sampleRate:             DefaultSampleRate,
		numChannels:            DefaultNumChannels,
		blocksize:              DefaultBlocksize,
		tempo:                  DefaultTempo,
		timeSigBeatsPerMeasure: DefaultTimeSigBeatsPerMeasure,
		timeSigNoteValue:       DefaultTimeSigNoteValue,
		bitDepth:               DefaultBitDepth,
	}
}

func (s *Settings) SampleRate() float64         { return s.sampleRate }
func (s *Settings) NumChannels() int            { return s.numChannels }
func (s *Settings) Blocksize() int              { return s.blocksize }
func (s *Settings) Tempo() float64              { return s.tempo }
func (s *Settings) TimeSigBeatsPerMeasure() int { return s.timeSigBeatsPerMeasure }
func (s *Settings) TimeSigNoteValue() int       { return s.timeSigNoteValue }
func (s *Settings) BitDepth() int               { return s.bitDepth }

// SetSampleRate rejects non-positive rates and keeps the previous value.
func (s *Settings) SetSampleRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("can't set sample rate to %g", rate)
	}
	log.Debugf("Setting sample rate to %gHz", rate)
	s.sampleRate = rate
	return nil
}

func (s *Settings) SetNumChannels(n int) error {
	if n <= 0 {
		return fmt.Errorf("can't set channel count to %d", n)
	}
	log.Debugf("Setting %d channels", n)
	s.numChannels = n
	return nil
}

func (s *Settings) SetBlocksize(n int) error {
	if n <= 0 {
		return fmt.Errorf("can't set invalid blocksize %d", n)
	}
	log.Debugf("Setting blocksize to %d", n)
	s.blocksize = n
	return nil
}

func (s *Settings) SetTempo(bpm float64) error {
	if bpm <= 0 {
		return fmt.Errorf("can't set tempo to %g", bpm)
	}
	log.Debugf("Setting tempo to %g", bpm)
	s.tempo = bpm
	return nil
}

// SetTempoFromMidiBytes reads the three byte microseconds-per-beat payload
// of a MIDI set-tempo meta event.
func (s *Settings) SetTempoFromMidiBytes(b []byte) error {
	if len(b) < 3 {
		return fmt.Errorf("tempo meta event needs 3 bytes, got %d", len(b))
	}
	usPerBeat := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	if usPerBeat == 0 {
		return fmt.Errorf("tempo meta event has zero beat length")
	}
	return s.SetTempo(1000000.0 / float64(usPerBeat) * 60.0)
}

func (s *Settings) SetTimeSigBeatsPerMeasure(n int) error {
	if n <= 0 {
		return fmt.Errorf("ignoring time signature numerator %d", n)
	}
	if n < 2 || n > 12 {
		log.Infof("Unusual time signature numerator %d", n)
	}
	s.timeSigBeatsPerMeasure = n
	return nil
}

func (s *Settings) SetTimeSigNoteValue(n int) error {
	if n <= 0 {
		return fmt.Errorf("ignoring time signature denominator %d", n)
	}
	switch n {
	case 2, 4, 8, 16:
	default:
		log.Infof("Unusual time signature denominator %d", n)
	}
	s.timeSigNoteValue = n
	return nil
}

// SetTimeSignatureFromString parses a signature such as "3/4" or "7/8".
func (s *Settings) SetTimeSignatureFromString(sig string) error {
	num, den, ok := strings.Cut(strings.TrimSpace(sig), "/")
	if !ok {
		return fmt.Errorf("invalid time signature %q", sig)
	}
	n, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid time signature numerator in %q", sig)
	}
	d, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil || d <= 0 {
		return fmt.Errorf("invalid time signature denominator in %q", sig)
	}
	if err := s.SetTimeSigBeatsPerMeasure(n); err != nil {
		return err
	}
	return s.SetTimeSigNoteValue(d)
}

// SetTimeSignatureFromMidiBytes reads a MIDI time signature meta payload,
// where the denominator is stored as a power of two.
func (s *Settings) SetTimeSignatureFromMidiBytes(b []byte) error {
	if len(b) < 2 {
		return fmt.Errorf("time signature meta event needs 2 bytes, got %d", len(b))
	}
	if b[1] > 6 {
		return fmt.Errorf("time signature denominator 2^%d out of range", b[1])
	}
	if err := s.SetTimeSigBeatsPerMeasure(int(b[0])); err != nil {
		return err
	}
	return s.SetTimeSigNoteValue(1 << b[1])
}

// SetBitDepth accepts the signed PCM depths the file writers support.
func (s *Settings) SetBitDepth(depth int) error {
	switch depth {
	case 16, 24, 32:
		s.bitDepth = depth
		return nil
	default:
		return fmt.Errorf("invalid bit depth %d", depth)
	}
}

// SamplesPerBeat is the number of frames in one beat at the current tempo.
func (s *Settings) SamplesPerBeat() float64 {
	return s.sampleRate * 60.0 / s.tempo
}

// BlockDurationMs is how long one block lasts in real time.
func (s *Settings) BlockDurationMs() float64 {
	return float64(s.blocksize) * 1000.0 / s.sampleRate
}

// Session is the per-run context shared by the chain, its plugins and the
// host callback.
type Session struct {
	Settings *Settings
	Clock    *Clock
}

// NewSession returns a session with the given settings and a stopped clock
// at frame zero. A nil settings value means DefaultSettings.
func NewSession(settings *Settings) *Session {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Session{
		Settings: settings,
		Clock:    NewClock(),
	}
}
