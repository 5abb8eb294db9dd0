// SPDX-License-Identifier: MIT
/*
Package midi holds timestamped MIDI events and the sequence type the
offline driver reads block by block.

A Sequence is read with a forward-only cursor. Callers must query
increasing, non-overlapping ranges; a range that starts before an unread
event does not rewind the cursor.
*/
package midi

import (
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// Sequence is an ordered list of events. Append order must be timestamp
// order; the sequence does not sort.
type Sequence struct {
	events    []Event
	cursor    int
	processed int
}

// NewSequence returns an empty sequence.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Append adds ev at the end of the sequence.
func (s *Sequence) Append(ev Event) {
	s.events = append(s.events, ev)
}

func (s *Sequence) Len() int { return len(s.events) }

// Processed is the number of events handed out by FillEventsFromRange.
func (s *Sequence) Processed() int { return s.processed }

// Events returns the stored events. The slice must not be modified.
func (s *Sequence) Events() []Event { return s.events }

// FillEventsFromRange appends to out every unread event with
// start <= Timestamp < start+size, setting DeltaFrames relative to start.
// It reports whether events remain past the current range. A size of zero
// or less is an empty range: nothing is delivered and it reports false.
func (s *Sequence) FillEventsFromRange(start uint64, size int, out *[]Event) bool {
	if size <= 0 {
		return false
	}
	stop := start + uint64(size)
	for i := s.cursor; ; i++ {
		if i >= len(s.events) {
			return false
		}
		ev := s.events[i]
		if stop < ev.Timestamp {
			break
		}

		inRange := start <= ev.Timestamp && ev.Timestamp < stop
		switch {
		case inRange:
			ev.DeltaFrames = int(ev.Timestamp - start)
			log.Debugf("Scheduling MIDI event %s in %d frames", ev, ev.DeltaFrames)
			*out = append(*out, ev)
			s.cursor = i + 1
			s.processed++
		case start > ev.Timestamp:
			log.InternalErrorf("inconsistent MIDI sequence ordering at frame %d (range starts at %d)",
				ev.Timestamp, start)
			if s.cursor == i {
				s.cursor = i + 1
			}
		}

		if i == len(s.events)-1 {
			if inRange {
				return false
			}
			break
		}
	}
	return true
}

// Rewind moves the cursor back to the first event.
func (s *Sequence) Rewind() {
	s.cursor = 0
	s.processed = 0
}
