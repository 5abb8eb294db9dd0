// SPDX-License-Identifier: MIT
package audio

import "sync/atomic"

// Clock is the transport of a run. It has two states, stopped and playing,
// and two transitions. TransportChanged is true only right after a
// transition that flipped the state. Only the frame position may be read
// from other goroutines.
type Clock struct {
	currentFrame     atomic.Uint64
	isPlaying        bool
	transportChanged bool
}

// NewClock returns a stopped clock at frame zero.
func NewClock() *Clock {
	return &Clock{}
}

// Advance moves the transport forward by one block and marks it playing.
func (c *Clock) Advance(blocksize int) {
	c.transportChanged = !c.isPlaying
	c.isPlaying = true
	c.currentFrame.Add(uint64(blocksize))
}

// Stop halts the transport without moving the frame position.
func (c *Clock) Stop() {
	c.transportChanged = c.isPlaying
	c.isPlaying = false
}

// Reset rewinds to frame zero in the stopped state.
func (c *Clock) Reset() {
	c.currentFrame.Store(0)
	c.isPlaying = false
	c.transportChanged = false
}

func (c *Clock) CurrentFrame() uint64   { return c.currentFrame.Load() }
func (c *Clock) IsPlaying() bool        { return c.isPlaying }
func (c *Clock) TransportChanged() bool { return c.transportChanged }
