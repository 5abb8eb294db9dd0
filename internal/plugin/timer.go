// SPDX-License-Identifier: MIT
package plugin

import "time"

// TaskTimer accumulates wall-clock time over repeated Start/Stop pairs.
type TaskTimer struct {
	started time.Time
	running bool
	total   time.Duration
	count   int
}

func (t *TaskTimer) Start() {
	t.started = time.Now()
	t.running = true
}

// Stop returns the time since Start in milliseconds and adds it to the
// total. Stop without a running Start returns 0.
func (t *TaskTimer) Stop() float64 {
	if !t.running {
		return 0
	}
	elapsed := time.Since(t.started)
	t.running = false
	t.total += elapsed
	t.count++
	return float64(elapsed) / float64(time.Millisecond)
}

func (t *TaskTimer) Total() time.Duration { return t.total }
func (t *TaskTimer) Count() int           { return t.count }
