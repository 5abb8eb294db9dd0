// SPDX-License-Identifier: MIT
/*
Package audiotest holds fixtures shared by the package tests: signal
generators, a log capture helper and mock implementations of the plugin,
VST effect and transport interfaces.
*/
package audiotest

import (
	"bytes"
	"math"
	"os"
	"sync"
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// FillSine writes a sine of the given frequency and amplitude into every
// channel of buf, starting at frame offset.
func FillSine(buf *audio.SampleBuffer, freq, amplitude, sampleRate float64, offset uint64) {
	for _, ch := range buf.Samples {
		for i := range ch {
			t := float64(offset+uint64(i)) / sampleRate
			ch[i] = amplitude * math.Sin(2*math.Pi*freq*t)
		}
	}
}

// FillConstant sets every sample of buf to v.
func FillConstant(buf *audio.SampleBuffer, v float64) {
	for _, ch := range buf.Samples {
		for i := range ch {
			ch[i] = v
		}
	}
}

// CaptureLog redirects the package logger into a buffer at debug level
// for the duration of the test.
func CaptureLog(t testing.TB) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.GetLevel()
	log.SetOutput(&buf)
	log.SetLevel(log.LevelDebug)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
		log.SetLevel(prev)
	})
	return &buf
}

// MockTransport records every message sent to it.
type MockTransport struct {
	mu       sync.Mutex
	Messages []any
	SendErr  error
	Closed   bool
}

func (m *MockTransport) Send(msg any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.Messages = append(m.Messages, msg)
	return nil
}

func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockTransport) Sent() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any(nil), m.Messages...)
}
