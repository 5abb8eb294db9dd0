// SPDX-License-Identifier: MIT
package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, level LogLevel) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(prev)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in    string
		want  LogLevel
		valid bool
	}{
		{"debug", LevelDebug, true},
		{"INFO", LevelInfo, true},
		{"warning", LevelWarn, true},
		{"Error", LevelError, true},
		{"critical", LevelCritical, true},
		{" fatal ", LevelFatal, true},
		{"loud", LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLevel(tt.in)
			if got != tt.want || ok != tt.valid {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.valid)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarn)

	Debugf("hidden %d", 1)
	Infof("hidden %d", 2)
	Warnf("shown %d", 3)
	Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below WARN were written: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Errorf("expected WARN and ERROR lines, got %q", out)
	}
}

func TestMessageClasses(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	InternalErrorf("opcode %d reached dispatch", 99)
	Unsupportedf("SMPTE time")
	Deprecatedf("opcode %s", "audioMasterWantMidi")

	out := buf.String()
	for _, want := range []string{
		"[CRITICAL] internal error: opcode 99 reached dispatch",
		"[WARN] unsupported feature: SMPTE time",
		"[WARN] deprecated: opcode audioMasterWantMidi",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
}

func TestLinePrefix(t *testing.T) {
	buf := captureOutput(t, LevelDebug)
	frame := uint64(0)
	SetFrameSource(func() uint64 { return frame })
	t.Cleanup(func() { SetFrameSource(nil) })

	frame = 1024
	Infof("processing")
	frame = 2048
	Debugf("block")
	Errorf("failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), buf.String())
	}
	for i, want := range []string{"- 00001024 ", "D 00002048 ", "E 00002048 "} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
	if !strings.HasSuffix(lines[0], "[INFO] processing") {
		t.Errorf("line 0 = %q", lines[0])
	}
}
