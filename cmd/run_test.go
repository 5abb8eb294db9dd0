// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audiotest"
	"github.com/teragonaudio/MrsWatson-sub000/internal/config"
	"github.com/teragonaudio/MrsWatson-sub000/internal/exitcode"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
)

func streamConfig(chain string) *config.Config {
	cfg := config.NewConfig()
	cfg.Plugins.Chain = chain
	cfg.Audio.Blocksize = 64
	cfg.IO.Input = source.StreamName
	cfg.IO.Output = source.StreamName
	return cfg
}

func stereoPCM(frames int, value int16) *bytes.Reader {
	var raw bytes.Buffer
	for range frames * 2 {
		binary.Write(&raw, binary.LittleEndian, value)
	}
	return bytes.NewReader(raw.Bytes())
}

func TestProcessStreamsThroughChain(t *testing.T) {
	audiotest.CaptureLog(t)
	cfg := streamConfig("mrs_gain")
	cfg.Plugins.Parameters = []string{"0,0.5"}
	cfg.Analysis.Enabled = true
	cfg.Analysis.FFTSize = 64

	var out bytes.Buffer
	res, err := Process(context.Background(), cfg, IO{Stdin: stereoPCM(128, 10000), Stdout: &out})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Blocks != 2 || res.Frames != 128 {
		t.Errorf("processed %d blocks / %d frames, want 2 / 128", res.Blocks, res.Frames)
	}
	if res.Analysis == nil {
		t.Error("analysis enabled but no report")
	}
	if out.Len() != 128*2*2 {
		t.Fatalf("wrote %d bytes, want %d", out.Len(), 128*2*2)
	}
	first := int16(binary.LittleEndian.Uint16(out.Bytes()))
	if first < 4999 || first > 5001 {
		t.Errorf("first sample = %d, want ~5000", first)
	}
}

func TestProcessErrors(t *testing.T) {
	audiotest.CaptureLog(t)
	tests := []struct {
		name     string
		mutate   func(*config.Config)
		wantErr  error
		wantCode exitcode.Code
	}{
		{
			name:     "unknown plugin",
			mutate:   func(c *config.Config) { c.Plugins.Chain = "nosuchplugin" },
			wantErr:  plugin.ErrPluginNotFound,
			wantCode: exitcode.InvalidPluginChain,
		},
		{
			name:     "rejected parameter",
			mutate:   func(c *config.Config) { c.Plugins.Parameters = []string{"3,0.5"} },
			wantErr:  plugin.ErrParameterRejected,
			wantCode: exitcode.InvalidArgument,
		},
		{
			name:     "unsupported input",
			mutate:   func(c *config.Config) { c.IO.Input = "input.xyz" },
			wantErr:  source.ErrUnsupportedFormat,
			wantCode: exitcode.UnsupportedFeature,
		},
		{
			name:     "read-only output",
			mutate:   func(c *config.Config) { c.IO.Output = "output.mp3" },
			wantErr:  source.ErrReadOnlyFormat,
			wantCode: exitcode.UnsupportedFeature,
		},
		{
			name:     "missing MIDI file",
			mutate:   func(c *config.Config) { c.IO.MidiFile = "/nonexistent/song.mid" },
			wantCode: exitcode.IOError,
		},
		{
			name:     "bad analysis window",
			mutate:   func(c *config.Config) { c.Analysis.Enabled = true; c.Analysis.Window = "Square" },
			wantErr:  exitcode.ErrInvalidArgument,
			wantCode: exitcode.InvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := streamConfig("mrs_gain")
			tt.mutate(cfg)
			_, err := Process(context.Background(), cfg, IO{Stdin: stereoPCM(64, 0), Stdout: &bytes.Buffer{}})
			if err == nil {
				t.Fatal("Process succeeded, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if code := exitcode.FromError(err); code != tt.wantCode {
				t.Errorf("exit code = %s, want %s (err %v)", code, tt.wantCode, err)
			}
		})
	}
}

func TestProcessInterrupted(t *testing.T) {
	audiotest.CaptureLog(t)
	ctx, cancel := context.WithCancelCause(context.Background())
	cancel(context.Canceled)
	_, err := Process(ctx, streamConfig("mrs_passthru"), IO{Stdin: stereoPCM(256, 0), Stdout: &bytes.Buffer{}})
	if code := exitcode.FromError(err); code != exitcode.Signal {
		t.Errorf("exit code = %s, want %s (err %v)", code, exitcode.Signal, err)
	}
}

func TestShowInfo(t *testing.T) {
	audiotest.CaptureLog(t)
	var out bytes.Buffer
	if err := ShowInfo(&out, streamConfig("mrs_passthru;mrs_gain")); err != nil {
		t.Fatalf("ShowInfo: %v", err)
	}
	for _, want := range []string{"mrs_passthru", "mrs_gain", "'Gain'"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("info missing %q:\n%s", want, out.String())
		}
	}
}

func TestListings(t *testing.T) {
	audiotest.CaptureLog(t)
	var out bytes.Buffer
	ListPlugins(&out, t.TempDir())
	for _, name := range plugin.InternalNames() {
		if !strings.Contains(out.String(), name) {
			t.Errorf("plugin listing missing %q", name)
		}
	}

	out.Reset()
	ListFileTypes(&out)
	if !strings.Contains(out.String(), "WAVE") {
		t.Errorf("file type listing missing WAVE:\n%s", out.String())
	}

	out.Reset()
	PrintVersion(&out)
	if !strings.Contains(out.String(), "version") {
		t.Errorf("version output = %q", out.String())
	}
}
