// SPDX-License-Identifier: MIT
package source

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audiotest"
)

const tolerance16 = 1.0 / 32767.0

func TestGuess(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"", FormatSilence},
		{"-", FormatStream},
		{"in.pcm", FormatPCM},
		{"in.RAW", FormatPCM},
		{"song.wav", FormatWave},
		{"song.Wave", FormatWave},
		{"dir.d/song.aif", FormatAiff},
		{"song.AIFF", FormatAiff},
		{"song.mp3", FormatMp3},
		{"song.ogg", FormatOgg},
		{"song.flac", FormatInvalid},
		{"noextension", FormatInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := Guess(tt.path); got != tt.want {
				t.Errorf("Guess(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestNewSourceAndSinkErrors(t *testing.T) {
	if _, err := NewSource("song.flac", Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewSource(flac) err = %v, want ErrUnsupportedFormat", err)
	}
	for _, path := range []string{"out.mp3", "out.ogg"} {
		if _, err := NewSink(path, Options{}); !errors.Is(err, ErrReadOnlyFormat) {
			t.Errorf("NewSink(%s) err = %v, want ErrReadOnlyFormat", path, err)
		}
	}
	if _, err := NewSink("out.xyz", Options{}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("NewSink(xyz) err = %v, want ErrUnsupportedFormat", err)
	}
}

func TestReadBeforeOpen(t *testing.T) {
	buf := audio.NewSampleBuffer(2, 16)
	for _, path := range []string{"a.wav", "a.aif", "a.mp3", "a.ogg", "a.pcm"} {
		src, err := NewSource(path, Options{})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := src.ReadBlock(buf); !errors.Is(err, ErrNotOpen) {
			t.Errorf("%s: ReadBlock before Open err = %v, want ErrNotOpen", path, err)
		}
	}
}

func TestMissingFile(t *testing.T) {
	src, err := NewSource(filepath.Join(t.TempDir(), "missing.wav"), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Open(); err == nil {
		t.Fatal("Open of a missing file succeeded")
	}
}

func writeBlocks(t *testing.T, sink Sink, blocks []*audio.SampleBuffer) {
	t.Helper()
	if err := sink.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	for _, b := range blocks {
		if err := sink.WriteBlock(b); err != nil {
			t.Fatalf("WriteBlock: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func sineBlocks(n, channels, blocksize int) []*audio.SampleBuffer {
	blocks := make([]*audio.SampleBuffer, n)
	for i := range blocks {
		blocks[i] = audio.NewSampleBuffer(channels, blocksize)
		audiotest.FillSine(blocks[i], 440, 0.5, audio.DefaultSampleRate, uint64(i*blocksize))
	}
	return blocks
}

func assertClose(t *testing.T, got, want *audio.SampleBuffer, frames int) {
	t.Helper()
	for c := range got.Samples {
		w := want.Samples[c%want.NumChannels()]
		for i := range frames {
			if d := math.Abs(got.Samples[c][i] - w[i]); d > tolerance16 {
				t.Fatalf("channel %d frame %d: got %f, want %f", c, i, got.Samples[c][i], w[i])
			}
		}
	}
}

func TestFileRoundTrip(t *testing.T) {
	for _, ext := range []string{".wav", ".aif"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out"+ext)
			opts := Options{SampleRate: 48000, NumChannels: 2, BitDepth: 16}
			sink, err := NewSink(path, opts)
			if err != nil {
				t.Fatal(err)
			}
			blocks := sineBlocks(3, 2, 64)
			writeBlocks(t, sink, blocks)

			src, err := NewSource(path, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if err := src.Open(); err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer src.Close()

			info := src.Info()
			if info.SampleRate != 48000 || info.NumChannels != 2 || info.BitDepth != 16 {
				t.Errorf("info = %+v", info)
			}
			if info.Frames != 192 {
				t.Errorf("Frames = %d, want 192", info.Frames)
			}

			buf := audio.NewSampleBuffer(2, 64)
			for i, want := range blocks {
				n, err := src.ReadBlock(buf)
				if err != nil {
					t.Fatalf("block %d: %v", i, err)
				}
				if n != 64 {
					t.Fatalf("block %d: read %d frames, want 64", i, n)
				}
				assertClose(t, buf, want, n)
			}
			if _, err := src.ReadBlock(buf); !errors.Is(err, io.EOF) {
				t.Errorf("read past end err = %v, want io.EOF", err)
			}
		})
	}
}

func TestMonoFileUpMix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	sink, err := NewSink(path, Options{NumChannels: 1})
	if err != nil {
		t.Fatal(err)
	}
	blocks := sineBlocks(1, 1, 32)
	writeBlocks(t, sink, blocks)

	src, err := NewSource(path, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	buf := audio.NewSampleBuffer(2, 32)
	n, err := src.ReadBlock(buf)
	if err != nil || n != 32 {
		t.Fatalf("ReadBlock = %d, %v", n, err)
	}
	assertClose(t, buf, blocks[0], n)
}

func TestStreamRoundTrip(t *testing.T) {
	var stream bytes.Buffer
	opts := Options{NumChannels: 2, Stdin: &stream, Stdout: &stream}
	sink, err := NewSink(StreamName, opts)
	if err != nil {
		t.Fatal(err)
	}
	blocks := sineBlocks(2, 2, 16)
	writeBlocks(t, sink, blocks)
	if stream.Len() != 2*2*16*2 {
		t.Fatalf("wrote %d bytes, want %d", stream.Len(), 2*2*16*2)
	}

	src, err := NewSource(StreamName, opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	buf := audio.NewSampleBuffer(2, 16)
	for i, want := range blocks {
		n, err := src.ReadBlock(buf)
		if err != nil || n != 16 {
			t.Fatalf("block %d: ReadBlock = %d, %v", i, n, err)
		}
		assertClose(t, buf, want, n)
	}
	if _, err := src.ReadBlock(buf); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestPCMPartialBlock(t *testing.T) {
	var raw bytes.Buffer
	samples := make([]int16, 10*2)
	for i := range samples {
		samples[i] = 16384
	}
	if err := binary.Write(&raw, binary.LittleEndian, samples); err != nil {
		t.Fatal(err)
	}

	src, err := NewSource(StreamName, Options{NumChannels: 2, Stdin: &raw})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	buf := audio.NewSampleBuffer(2, 16)
	audiotest.FillConstant(buf, 1)
	n, err := src.ReadBlock(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Fatalf("read %d frames, want 10", n)
	}
	for c := range buf.Samples {
		if math.Abs(buf.Samples[c][9]-16384.0/32767.0) > tolerance16 {
			t.Errorf("channel %d frame 9 = %f", c, buf.Samples[c][9])
		}
		for i := 10; i < 16; i++ {
			if buf.Samples[c][i] != 0 {
				t.Fatalf("channel %d frame %d not zeroed", c, i)
			}
		}
	}
}

func TestSilence(t *testing.T) {
	src, err := NewSource("", Options{})
	if err != nil {
		t.Fatal(err)
	}
	if src.Info().Format != FormatSilence {
		t.Fatalf("format = %v", src.Info().Format)
	}
	if err := src.Open(); err != nil {
		t.Fatal(err)
	}
	buf := audio.NewSampleBuffer(2, 32)
	for range 100 {
		audiotest.FillConstant(buf, 0.5)
		n, err := src.ReadBlock(buf)
		if err != nil || n != 32 {
			t.Fatalf("ReadBlock = %d, %v", n, err)
		}
		if buf.Samples[1][31] != 0 {
			t.Fatal("silence is not silent")
		}
	}
}

func TestNullSinkCountsFrames(t *testing.T) {
	sink, err := NewSink("", Options{})
	if err != nil {
		t.Fatal(err)
	}
	writeBlocks(t, sink, sineBlocks(4, 2, 128))
	if got := sink.Info().Frames; got != 512 {
		t.Errorf("Frames = %d, want 512", got)
	}
}

func TestFileTypes(t *testing.T) {
	for _, ft := range FileTypes() {
		for _, ext := range ft.Extensions {
			name := ext
			if ext != StreamName {
				name = "file" + ext
			}
			if got := Guess(name); got != ft.Format {
				t.Errorf("Guess(%s) = %v, want %v", name, got, ft.Format)
			}
			_, err := NewSink(name, Options{})
			if ft.Write && err != nil {
				t.Errorf("NewSink(%s): %v", name, err)
			}
			if !ft.Write && err == nil {
				t.Errorf("NewSink(%s) succeeded for a read-only format", name)
			}
		}
	}
}

func BenchmarkPCMWrite(b *testing.B) {
	sink, _ := NewSink(StreamName, Options{Stdout: io.Discard})
	if err := sink.Open(); err != nil {
		b.Fatal(err)
	}
	buf := sineBlocks(1, 2, 512)[0]
	for b.Loop() {
		if err := sink.WriteBlock(buf); err != nil {
			b.Fatal(err)
		}
	}
}

func TestInvalidFileContents(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"bad.wav", "bad.aif", "bad.mp3", "bad.ogg"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte("definitely not audio"), 0o644); err != nil {
				t.Fatal(err)
			}
			src, err := NewSource(path, Options{})
			if err != nil {
				t.Fatal(err)
			}
			if err := src.Open(); !errors.Is(err, ErrInvalidFile) {
				t.Errorf("Open err = %v, want ErrInvalidFile", err)
			}
		})
	}
}
