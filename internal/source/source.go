// SPDX-License-Identifier: MIT
/*
Package source reads and writes the audio the offline host processes.

Readers and writers are chosen by file extension. Every Source delivers
blocks in the session's channel layout: a file with fewer channels is
up-mixed by repeating its channels, a file with more is truncated.

	input.wav --Source.ReadBlock--> SampleBuffer --chain--> Sink.WriteBlock--> output.aiff
*/
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
)

var (
	// ErrUnsupportedFormat is returned for extensions no reader or writer
	// handles.
	ErrUnsupportedFormat = errors.New("unsupported audio file type")
	// ErrReadOnlyFormat is returned when asking for a writer of a format
	// that can only be decoded.
	ErrReadOnlyFormat = errors.New("audio file type can only be read")
	// ErrNotOpen is returned by reads and writes before Open.
	ErrNotOpen = errors.New("audio file is not open")
	// ErrInvalidFile is returned when a file's contents do not match its
	// extension.
	ErrInvalidFile = errors.New("invalid audio file")
)

// Format identifies an audio container.
type Format int

const (
	FormatInvalid Format = iota
	FormatSilence
	FormatStream
	FormatPCM
	FormatWave
	FormatAiff
	FormatMp3
	FormatOgg
	FormatNull
)

func (f Format) String() string {
	switch f {
	case FormatSilence:
		return "silence"
	case FormatStream:
		return "PCM stream"
	case FormatPCM:
		return "raw PCM"
	case FormatWave:
		return "WAVE"
	case FormatAiff:
		return "AIFF"
	case FormatMp3:
		return "MP3"
	case FormatOgg:
		return "Ogg Vorbis"
	case FormatNull:
		return "null"
	default:
		return "invalid"
	}
}

// StreamName selects stdin for reading or stdout for writing.
const StreamName = "-"

// Info describes an opened file.
type Info struct {
	Path        string
	Format      Format
	SampleRate  float64
	NumChannels int
	BitDepth    int
	// Frames is the length of the file, or -1 when unknown.
	Frames int64
}

// Source produces blocks of audio. ReadBlock fills buf and returns the
// number of frames read; frames past that are zeroed. It returns io.EOF
// once no frames remain.
type Source interface {
	Open() error
	ReadBlock(buf *audio.SampleBuffer) (int, error)
	Close() error
	Info() Info
}

// Sink consumes blocks of audio.
type Sink interface {
	Open() error
	WriteBlock(buf *audio.SampleBuffer) error
	Close() error
	Info() Info
}

// Options configures raw PCM handling and output encoding.
type Options struct {
	// SampleRate and NumChannels describe raw PCM input and every output.
	SampleRate  float64
	NumChannels int
	// BitDepth is the output sample size. Raw PCM is always 16 bit.
	BitDepth int
	Stdin    io.Reader
	Stdout   io.Writer
}

// OptionsFromSettings builds Options matching the session settings.
func OptionsFromSettings(s *audio.Settings) Options {
	return Options{
		SampleRate:  s.SampleRate(),
		NumChannels: s.NumChannels(),
		BitDepth:    s.BitDepth(),
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
	}
}

func (o Options) withDefaults() Options {
	if o.SampleRate <= 0 {
		o.SampleRate = audio.DefaultSampleRate
	}
	if o.NumChannels <= 0 {
		o.NumChannels = audio.DefaultNumChannels
	}
	if o.BitDepth == 0 {
		o.BitDepth = audio.DefaultBitDepth
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	return o
}

// Guess picks a format from a file name. The empty name is silence and
// "-" is the standard stream.
func Guess(path string) Format {
	switch path {
	case "":
		return FormatSilence
	case StreamName:
		return FormatStream
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pcm", ".raw":
		return FormatPCM
	case ".wav", ".wave":
		return FormatWave
	case ".aif", ".aiff":
		return FormatAiff
	case ".mp3":
		return FormatMp3
	case ".ogg":
		return FormatOgg
	default:
		return FormatInvalid
	}
}

// NewSource returns an unopened reader for path.
func NewSource(path string, opts Options) (Source, error) {
	opts = opts.withDefaults()
	switch Guess(path) {
	case FormatSilence:
		return NewSilence(opts), nil
	case FormatStream:
		return newPCMReader(StreamName, FormatStream, opts, func() (io.ReadCloser, error) {
			return io.NopCloser(opts.Stdin), nil
		}), nil
	case FormatPCM:
		return newPCMReader(path, FormatPCM, opts, func() (io.ReadCloser, error) {
			return os.Open(path)
		}), nil
	case FormatWave:
		return &WaveReader{path: path}, nil
	case FormatAiff:
		return &AiffReader{path: path}, nil
	case FormatMp3:
		return &Mp3Reader{path: path}, nil
	case FormatOgg:
		return &OggReader{path: path}, nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, path)
	}
}

// NewSink returns an unopened writer for path. The empty name discards
// the output.
func NewSink(path string, opts Options) (Sink, error) {
	opts = opts.withDefaults()
	switch format := Guess(path); format {
	case FormatSilence:
		return &NullSink{opts: opts}, nil
	case FormatStream:
		return newPCMWriter(StreamName, FormatStream, opts, func() (io.WriteCloser, error) {
			return nopWriteCloser{opts.Stdout}, nil
		}), nil
	case FormatPCM:
		return newPCMWriter(path, FormatPCM, opts, func() (io.WriteCloser, error) {
			return os.Create(path)
		}), nil
	case FormatWave:
		return &WaveWriter{path: path, opts: opts}, nil
	case FormatAiff:
		return &AiffWriter{path: path, opts: opts}, nil
	case FormatMp3, FormatOgg:
		return nil, fmt.Errorf("%w: %s '%s'", ErrReadOnlyFormat, format, path)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, path)
	}
}

// FileType is one row of the supported format listing.
type FileType struct {
	Extensions []string
	Format     Format
	Read       bool
	Write      bool
}

// FileTypes lists the formats NewSource and NewSink understand.
func FileTypes() []FileType {
	return []FileType{
		{[]string{".wav", ".wave"}, FormatWave, true, true},
		{[]string{".aif", ".aiff"}, FormatAiff, true, true},
		{[]string{".pcm", ".raw"}, FormatPCM, true, true},
		{[]string{StreamName}, FormatStream, true, true},
		{[]string{".mp3"}, FormatMp3, true, false},
		{[]string{".ogg"}, FormatOgg, true, false},
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
