// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// WaveReader decodes integer PCM WAVE files.
type WaveReader struct {
	path    string
	file    *os.File
	decoder *wav.Decoder
	intBuf  *goaudio.IntBuffer
	info    Info
}

func (r *WaveReader) Open() error {
	file, err := os.Open(r.path)
	if err != nil {
		return err
	}
	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return fmt.Errorf("%w: '%s' is not a WAVE file", ErrInvalidFile, r.path)
	}
	decoder.ReadInfo()
	if err := decoder.FwdToPCM(); err != nil {
		file.Close()
		return fmt.Errorf("%w: no PCM data in '%s': %w", ErrInvalidFile, r.path, err)
	}

	r.file = file
	r.decoder = decoder
	r.info = Info{
		Path:        r.path,
		Format:      FormatWave,
		SampleRate:  float64(decoder.SampleRate),
		NumChannels: int(decoder.NumChans),
		BitDepth:    int(decoder.BitDepth),
		Frames:      -1,
	}
	if frameSize := int64(decoder.NumChans) * int64(decoder.BitDepth/8); frameSize > 0 {
		r.info.Frames = decoder.PCMLen() / frameSize
	}
	r.intBuf = &goaudio.IntBuffer{Format: decoder.Format()}
	log.Debugf("Opened WAVE file '%s': %.0fHz, %d channels, %d bit",
		r.path, r.info.SampleRate, r.info.NumChannels, r.info.BitDepth)
	return nil
}

func (r *WaveReader) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if r.decoder == nil {
		return 0, ErrNotOpen
	}
	return readIntBlock(r.decoder.PCMBuffer, r.intBuf, r.info, buf)
}

func (r *WaveReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file, r.decoder = nil, nil
	return err
}

func (r *WaveReader) Info() Info { return r.info }

// readIntBlock pulls one block of interleaved integers through read and
// de-interleaves it into buf.
func readIntBlock(read func(*goaudio.IntBuffer) (int, error), intBuf *goaudio.IntBuffer, info Info, buf *audio.SampleBuffer) (int, error) {
	want := buf.Blocksize() * info.NumChannels
	if cap(intBuf.Data) < want {
		intBuf.Data = make([]int, want)
	}
	intBuf.Data = intBuf.Data[:want]

	n, err := read(intBuf)
	if err != nil && !errors.Is(err, io.EOF) {
		buf.Clear()
		return 0, err
	}
	intBuf.Data = intBuf.Data[:n]
	frames := buf.FromIntBuffer(intBuf, info.BitDepth)
	if frames == 0 {
		return 0, io.EOF
	}
	return frames, nil
}

// WaveWriter encodes integer PCM WAVE files at the configured bit depth.
type WaveWriter struct {
	path    string
	opts    Options
	file    *os.File
	encoder *wav.Encoder
	intBuf  goaudio.IntBuffer
}

func (w *WaveWriter) Open() error {
	file, err := os.Create(w.path)
	if err != nil {
		return err
	}
	w.file = file
	w.encoder = wav.NewEncoder(file, int(w.opts.SampleRate), w.opts.BitDepth, w.opts.NumChannels, 1)
	return nil
}

func (w *WaveWriter) WriteBlock(buf *audio.SampleBuffer) error {
	if w.encoder == nil {
		return ErrNotOpen
	}
	buf.ToIntBuffer(&w.intBuf, w.opts.BitDepth, int(w.opts.SampleRate))
	return w.encoder.Write(&w.intBuf)
}

func (w *WaveWriter) Close() error {
	if w.encoder == nil {
		return nil
	}
	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	w.encoder, w.file = nil, nil
	return errors.Join(encErr, fileErr)
}

func (w *WaveWriter) Info() Info {
	return Info{
		Path:        w.path,
		Format:      FormatWave,
		SampleRate:  w.opts.SampleRate,
		NumChannels: w.opts.NumChannels,
		BitDepth:    w.opts.BitDepth,
		Frames:      -1,
	}
}
