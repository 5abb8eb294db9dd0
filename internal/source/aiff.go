// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// AiffReader decodes AIFF files.
type AiffReader struct {
	path    string
	file    *os.File
	decoder *aiff.Decoder
	intBuf  *goaudio.IntBuffer
	info    Info
}

func (r *AiffReader) Open() error {
	file, err := os.Open(r.path)
	if err != nil {
		return err
	}
	decoder := aiff.NewDecoder(file)
	if !decoder.IsValidFile() {
		file.Close()
		return fmt.Errorf("%w: '%s' is not an AIFF file", ErrInvalidFile, r.path)
	}
	decoder.ReadInfo()
	format := decoder.Format()
	if format == nil {
		file.Close()
		return fmt.Errorf("%w: '%s' has no AIFF format chunk", ErrInvalidFile, r.path)
	}

	r.file = file
	r.decoder = decoder
	r.info = Info{
		Path:        r.path,
		Format:      FormatAiff,
		SampleRate:  float64(format.SampleRate),
		NumChannels: format.NumChannels,
		BitDepth:    int(decoder.BitDepth),
		Frames:      int64(decoder.NumSampleFrames),
	}
	r.intBuf = &goaudio.IntBuffer{Format: format}
	log.Debugf("Opened AIFF file '%s': %.0fHz, %d channels, %d bit",
		r.path, r.info.SampleRate, r.info.NumChannels, r.info.BitDepth)
	return nil
}

func (r *AiffReader) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if r.decoder == nil {
		return 0, ErrNotOpen
	}
	return readIntBlock(r.decoder.PCMBuffer, r.intBuf, r.info, buf)
}

func (r *AiffReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file, r.decoder = nil, nil
	return err
}

func (r *AiffReader) Info() Info { return r.info }

// AiffWriter encodes AIFF files at the configured bit depth.
type AiffWriter struct {
	path    string
	opts    Options
	file    *os.File
	encoder *aiff.Encoder
	intBuf  goaudio.IntBuffer
}

func (w *AiffWriter) Open() error {
	file, err := os.Create(w.path)
	if err != nil {
		return err
	}
	w.file = file
	w.encoder = aiff.NewEncoder(file, int(w.opts.SampleRate), w.opts.BitDepth, w.opts.NumChannels)
	return nil
}

func (w *AiffWriter) WriteBlock(buf *audio.SampleBuffer) error {
	if w.encoder == nil {
		return ErrNotOpen
	}
	buf.ToIntBuffer(&w.intBuf, w.opts.BitDepth, int(w.opts.SampleRate))
	return w.encoder.Write(&w.intBuf)
}

func (w *AiffWriter) Close() error {
	if w.encoder == nil {
		return nil
	}
	encErr := w.encoder.Close()
	fileErr := w.file.Close()
	w.encoder, w.file = nil, nil
	return errors.Join(encErr, fileErr)
}

func (w *AiffWriter) Info() Info {
	return Info{
		Path:        w.path,
		Format:      FormatAiff,
		SampleRate:  w.opts.SampleRate,
		NumChannels: w.opts.NumChannels,
		BitDepth:    w.opts.BitDepth,
		Frames:      -1,
	}
}
