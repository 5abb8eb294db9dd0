// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"errors"
	"io"

	goaudio "github.com/go-audio/audio"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

const pcmBitDepth = 16

// PCMReader reads headerless 16-bit little-endian interleaved samples. The
// layout comes from Options since the data carries none.
type PCMReader struct {
	name   string
	format Format
	opts   Options
	open   func() (io.ReadCloser, error)
	rc     io.ReadCloser
	raw    []byte
	intBuf *goaudio.IntBuffer
}

func newPCMReader(name string, format Format, opts Options, open func() (io.ReadCloser, error)) Source {
	return &PCMReader{name: name, format: format, opts: opts, open: open}
}

func (r *PCMReader) Open() error {
	rc, err := r.open()
	if err != nil {
		return err
	}
	r.rc = rc
	r.intBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: r.opts.NumChannels, SampleRate: int(r.opts.SampleRate)},
	}
	log.Debugf("Opened %s input '%s': %.0fHz, %d channels", r.format, r.name, r.opts.SampleRate, r.opts.NumChannels)
	return nil
}

func (r *PCMReader) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if r.rc == nil {
		return 0, ErrNotOpen
	}
	return readIntBlock(r.readPCM, r.intBuf, r.Info(), buf)
}

func (r *PCMReader) readPCM(intBuf *goaudio.IntBuffer) (int, error) {
	size := len(intBuf.Data) * 2
	if cap(r.raw) < size {
		r.raw = make([]byte, size)
	}
	r.raw = r.raw[:size]

	n, err := io.ReadFull(r.rc, r.raw)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	samples := n / 2
	for i := range samples {
		intBuf.Data[i] = int(int16(binary.LittleEndian.Uint16(r.raw[2*i:])))
	}
	return samples, err
}

func (r *PCMReader) Close() error {
	if r.rc == nil {
		return nil
	}
	err := r.rc.Close()
	r.rc = nil
	return err
}

func (r *PCMReader) Info() Info {
	return Info{
		Path:        r.name,
		Format:      r.format,
		SampleRate:  r.opts.SampleRate,
		NumChannels: r.opts.NumChannels,
		BitDepth:    pcmBitDepth,
		Frames:      -1,
	}
}

// PCMWriter writes headerless 16-bit little-endian interleaved samples.
type PCMWriter struct {
	name    string
	format  Format
	opts    Options
	open    func() (io.WriteCloser, error)
	wc      io.WriteCloser
	samples []int16
}

func newPCMWriter(name string, format Format, opts Options, open func() (io.WriteCloser, error)) Sink {
	return &PCMWriter{name: name, format: format, opts: opts, open: open}
}

func (w *PCMWriter) Open() error {
	wc, err := w.open()
	if err != nil {
		return err
	}
	w.wc = wc
	return nil
}

func (w *PCMWriter) WriteBlock(buf *audio.SampleBuffer) error {
	if w.wc == nil {
		return ErrNotOpen
	}
	want := buf.NumChannels() * buf.Blocksize()
	if cap(w.samples) < want {
		w.samples = make([]int16, want)
	}
	n := buf.ToInterleavedInt16(w.samples[:want])
	return binary.Write(w.wc, binary.LittleEndian, w.samples[:n])
}

func (w *PCMWriter) Close() error {
	if w.wc == nil {
		return nil
	}
	err := w.wc.Close()
	w.wc = nil
	return err
}

func (w *PCMWriter) Info() Info {
	return Info{
		Path:        w.name,
		Format:      w.format,
		SampleRate:  w.opts.SampleRate,
		NumChannels: w.opts.NumChannels,
		BitDepth:    pcmBitDepth,
		Frames:      -1,
	}
}
