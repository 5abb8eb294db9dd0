// SPDX-License-Identifier: MIT
package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jfreymuth/oggvorbis"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// OggReader decodes Ogg Vorbis files.
type OggReader struct {
	path    string
	file    *os.File
	decoder *oggvorbis.Reader
	values  []float32
	info    Info
}

func (r *OggReader) Open() error {
	file, err := os.Open(r.path)
	if err != nil {
		return err
	}
	decoder, err := oggvorbis.NewReader(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("%w: could not decode Ogg Vorbis file '%s': %w", ErrInvalidFile, r.path, err)
	}

	r.file = file
	r.decoder = decoder
	r.info = Info{
		Path:        r.path,
		Format:      FormatOgg,
		SampleRate:  float64(decoder.SampleRate()),
		NumChannels: decoder.Channels(),
		BitDepth:    32,
		Frames:      decoder.Length(),
	}
	log.Debugf("Opened Ogg Vorbis file '%s': %.0fHz, %d channels",
		r.path, r.info.SampleRate, r.info.NumChannels)
	return nil
}

// ReadBlock decodes whole frames of interleaved float values straight into
// buf, mapping channels the same way the integer readers do.
func (r *OggReader) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if r.decoder == nil {
		return 0, ErrNotOpen
	}
	srcCh := r.info.NumChannels
	want := buf.Blocksize() * srcCh
	if cap(r.values) < want {
		r.values = make([]float32, want)
	}
	r.values = r.values[:want]

	n := 0
	for n < want {
		read, err := r.decoder.Read(r.values[n:])
		n += read
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			buf.Clear()
			return 0, err
		}
		if read == 0 {
			break
		}
	}

	frames := n / srcCh
	for c, ch := range buf.Samples {
		sc := c % srcCh
		for f := range frames {
			ch[f] = float64(r.values[f*srcCh+sc])
		}
		clear(ch[frames:])
	}
	if frames == 0 {
		return 0, io.EOF
	}
	return frames, nil
}

func (r *OggReader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file, r.decoder = nil, nil
	return err
}

func (r *OggReader) Info() Info { return r.info }
