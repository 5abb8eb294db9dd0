// SPDX-License-Identifier: MIT
package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// go-mp3 always decodes to 16-bit little-endian stereo.
const (
	mp3Channels = 2
	mp3BitDepth = 16
)

// Mp3Reader decodes MPEG layer 3 files.
type Mp3Reader struct {
	path    string
	file    *os.File
	decoder *gomp3.Decoder
	raw     []byte
	intBuf  *goaudio.IntBuffer
	info    Info
}

func (r *Mp3Reader) Open() error {
	file, err := os.Open(r.path)
	if err != nil {
		return err
	}
	decoder, err := gomp3.NewDecoder(file)
	if err != nil {
		file.Close()
		return fmt.Errorf("%w: could not decode MP3 file '%s': %w", ErrInvalidFile, r.path, err)
	}

	r.file = file
	r.decoder = decoder
	r.info = Info{
		Path:        r.path,
		Format:      FormatMp3,
		SampleRate:  float64(decoder.SampleRate()),
		NumChannels: mp3Channels,
		BitDepth:    mp3BitDepth,
		Frames:      decoder.Length() / (mp3Channels * mp3BitDepth / 8),
	}
	r.intBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{NumChannels: mp3Channels, SampleRate: decoder.SampleRate()},
	}
	log.Debugf("Opened MP3 file '%s': %.0fHz", r.path, r.info.SampleRate)
	return nil
}

func (r *Mp3Reader) ReadBlock(buf *audio.SampleBuffer) (int, error) {
	if r.decoder == nil {
		return 0, ErrNotOpen
	}
	return readIntBlock(r.readPCM, r.intBuf, r.info, buf)
}

// readPCM fills intBuf.Data with decoded samples and returns how many were
// read.
func (r *Mp3Reader) readPCM(intBuf *goaudio.IntBuffer) (int, error) {
	size := len(intBuf.Data) * 2
	if cap(r.raw) < size {
		r.raw = make([]byte, size)
	}
	r.raw = r.raw[:size]

	n, err := io.ReadFull(r.decoder, r.raw)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	samples := n / 2
	for i := range samples {
		intBuf.Data[i] = int(int16(binary.LittleEndian.Uint16(r.raw[2*i:])))
	}
	return samples, err
}

func (r *Mp3Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file, r.decoder = nil, nil
	return err
}

func (r *Mp3Reader) Info() Info { return r.info }
