// SPDX-License-Identifier: MIT
package audio

import (
	"math"

	goaudio "github.com/go-audio/audio"
)

// pcm16Scale matches the conversion factor used for 16-bit streams in both
// directions, so a round trip through int16 is lossless for in-range values.
const pcm16Scale = 32767.0

func fullScale(bitDepth int) float64 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	return float64(int64(1)<<(bitDepth-1) - 1)
}

func clampUnit(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}

// FromInterleavedInt16 de-interleaves pcm into b and returns the number of
// whole frames read. Frames past the end of pcm are zeroed.
func (b *SampleBuffer) FromInterleavedInt16(pcm []int16) int {
	ch := b.NumChannels()
	if ch == 0 {
		return 0
	}
	frames := min(len(pcm)/ch, b.blocksize)
	for f := range frames {
		for c := range ch {
			b.Samples[c][f] = float64(pcm[f*ch+c]) / pcm16Scale
		}
	}
	for c := range ch {
		clear(b.Samples[c][frames:])
	}
	return frames
}

// ToInterleavedInt16 interleaves b into dst, which must hold at least
// NumChannels*Blocksize values. Out of range samples are clipped.
func (b *SampleBuffer) ToInterleavedInt16(dst []int16) int {
	ch := b.NumChannels()
	n := 0
	for f := 0; f < b.blocksize && n+ch <= len(dst); f++ {
		for c := range ch {
			dst[n] = int16(math.Round(clampUnit(b.Samples[c][f]) * pcm16Scale))
			n++
		}
	}
	return n
}

// FromIntBuffer de-interleaves a go-audio buffer of the given bit depth into
// b. Source channels beyond b's count are dropped; missing channels repeat
// the source channels in order. It returns the number of frames read.
func (b *SampleBuffer) FromIntBuffer(buf *goaudio.IntBuffer, bitDepth int) int {
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 || b.NumChannels() == 0 {
		b.Clear()
		return 0
	}
	srcCh := buf.Format.NumChannels
	scale := fullScale(bitDepth)
	frames := min(len(buf.Data)/srcCh, b.blocksize)
	for c := range b.Samples {
		sc := c % srcCh
		for f := range frames {
			b.Samples[c][f] = float64(buf.Data[f*srcCh+sc]) / scale
		}
		clear(b.Samples[c][frames:])
	}
	return frames
}

// ToIntBuffer interleaves b into buf using the given bit depth, reusing
// buf.Data when it is large enough.
func (b *SampleBuffer) ToIntBuffer(buf *goaudio.IntBuffer, bitDepth int, sampleRate int) {
	ch := b.NumChannels()
	size := ch * b.blocksize
	if cap(buf.Data) < size {
		buf.Data = make([]int, size)
	}
	buf.Data = buf.Data[:size]
	if buf.Format == nil {
		buf.Format = &goaudio.Format{}
	}
	buf.Format.NumChannels = ch
	buf.Format.SampleRate = sampleRate
	buf.SourceBitDepth = bitDepth

	scale := fullScale(bitDepth)
	for f := range b.blocksize {
		for c := range ch {
			buf.Data[f*ch+c] = int(math.Round(clampUnit(b.Samples[c][f]) * scale))
		}
	}
}

// Float32 copies channel data into dst as float32, allocating rows as needed.
// Plugin binaries exchange single precision audio.
func (b *SampleBuffer) Float32(dst [][]float32) [][]float32 {
	if len(dst) != b.NumChannels() {
		dst = make([][]float32, b.NumChannels())
	}
	for c, ch := range b.Samples {
		if len(dst[c]) != b.blocksize {
			dst[c] = make([]float32, b.blocksize)
		}
		for i, v := range ch {
			dst[c][i] = float32(v)
		}
	}
	return dst
}

// SetFloat32 copies single precision channel data back into b.
func (b *SampleBuffer) SetFloat32(src [][]float32) {
	for c := range min(len(src), b.NumChannels()) {
		n := min(len(src[c]), b.blocksize)
		for i := range n {
			b.Samples[c][i] = float64(src[c][i])
		}
	}
}
