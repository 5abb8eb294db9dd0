// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/floats"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/pkg/bitint"
)

// WindowFunc selects the FFT window.
type WindowFunc int

const (
	BartlettHann WindowFunc = iota
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

var windowNames = [...]string{"BartlettHann", "Blackman", "BlackmanNuttall", "Hann", "Hamming", "Lanczos", "Nuttall"}

func (w WindowFunc) String() string {
	if w < 0 || int(w) >= len(windowNames) {
		return fmt.Sprintf("WindowFunc(%d)", int(w))
	}
	return windowNames[w]
}

// Pre-allocated buffers for FFT calculations.
type fftWorkspace struct {
	frame     []float64    // channel 0 samples collected so far
	fill      int          // valid samples in frame
	input     []float64    // windowed copy of frame
	fftOutput []complex128 // N/2+1 coefficients
	magnitude []float64    // sum of magnitudes over all frames
	frames    int          // frames summed into magnitude
	window    []float64
}

// FFTProcessor averages the magnitude spectrum of channel 0 over
// consecutive, non-overlapping frames of fftSize samples.
type FFTProcessor struct {
	fftCalculator *fourier.FFT
	fftSize       int
	sampleRate    float64
	mu            sync.RWMutex
	workspace     fftWorkspace
}

var (
	_ BlockProcessor   = (*FFTProcessor)(nil)
	_ SpectrumProvider = (*FFTProcessor)(nil)
)

// NewFFTProcessor returns a processor for fftSize-point transforms.
func NewFFTProcessor(fftSize int, sampleRate float64, windowType WindowFunc) (*FFTProcessor, error) {
	if !bitint.IsPowerOfTwo(fftSize) {
		return nil, fmt.Errorf("fft size must be a power of 2, got %d", fftSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	windowCoeffs := make([]float64, fftSize)
	applyWindow(windowCoeffs, windowType)
	magnitudeSize := fftSize/2 + 1

	log.Debugf("Analysis: Initializing FFTProcessor (Size: %d, SampleRate: %.1f Hz, Window: %v)", fftSize, sampleRate, windowType)
	return &FFTProcessor{
		fftCalculator: fourier.NewFFT(fftSize),
		fftSize:       fftSize,
		sampleRate:    sampleRate,
		workspace: fftWorkspace{
			frame:     make([]float64, fftSize),
			input:     make([]float64, fftSize),
			fftOutput: make([]complex128, magnitudeSize),
			magnitude: make([]float64, magnitudeSize),
			window:    windowCoeffs,
		},
	}, nil
}

// Process collects channel 0 of buf and transforms every complete frame.
func (p *FFTProcessor) Process(buf *audio.SampleBuffer) {
	if buf.NumChannels() == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ws := &p.workspace
	samples := buf.Samples[0]
	for len(samples) > 0 {
		n := copy(ws.frame[ws.fill:], samples)
		ws.fill += n
		samples = samples[n:]
		if ws.fill == p.fftSize {
			p.transform()
		}
	}
}

// Flush transforms a partial frame, zero-padded, when no complete frame has
// been seen. Short runs still get a spectrum.
func (p *FFTProcessor) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.workspace.frames == 0 && p.workspace.fill > 0 {
		clear(p.workspace.frame[p.workspace.fill:])
		p.transform()
	}
}

func (p *FFTProcessor) transform() {
	ws := &p.workspace
	floats.MulTo(ws.input, ws.frame, ws.window)
	p.fftCalculator.Coefficients(ws.fftOutput, ws.input)
	for i, c := range ws.fftOutput {
		ws.magnitude[i] += cmplx.Abs(c)
	}
	ws.frames++
	ws.fill = 0
}

// Magnitudes returns a copy of the averaged spectrum, or nil before the
// first frame.
func (p *FFTProcessor) Magnitudes() []float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.workspace.frames == 0 {
		return nil
	}
	mags := make([]float64, len(p.workspace.magnitude))
	floats.ScaleTo(mags, 1/float64(p.workspace.frames), p.workspace.magnitude)
	return mags
}

// MagnitudesInto is Magnitudes without the allocation. dst must hold
// FFTSize/2+1 values.
func (p *FFTProcessor) MagnitudesInto(dst []float64) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(dst) != len(p.workspace.magnitude) {
		return fmt.Errorf("destination slice length %d does not match required length %d", len(dst), len(p.workspace.magnitude))
	}
	if p.workspace.frames == 0 {
		clear(dst)
		return nil
	}
	floats.ScaleTo(dst, 1/float64(p.workspace.frames), p.workspace.magnitude)
	return nil
}

// FrequencyForBin returns the centre frequency of bin in Hz.
func (p *FFTProcessor) FrequencyForBin(bin int) float64 {
	if bin < 0 || bin >= len(p.workspace.fftOutput) {
		return 0
	}
	return p.fftCalculator.Freq(bin) * p.sampleRate
}

// DominantFrequency is the centre of the loudest bin above DC, or 0 when
// nothing has been analyzed.
func (p *FFTProcessor) DominantFrequency() float64 {
	mags := p.Magnitudes()
	if len(mags) < 2 || floats.Max(mags[1:]) == 0 {
		return 0
	}
	return p.FrequencyForBin(floats.MaxIdx(mags[1:]) + 1)
}

func (p *FFTProcessor) FFTSize() int        { return p.fftSize }
func (p *FFTProcessor) SampleRate() float64 { return p.sampleRate }

// Frames is the number of transforms averaged so far.
func (p *FFTProcessor) Frames() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.workspace.frames
}

// ParseWindowFunc converts a case-insensitive name to a WindowFunc. Unknown
// names return Hann and an error.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning", "":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Hann, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// applyWindow fills coeffs with the window's coefficients.
func applyWindow(coeffs []float64, windowType WindowFunc) {
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch windowType {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		log.Warnf("Analysis: Unknown window function type %d, defaulting to Hann", windowType)
		window.Hann(coeffs)
	}
}
