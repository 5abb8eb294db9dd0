// SPDX-License-Identifier: MIT
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// FrequencyBand names a frequency range. A HighHz of zero extends the band
// to Nyquist.
type FrequencyBand struct {
	Name   string
	LowHz  float64
	HighHz float64
}

// DefaultBands split the audible range the way mixing engineers usually
// talk about it.
var DefaultBands = []FrequencyBand{
	{Name: "sub", LowHz: 20, HighHz: 60},
	{Name: "bass", LowHz: 60, HighHz: 250},
	{Name: "lowMid", LowHz: 250, HighHz: 500},
	{Name: "mid", LowHz: 500, HighHz: 2000},
	{Name: "highMid", LowHz: 2000, HighHz: 4000},
	{Name: "treble", LowHz: 4000},
}

// BandEnergy is the RMS magnitude of the bins in a band, normalised so a
// full scale sine centred in a bin measures close to 0.5 with a Hann window.
type BandEnergy struct {
	FrequencyBand
	Level float64
}

// BandEnergies measures each band of the provider's current spectrum. It
// returns nil when there is no spectrum yet.
func BandEnergies(p SpectrumProvider, bands []FrequencyBand) []BandEnergy {
	mags := p.Magnitudes()
	if mags == nil {
		return nil
	}
	nyquist := p.SampleRate() / 2
	norm := float64(p.FFTSize()) / 2

	out := make([]BandEnergy, 0, len(bands))
	var squares []float64
	for _, band := range bands {
		high := band.HighHz
		if high <= 0 || high > nyquist {
			high = nyquist
		}
		squares = squares[:0]
		for i, m := range mags {
			if f := p.FrequencyForBin(i); f >= band.LowHz && f < high {
				squares = append(squares, m*m)
			}
		}
		level := 0.0
		if len(squares) > 0 {
			level = math.Sqrt(stat.Mean(squares, nil)) / norm
		}
		out = append(out, BandEnergy{FrequencyBand: band, Level: level})
	}
	return out
}
