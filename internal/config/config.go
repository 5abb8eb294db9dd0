// SPDX-License-Identifier: MIT
/*
Package config holds the settings of one offline processing run.

Values come from three layers, each overriding the last: built-in defaults,
a YAML file, and ENV_* environment variables. The command line is applied
on top by cmd, which only touches flags the user actually set.
*/
package config

import (
	"fmt"
	"time"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
)

const (
	DefaultLogLevel         = "info"
	DefaultTimeSignature    = "4/4"
	DefaultMaxPlugins       = 8
	DefaultFFTSize          = 2048
	DefaultWindow           = "Hann"
	DefaultClipThreshold    = 1.0
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultUDPSendInterval  = 33 * time.Millisecond
)

// Config is the complete run configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Audio     AudioConfig     `yaml:"audio"`
	Plugins   PluginConfig    `yaml:"plugins"`
	IO        IOConfig        `yaml:"io"`
	Transport TransportConfig `yaml:"transport"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
}

// AudioConfig is the format and musical context handed to every plugin.
type AudioConfig struct {
	SampleRate    float64 `yaml:"sample_rate"`
	Channels      int     `yaml:"channels"`
	Blocksize     int     `yaml:"blocksize"`
	Tempo         float64 `yaml:"tempo"`
	TimeSignature string  `yaml:"time_signature"` // e.g. "3/4"
}

// PluginConfig describes the chain.
type PluginConfig struct {
	Chain      string   `yaml:"chain"`      // "name[,preset];name[,preset]..."
	Root       string   `yaml:"root"`       // searched before the default locations
	Parameters []string `yaml:"parameters"` // "index,value" for the first plugin
	MaxPlugins int      `yaml:"max_plugins"`
}

// IOConfig names the files of a run. Empty input means silence and empty
// output discards the result.
type IOConfig struct {
	Input         string  `yaml:"input"`
	Output        string  `yaml:"output"`
	MidiFile      string  `yaml:"midi_file"`
	PCMSampleRate float64 `yaml:"pcm_sample_rate"` // 0 follows audio.sample_rate
	PCMChannels   int     `yaml:"pcm_channels"`    // 0 follows audio.channels
	BitDepth      int     `yaml:"bit_depth"`
	TailTimeMs    int     `yaml:"tail_time_ms"`
}

// TransportConfig enables progress reporting.
type TransportConfig struct {
	WebSocketAddr    string        `yaml:"websocket_addr"`
	UDPEnabled       bool          `yaml:"udp_enabled"`
	UDPTargetAddress string        `yaml:"udp_target_address"`
	UDPSendInterval  time.Duration `yaml:"udp_send_interval"`
}

// AnalysisConfig controls the output analyzer.
type AnalysisConfig struct {
	Enabled       bool    `yaml:"enabled"`
	FFTSize       int     `yaml:"fft_size"`
	Window        string  `yaml:"window"` // Hann, Hamming, Blackman...
	ClipThreshold float64 `yaml:"clip_threshold"`
}

// NewConfig returns the built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			SampleRate:    audio.DefaultSampleRate,
			Channels:      audio.DefaultNumChannels,
			Blocksize:     audio.DefaultBlocksize,
			Tempo:         audio.DefaultTempo,
			TimeSignature: DefaultTimeSignature,
		},
		Plugins: PluginConfig{
			MaxPlugins: DefaultMaxPlugins,
		},
		IO: IOConfig{
			BitDepth: audio.DefaultBitDepth,
		},
		Transport: TransportConfig{
			UDPTargetAddress: DefaultUDPTargetAddress,
			UDPSendInterval:  DefaultUDPSendInterval,
		},
		Analysis: AnalysisConfig{
			FFTSize:       DefaultFFTSize,
			Window:        DefaultWindow,
			ClipThreshold: DefaultClipThreshold,
		},
	}
}

// Settings builds the audio settings of a run from the configuration.
func (c *Config) Settings() (*audio.Settings, error) {
	s := audio.DefaultSettings()
	if err := s.SetSampleRate(c.Audio.SampleRate); err != nil {
		return nil, err
	}
	if err := s.SetNumChannels(c.Audio.Channels); err != nil {
		return nil, err
	}
	if err := s.SetBlocksize(c.Audio.Blocksize); err != nil {
		return nil, err
	}
	if err := s.SetTempo(c.Audio.Tempo); err != nil {
		return nil, err
	}
	if c.Audio.TimeSignature != "" {
		if err := s.SetTimeSignatureFromString(c.Audio.TimeSignature); err != nil {
			return nil, err
		}
	}
	if err := s.SetBitDepth(c.IO.BitDepth); err != nil {
		return nil, err
	}
	return s, nil
}

// PCMSampleRate is the rate assumed for raw PCM input.
func (c *Config) PCMSampleRate() float64 {
	if c.IO.PCMSampleRate > 0 {
		return c.IO.PCMSampleRate
	}
	return c.Audio.SampleRate
}

// PCMChannels is the channel count assumed for raw PCM input.
func (c *Config) PCMChannels() int {
	if c.IO.PCMChannels > 0 {
		return c.IO.PCMChannels
	}
	return c.Audio.Channels
}

func (c *Config) String() string {
	return fmt.Sprintf("%.0fHz, %d channels, blocksize %d, %.1f BPM %s",
		c.Audio.SampleRate, c.Audio.Channels, c.Audio.Blocksize, c.Audio.Tempo, c.Audio.TimeSignature)
}
