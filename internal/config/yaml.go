// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teragonaudio/MrsWatson-sub000/internal/analysis"
	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/pkg/bitint"
)

// DefaultFiles are searched in order when LoadConfig is given no path.
var DefaultFiles = []string{"mrswatson.yaml", "config.yaml"}

// LoadConfig loads configuration from the YAML file at path. If path is
// empty the DefaultFiles are tried and, when none exists, the defaults are
// used. Environment overrides are applied last, then the result is
// validated.
func LoadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		for _, candidate := range DefaultFiles {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		log.Debugf("Loaded configuration from '%s'", path)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting a run could not start with.
func (c *Config) Validate() error {
	if _, ok := log.ParseLevel(c.LogLevel); !ok {
		return fmt.Errorf("unknown log_level '%s'", c.LogLevel)
	}

	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %g", c.Audio.SampleRate)
	}
	if c.Audio.Channels <= 0 {
		return fmt.Errorf("audio.channels must be positive, got %d", c.Audio.Channels)
	}
	if c.Audio.Blocksize <= 0 {
		return fmt.Errorf("audio.blocksize must be positive, got %d", c.Audio.Blocksize)
	}
	if !bitint.IsPowerOfTwo(c.Audio.Blocksize) {
		log.Warnf("Blocksize %d is not a power of two, some plugins may misbehave", c.Audio.Blocksize)
	}
	if c.Audio.Tempo <= 0 {
		return fmt.Errorf("audio.tempo must be positive, got %g", c.Audio.Tempo)
	}
	if c.Audio.TimeSignature != "" {
		if err := audio.DefaultSettings().SetTimeSignatureFromString(c.Audio.TimeSignature); err != nil {
			return fmt.Errorf("audio.time_signature: %w", err)
		}
	}

	if c.Plugins.MaxPlugins < 1 {
		return fmt.Errorf("plugins.max_plugins must be at least 1, got %d", c.Plugins.MaxPlugins)
	}

	switch c.IO.BitDepth {
	case 16, 24, 32:
	default:
		return fmt.Errorf("io.bit_depth must be 16, 24 or 32, got %d", c.IO.BitDepth)
	}
	if c.IO.PCMSampleRate < 0 || c.IO.PCMChannels < 0 {
		return errors.New("io.pcm_sample_rate and io.pcm_channels must not be negative")
	}
	if c.IO.TailTimeMs < 0 {
		return fmt.Errorf("io.tail_time_ms must not be negative, got %d", c.IO.TailTimeMs)
	}

	if c.Transport.UDPEnabled {
		if !strings.Contains(c.Transport.UDPTargetAddress, ":") {
			return fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress)
		}
		if c.Transport.UDPSendInterval <= 0 {
			return errors.New("transport.udp_send_interval must be positive when UDP is enabled")
		}
	}

	if !bitint.IsPowerOfTwo(c.Analysis.FFTSize) {
		return fmt.Errorf("analysis.fft_size must be a power of two, got %d", c.Analysis.FFTSize)
	}
	if _, err := analysis.ParseWindowFunc(c.Analysis.Window); err != nil {
		return fmt.Errorf("analysis.window: %w", err)
	}
	if c.Analysis.ClipThreshold <= 0 {
		return fmt.Errorf("analysis.clip_threshold must be positive, got %g", c.Analysis.ClipThreshold)
	}
	return nil
}

// applyEnvOverrides reads ENV_* variables. Values that do not parse are
// ignored with a warning.
func (c *Config) applyEnvOverrides() {
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		log.Debugf("configuration: Overriding log_level from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_PLUGIN_ROOT"); ok {
		c.Plugins.Root = val
		log.Debugf("configuration: Overriding plugins.root from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_SAMPLE_RATE"); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Audio.SampleRate = f
			log.Debugf("configuration: Overriding audio.sample_rate from env: %g", f)
		} else {
			log.Warnf("configuration: Ignoring ENV_SAMPLE_RATE '%s': %v", val, err)
		}
	}
	if val, ok := os.LookupEnv("ENV_BLOCKSIZE"); ok {
		if n, err := strconv.Atoi(val); err == nil {
			c.Audio.Blocksize = n
			log.Debugf("configuration: Overriding audio.blocksize from env: %d", n)
		} else {
			log.Warnf("configuration: Ignoring ENV_BLOCKSIZE '%s': %v", val, err)
		}
	}

	// ENV_UDP_{...} configure the transport layer.
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Transport.UDPEnabled = b
			log.Debugf("configuration: Overriding transport.udp_enabled from env: %v", b)
		}
	}
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		c.Transport.UDPTargetAddress = val
		log.Debugf("configuration: Overriding transport.udp_target_address from env: %s", val)
	}
	if val, ok := os.LookupEnv("ENV_UDP_SEND_INTERVAL"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Transport.UDPSendInterval = dur
			log.Debugf("configuration: Overriding transport.udp_send_interval from env: %s", dur)
		}
	}
}
