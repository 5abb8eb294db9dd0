// SPDX-License-Identifier: MIT
package plugin

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
)

// DefaultMaxPlugins is the chain capacity unless WithMaxPlugins is given.
const DefaultMaxPlugins = 8

// Chain runs audio through an ordered list of plugins. An instrument, if
// any, is always the first member.
type Chain struct {
	session    *audio.Session
	maxPlugins int

	plugins     []Plugin
	presets     []Preset
	audioTimers []TaskTimer
	midiTimers  []TaskTimer
	dropouts    []int
}

// ChainOption configures a Chain.
type ChainOption func(*Chain)

// WithMaxPlugins sets the chain capacity. Values below 1 are ignored.
func WithMaxPlugins(n int) ChainOption {
	return func(c *Chain) {
		if n >= 1 {
			c.maxPlugins = n
		}
	}
}

func NewChain(session *audio.Session, opts ...ChainOption) *Chain {
	if session == nil {
		session = audio.NewSession(nil)
	}
	c := &Chain{
		session:    session,
		maxPlugins: DefaultMaxPlugins,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chain) Len() int                { return len(c.plugins) }
func (c *Chain) MaxPlugins() int         { return c.maxPlugins }
func (c *Chain) Session() *audio.Session { return c.session }
func (c *Chain) Plugin(i int) Plugin     { return c.plugins[i] }
func (c *Chain) Preset(i int) Preset     { return c.presets[i] }

// Append opens p, loads preset into it when one is given and stores the
// pair. On failure p is closed and the chain is unchanged.
func (c *Chain) Append(p Plugin, preset Preset) error {
	if p == nil {
		return &ChainError{Op: "append", Name: "", Err: ErrPluginNotFound}
	}
	if len(c.plugins) >= c.maxPlugins {
		log.Errorf("Could not add plugin '%s', maximum number of plugins (%d) reached", p.Name(), c.maxPlugins)
		return &ChainError{Op: "append", Name: p.Name(), Err: ErrChainFull}
	}
	if p.Type() == TypeInstrument && len(c.plugins) > 0 {
		log.Errorf("Instrument plugin '%s' must be first in the chain", p.Name())
		return &ChainError{Op: "append", Name: p.Name(), Err: ErrInstrumentNotFirst}
	}
	if preset != nil && p.Variant() != VariantInvalid && !IsCompatible(preset, p) {
		return &ChainError{Op: "load preset", Name: preset.Name(),
			Err: fmt.Errorf("%w '%s'", ErrIncompatiblePreset, p.Name())}
	}

	log.Infof("Opening %s plugin '%s'", p.Variant(), p.Name())
	if err := p.Open(); err != nil {
		log.Errorf("Plugin '%s' could not be opened", p.Name())
		if !errors.Is(err, ErrPluginOpen) {
			err = fmt.Errorf("%w: %w", ErrPluginOpen, err)
		}
		return &ChainError{Op: "open plugin", Name: p.Name(), Err: err}
	}

	// Hosted modules only know their type once opened.
	switch p.Type() {
	case TypeInstrument:
		if len(c.plugins) > 0 {
			log.Errorf("Instrument plugin '%s' must be first in the chain", p.Name())
			p.Close()
			return &ChainError{Op: "append", Name: p.Name(), Err: ErrInstrumentNotFirst}
		}
	case TypeEffect:
	default:
		log.Errorf("Plugin '%s' has unknown type; it cannot be used", p.Name())
		p.Close()
		return &ChainError{Op: "open plugin", Name: p.Name(),
			Err: fmt.Errorf("%w: unsupported plugin type %s", ErrPluginOpen, p.Type())}
	}

	if preset != nil {
		if err := loadPreset(p, preset); err != nil {
			p.Close()
			return &ChainError{Op: "load preset", Name: preset.Name(), Err: err}
		}
	}

	c.plugins = append(c.plugins, p)
	c.presets = append(c.presets, preset)
	c.audioTimers = append(c.audioTimers, TaskTimer{})
	c.midiTimers = append(c.midiTimers, TaskTimer{})
	c.dropouts = append(c.dropouts, 0)
	return nil
}

func loadPreset(p Plugin, preset Preset) error {
	log.Infof("Opening preset '%s' for plugin", preset.Name())
	if err := preset.Open(); err != nil {
		return err
	}
	defer preset.Close()

	log.Infof("Loading preset '%s'", preset.Name())
	if err := preset.Load(p); err != nil {
		if !errors.Is(err, ErrPresetLoad) && !IsConfigurationError(err) {
			err = fmt.Errorf("%w: %w", ErrPresetLoad, err)
		}
		return err
	}
	return nil
}

// BuildFromChainSpec resolves every "name[,preset]" entry of spec and
// appends it. It stops at the first failing entry; entries appended
// before it stay in the chain.
func (c *Chain) BuildFromChainSpec(spec, root string) error {
	if strings.TrimSpace(spec) == "" {
		log.Errorf("No plugins loaded")
		return &ChainError{Op: "parse chain", Name: spec, Err: ErrInvalidChainSpec}
	}

	for i, entry := range ChainSpecTokens(spec) {
		if entry.Plugin == "" {
			return &ChainError{Op: "parse chain", Name: spec,
				Err: fmt.Errorf("%w: entry %d is empty", ErrInvalidChainSpec, i)}
		}

		variant, location := GuessInterfaceType(entry.Plugin, root)
		if variant == VariantInvalid {
			return &ChainError{Op: "find plugin", Name: entry.Plugin, Err: ErrPluginNotFound}
		}
		p, err := New(variant, entry.Plugin, location, c.session)
		if err != nil {
			return &ChainError{Op: "create plugin", Name: entry.Plugin, Err: err}
		}

		var preset Preset
		if entry.Preset != "" {
			presetVariant := GuessPresetType(entry.Preset)
			if presetVariant == PresetInvalid {
				return &ChainError{Op: "load preset", Name: entry.Preset, Err: ErrInvalidPreset}
			}
			if preset, err = NewPreset(presetVariant, entry.Preset); err != nil {
				return &ChainError{Op: "load preset", Name: entry.Preset, Err: err}
			}
		}

		if err := c.Append(p, preset); err != nil {
			return err
		}
	}
	return nil
}

// PrepareForProcessing moves every plugin into the processing state.
func (c *Chain) PrepareForProcessing() {
	for _, p := range c.plugins {
		p.PrepareForProcessing()
	}
}

// ProcessAudio runs one block through the chain. out holds the last
// plugin's output; in may be modified. Buffers grow to fit each plugin's
// I/O counts and keep that size for later blocks.
func (c *Chain) ProcessAudio(in, out *audio.SampleBuffer) {
	maxAllowedMs := c.session.Settings.BlockDurationMs()
	last := len(c.plugins) - 1

	for i, p := range c.plugins {
		out.Clear()

		log.Debugf("Processing audio with plugin '%s'", p.Name())
		if inputs := p.Setting(SettingNumInputs); in.NumChannels() < inputs {
			log.Debugf("Expanding input source from %d -> %d channels", in.NumChannels(), inputs)
			in.Resize(inputs, true)
		}
		if outputs := p.Setting(SettingNumOutputs); out.NumChannels() < outputs {
			log.Debugf("Expanding output source from %d -> %d channels", out.NumChannels(), outputs)
			out.Resize(outputs, false)
		}

		c.audioTimers[i].Start()
		p.ProcessAudio(in, out)
		elapsed := c.audioTimers[i].Stop()

		if elapsed > maxAllowedMs {
			c.dropouts[i]++
			log.Warnf("Plugin '%s' spent %.2fms processing %.2fms of audio, dropout at frame %d",
				p.Name(), elapsed, maxAllowedMs, c.session.Clock.CurrentFrame())
		}

		if i < last {
			if in.NumChannels() != out.NumChannels() {
				in.Resize(out.NumChannels(), false)
			}
			in.CopyFrom(out)
		}
	}
}

// ProcessMidi sends events to the first plugin only.
func (c *Chain) ProcessMidi(events []midi.Event) {
	if len(events) == 0 || len(c.plugins) == 0 {
		return
	}
	log.Debugf("Processing plugin chain MIDI events")
	c.midiTimers[0].Start()
	c.plugins[0].ProcessMidiEvents(events)
	c.midiTimers[0].Stop()
}

// MaxTailTimeMs is the longest tail any plugin reports.
func (c *Chain) MaxTailTimeMs() int {
	maxTail := 0
	for _, p := range c.plugins {
		maxTail = max(maxTail, p.Setting(SettingTailTimeMs))
	}
	return maxTail
}

// SetParameters applies "index,value" specs to the first plugin in order,
// stopping at the first bad or rejected entry.
func (c *Chain) SetParameters(specs []string) error {
	if len(specs) == 0 {
		return nil
	}
	if len(c.plugins) == 0 {
		return &ChainError{Op: "set parameter", Name: specs[0],
			Err: fmt.Errorf("%w: no plugins loaded", ErrInvalidParameter)}
	}

	p := c.plugins[0]
	for _, spec := range specs {
		param, err := ParseParameterSpec(spec)
		if err != nil {
			return &ChainError{Op: "set parameter", Name: p.Name(), Err: err}
		}
		log.Debugf("Setting parameter %d to %f on plugin '%s'", param.Index, param.Value, p.Name())
		if !p.SetParameter(param.Index, param.Value) {
			return &ChainError{Op: "set parameter", Name: p.Name(),
				Err: fmt.Errorf("%w: index %d", ErrParameterRejected, param.Index)}
		}
	}
	return nil
}

// Shutdown closes every plugin in chain order.
func (c *Chain) Shutdown() {
	for _, p := range c.plugins {
		log.Infof("Closing plugin '%s'", p.Name())
		p.Close()
	}
}

// PluginStats is the accumulated processing cost of one chain member.
type PluginStats struct {
	Name      string
	AudioTime time.Duration
	MidiTime  time.Duration
	Blocks    int
	Dropouts  int
}

func (c *Chain) Stats() []PluginStats {
	stats := make([]PluginStats, len(c.plugins))
	for i, p := range c.plugins {
		stats[i] = PluginStats{
			Name:      p.Name(),
			AudioTime: c.audioTimers[i].Total(),
			MidiTime:  c.midiTimers[i].Total(),
			Blocks:    c.audioTimers[i].Count(),
			Dropouts:  c.dropouts[i],
		}
	}
	return stats
}

// TotalDropouts sums the dropouts of every plugin.
func (c *Chain) TotalDropouts() int {
	total := 0
	for _, d := range c.dropouts {
		total += d
	}
	return total
}

// LogTimingReport logs each plugin's share of total processing time.
func (c *Chain) LogTimingReport(total time.Duration) {
	if total <= 0 {
		return
	}
	log.Infof("Total processing time %s, approximate breakdown:", total.Round(time.Millisecond))
	var pluginTotal time.Duration
	for _, s := range c.Stats() {
		spent := s.AudioTime + s.MidiTime
		pluginTotal += spent
		log.Infof("  %s: %s (%.1f%%), %d dropouts", s.Name, spent.Round(time.Microsecond),
			100*float64(spent)/float64(total), s.Dropouts)
	}
	host := max(total-pluginTotal, 0)
	log.Infof("  MrsWatson: %s (%.1f%%)", host.Round(time.Microsecond), 100*float64(host)/float64(total))
}
