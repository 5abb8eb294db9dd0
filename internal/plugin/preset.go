// SPDX-License-Identifier: MIT
package plugin

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// PresetVariant identifies a preset format.
type PresetVariant int

const (
	PresetInvalid PresetVariant = iota
	PresetProgram
	PresetFxp
)

func (v PresetVariant) String() string {
	switch v {
	case PresetProgram:
		return "Internal program"
	case PresetFxp:
		return "FXP"
	default:
		return "Invalid"
	}
}

// Preset is a stored plugin state applied once after the plugin opens.
type Preset interface {
	Name() string
	Variant() PresetVariant
	// CompatibleVariants is a bitmask of 1<<Variant for the plugin
	// variants this preset can load into.
	CompatibleVariants() uint
	Open() error
	Load(p Plugin) error
	Close()
}

// IsCompatible reports whether preset can be loaded into p.
func IsCompatible(preset Preset, p Plugin) bool {
	return preset.CompatibleVariants()&(1<<uint(p.Variant())) != 0
}

// GuessPresetType classifies a preset name: a name made only of digits is
// an internal program number, a ".fxp" file is an FXP preset.
func GuessPresetType(name string) PresetVariant {
	ext := filepath.Ext(name)
	if ext == "" {
		if isAllDigits(name) {
			log.Debugf("Preset '%s' is an internal program number", name)
			return PresetProgram
		}
	} else if strings.EqualFold(ext, ".fxp") {
		log.Debugf("Preset '%s' is an FXP preset", name)
		return PresetFxp
	}
	log.Criticalf("Preset '%s' does not match any supported type", name)
	return PresetInvalid
}

// NewPreset builds an unopened preset of the given variant.
func NewPreset(variant PresetVariant, name string) (Preset, error) {
	switch variant {
	case PresetProgram:
		return NewProgramPreset(name)
	case PresetFxp:
		return NewFxpPreset(name), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidPreset, name)
	}
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
