// SPDX-License-Identifier: MIT
package plugin

import (
	"fmt"
	"strconv"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// ProgramPreset selects one of the plugin's built-in programs by number.
type ProgramPreset struct {
	name    string
	program int
}

func NewProgramPreset(name string) (*ProgramPreset, error) {
	program, err := strconv.Atoi(name)
	if err != nil || program < 0 {
		return nil, fmt.Errorf("%w: '%s' is not a program number", ErrInvalidPreset, name)
	}
	return &ProgramPreset{name: name, program: program}, nil
}

func (p *ProgramPreset) Name() string             { return p.name }
func (p *ProgramPreset) Variant() PresetVariant   { return PresetProgram }
func (p *ProgramPreset) CompatibleVariants() uint { return 1 << uint(VariantVst2x) }
func (p *ProgramPreset) Open() error              { return nil }
func (p *ProgramPreset) Close()                   {}
func (p *ProgramPreset) Program() int             { return p.program }

func (p *ProgramPreset) Load(plug Plugin) error {
	setter, ok := plug.(ProgramSetter)
	if !ok {
		return fmt.Errorf("%w: plugin '%s' has no programs", ErrIncompatiblePreset, plug.Name())
	}
	if p.program >= setter.NumPrograms() {
		return fmt.Errorf("%w: plugin '%s' only has %d programs", ErrPresetLoad, plug.Name(), setter.NumPrograms())
	}
	if err := setter.SetProgram(p.program); err != nil {
		return fmt.Errorf("%w: %w", ErrPresetLoad, err)
	}
	log.Debugf("Set program %d in plugin '%s'", p.program, plug.Name())
	return nil
}
