// SPDX-License-Identifier: MIT
package vst2

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// Effect is the host's view of a loaded AEffect.
//
// Dispatch pointer arguments use Go types in place of raw memory:
// EffGetEffectName, EffGetVendorString, EffGetProductString, EffGetParamName,
// EffGetProgramName, EffGetProgramNameIndexed and EffShellGetNextPlugin take
// a *string; EffCanDo takes a string; EffGetChunk takes a *[]byte and
// returns its length; EffSetChunk takes a []byte; EffProcessEvents takes a
// *Events; EffSetSpeakerArrangement takes a *SpeakerArrangements.
type Effect interface {
	Dispatch(op EffectOpcode, index int32, value int64, ptr any, opt float32) int64
	ProcessReplacing(in, out [][]float32, frames int)
	SetParameter(index int32, value float32)
	GetParameter(index int32) float32

	Magic() int32
	Flags() EffectFlags
	NumInputs() int
	NumOutputs() int
	NumParams() int
	NumPrograms() int
	UniqueID() int32
	Version() int32
}

// SpeakerArrangement is the subset of VstSpeakerArrangement the host sets.
type SpeakerArrangement struct {
	Type        int32
	NumChannels int32
}

// SpeakerArrangements carries the input and output arrangements passed with
// EffSetSpeakerArrangement.
type SpeakerArrangements struct {
	Input  SpeakerArrangement
	Output SpeakerArrangement
}

// HostCallback is the function a loaded module calls back into.
type HostCallback func(effect Effect, opcode HostOpcode, index int32, value int64, ptr any, opt float32) int64

// Loader resolves a module on disk, calls its entry point with host and
// returns the resulting effect.
type Loader interface {
	Load(path string, host HostCallback) (Effect, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string, host HostCallback) (Effect, error)

func (f LoaderFunc) Load(path string, host HostCallback) (Effect, error) {
	return f(path, host)
}

// ErrNoLoader is returned when no loader is registered for a module type.
var ErrNoLoader = errors.New("no loader registered for module type")

var (
	loadersMu sync.RWMutex
	loaders   = map[string]Loader{}
)

// RegisterLoader makes l responsible for modules with the given file
// extension (".so", ".dll", ".vst"). Registering nil removes the loader.
func RegisterLoader(ext string, l Loader) {
	ext = strings.ToLower(ext)
	loadersMu.Lock()
	defer loadersMu.Unlock()
	if l == nil {
		delete(loaders, ext)
		return
	}
	loaders[ext] = l
}

// LoaderFor returns the loader registered for path's extension.
func LoaderFor(path string) (Loader, error) {
	ext := strings.ToLower(filepath.Ext(path))
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	if l, ok := loaders[ext]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%w: '%s'", ErrNoLoader, ext)
}
