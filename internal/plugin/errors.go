// SPDX-License-Identifier: MIT
package plugin

import (
	"errors"
	"fmt"
)

// Configuration errors. These are caused by the user's chain spec,
// preset names or parameter list.
var (
	ErrInvalidChainSpec      = errors.New("invalid plugin chain specification")
	ErrPluginNotFound        = errors.New("plugin could not be found")
	ErrUnknownInternalPlugin = errors.New("not a recognized internal plugin")
	ErrInvalidPreset         = errors.New("preset does not match any supported type")
	ErrIncompatiblePreset    = errors.New("preset is not a compatible format for plugin")
	ErrInstrumentNotFirst    = errors.New("instrument plugin must be first in the chain")
	ErrInvalidParameter      = errors.New("invalid parameter specification")
	ErrParameterRejected     = errors.New("plugin rejected parameter")
)

// Plugin errors.
var (
	ErrPluginOpen = errors.New("plugin could not be opened")
	ErrPresetLoad = errors.New("preset could not be loaded")
)

// ErrChainFull is returned by Append when the chain is at capacity.
var ErrChainFull = errors.New("maximum number of plugins reached")

// ChainError names the plugin or preset that caused a failure.
type ChainError struct {
	Op   string
	Name string
	Err  error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("%s '%s': %v", e.Op, e.Name, e.Err)
}

func (e *ChainError) Unwrap() error { return e.Err }

// IsConfigurationError reports whether err was caused by invalid user
// input rather than a failing plugin.
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrInvalidChainSpec, ErrPluginNotFound, ErrUnknownInternalPlugin,
		ErrInvalidPreset, ErrIncompatiblePreset, ErrInstrumentNotFirst,
		ErrInvalidParameter, ErrParameterRejected, ErrChainFull,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
