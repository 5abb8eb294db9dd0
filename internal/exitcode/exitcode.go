// SPDX-License-Identifier: MIT
// Package exitcode maps run errors to the process return codes scripts
// calling mrswatson depend on.
package exitcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/plugin"
	"github.com/teragonaudio/MrsWatson-sub000/internal/source"
)

// Code is a process exit status.
type Code int

const (
	Success Code = iota
	NotRun
	InvalidArgument
	MissingRequiredOption
	IOError
	PluginError
	InvalidPluginChain
	UnsupportedFeature
	InternalError
	// Signal is the base for interrupted runs; the signal number is added.
	Signal
)

func (c Code) String() string {
	switch {
	case c == Success:
		return "Success"
	case c == NotRun:
		return "Not run"
	case c == InvalidArgument:
		return "Invalid argument"
	case c == MissingRequiredOption:
		return "Missing required option"
	case c == IOError:
		return "I/O error"
	case c == PluginError:
		return "Plugin error"
	case c == InvalidPluginChain:
		return "Invalid plugin chain"
	case c == UnsupportedFeature:
		return "Unsupported feature"
	case c == InternalError:
		return "Internal error"
	case c >= Signal:
		return "Caught signal"
	default:
		return "Unknown"
	}
}

var (
	// ErrNotRun marks runs that only printed something, like help or a
	// listing.
	ErrNotRun = errors.New("nothing was processed")
	// ErrMissingRequiredOption is returned when a run lacks a mandatory
	// flag.
	ErrMissingRequiredOption = errors.New("missing required option")
	// ErrInvalidArgument wraps malformed flag values and configuration.
	ErrInvalidArgument = errors.New("invalid argument")
)

// SignalError records the signal that interrupted a run.
type SignalError struct {
	Signal os.Signal
}

func (e *SignalError) Error() string {
	return fmt.Sprintf("caught signal %v", e.Signal)
}

func (e *SignalError) Code() Code {
	if s, ok := e.Signal.(syscall.Signal); ok {
		return Signal + Code(s)
	}
	return Signal
}

// FromError returns the exit code for err. A nil error is Success.
func FromError(err error) Code {
	if err == nil {
		return Success
	}

	var sigErr *SignalError
	switch {
	case errors.As(err, &sigErr):
		return sigErr.Code()
	case errors.Is(err, context.Canceled):
		return Signal
	case errors.Is(err, ErrNotRun):
		return NotRun
	case errors.Is(err, ErrMissingRequiredOption):
		return MissingRequiredOption
	case isAny(err, plugin.ErrInvalidChainSpec, plugin.ErrPluginNotFound, plugin.ErrUnknownInternalPlugin,
		plugin.ErrInstrumentNotFirst, plugin.ErrChainFull):
		return InvalidPluginChain
	case isAny(err, ErrInvalidArgument, plugin.ErrInvalidPreset, plugin.ErrIncompatiblePreset,
		plugin.ErrInvalidParameter, plugin.ErrParameterRejected):
		return InvalidArgument
	case isAny(err, plugin.ErrPluginOpen, plugin.ErrPresetLoad):
		return PluginError
	case isAny(err, source.ErrUnsupportedFormat, source.ErrReadOnlyFormat, midi.ErrUnsupportedFile):
		return UnsupportedFeature
	case isAny(err, source.ErrInvalidFile, source.ErrNotOpen, midi.ErrInvalidFile, io.ErrUnexpectedEOF):
		return IOError
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return IOError
	}
	return InternalError
}

func isAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
