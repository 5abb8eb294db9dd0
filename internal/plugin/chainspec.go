// SPDX-License-Identifier: MIT
package plugin

import (
	"iter"
	"strings"
)

// Chain spec separators.
const (
	ChainEntrySeparator  = ";"
	ChainPresetSeparator = ","
)

// ChainEntry is one "name[,preset]" element of a chain spec.
type ChainEntry struct {
	Plugin string
	Preset string
}

// ChainSpecTokens splits spec into its entries, left to right. The
// sequence may be ranged over any number of times. An empty spec yields
// nothing; empty entries are yielded with an empty Plugin so the caller can
// reject them.
func ChainSpecTokens(spec string) iter.Seq2[int, ChainEntry] {
	return func(yield func(int, ChainEntry) bool) {
		if spec == "" {
			return
		}
		i := 0
		for raw := range strings.SplitSeq(spec, ChainEntrySeparator) {
			name, preset, _ := strings.Cut(raw, ChainPresetSeparator)
			entry := ChainEntry{
				Plugin: strings.TrimSpace(name),
				Preset: strings.TrimSpace(preset),
			}
			if !yield(i, entry) {
				return
			}
			i++
		}
	}
}

// String formats the entry back into chain spec syntax.
func (e ChainEntry) String() string {
	if e.Preset == "" {
		return e.Plugin
	}
	return e.Plugin + ChainPresetSeparator + e.Preset
}
