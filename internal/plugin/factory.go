// SPDX-License-Identifier: MIT
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// GuessInterfaceType decides which variant can host name. A hosted module
// found on disk wins over a built-in name. The returned location is the
// directory the module was found in.
func GuessInterfaceType(name, root string) (Variant, string) {
	if name == "" {
		log.Errorf("Attempt to guess plugin with empty name")
		return VariantInvalid, ""
	}

	log.Debugf("Trying to find plugin '%s'", name)
	if location, ok := findVst2x(name, root); ok {
		log.Infof("Plugin '%s' is of type VST2.x", name)
		return VariantVst2x, location
	}
	if strings.HasPrefix(name, InternalPrefix) {
		log.Infof("Plugin '%s' is an internal plugin", name)
		return VariantInternal, internalLocation
	}

	log.Errorf("Plugin '%s' could not be found", name)
	return VariantInvalid, ""
}

// New constructs an unopened plugin of the given variant.
func New(variant Variant, name, location string, session *audio.Session) (Plugin, error) {
	if session == nil {
		session = audio.NewSession(nil)
	}
	switch variant {
	case VariantVst2x:
		return NewVst2x(name, location, session), nil
	case VariantInternal:
		return newInternal(name, session)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrPluginNotFound, name)
	}
}

func newInternal(name string, session *audio.Session) (Plugin, error) {
	switch {
	case internalNameMatches(name, GainName):
		return NewGain(name, session), nil
	case internalNameMatches(name, LimiterName):
		return NewLimiter(name, session), nil
	case internalNameMatches(name, PassthruName):
		return NewPassthru(name, session), nil
	case internalNameMatches(name, SilenceName):
		return NewSilence(name, session), nil
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownInternalPlugin, name)
	}
}

// Available is one entry of ListAvailable.
type Available struct {
	Name     string
	Location string
	Variant  Variant
}

// ListAvailable returns the built-in plugins followed by every hosted
// module found in root and the default locations, sorted by name within
// each location.
func ListAvailable(root string) []Available {
	var out []Available
	for _, name := range InternalNames() {
		out = append(out, Available{Name: name, Location: internalLocation, Variant: VariantInternal})
	}

	locations := DefaultLocations()
	if root != "" {
		locations = append([]string{root}, locations...)
	}
	seen := make(map[string]bool, len(locations))
	for _, loc := range locations {
		if seen[loc] {
			continue
		}
		seen[loc] = true

		entries, err := os.ReadDir(loc)
		if err != nil {
			log.Debugf("Could not read plugin location '%s': %v", loc, err)
			continue
		}
		var names []string
		for _, e := range entries {
			if strings.EqualFold(strings.TrimPrefix(filepath.Ext(e.Name()), "."), PlatformExtension()) {
				names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
			}
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, Available{Name: name, Location: loc, Variant: VariantVst2x})
		}
	}
	return out
}
