// SPDX-License-Identifier: MIT
package vst2

import "github.com/teragonaudio/MrsWatson-sub000/internal/log"

// hostCanDo lists every capability string the host knows about. Strings
// mapped to false are recognised but not supported.
var hostCanDo = map[string]bool{
	"sendVstEvents":                  true,
	"sendVstMidiEvent":               true,
	"sendVstTimeInfo":                true,
	"receiveVstEvents":               false,
	"receiveVstMidiEvent":            false,
	"reportConnectionChanges":        false,
	"acceptIOChanges":                false,
	"sizeWindow":                     false,
	"offline":                        false,
	"openFileSelector":               false,
	"closeFileSelector":              false,
	"startStopProcess":               true,
	"shellCategory":                  true,
	"sendVstMidiEventFlagIsRealtime": false,
}

// CanDoHost answers a plugin's audioMasterCanDo query.
func CanDoHost(pluginName, what string) bool {
	log.Debugf("Plugin '%s' asked if we can do '%s'", pluginName, what)
	if what == "" {
		log.Warnf("Plugin '%s' asked if we can do an empty string. This is probably a bug.", pluginName)
		return false
	}
	supported, known := hostCanDo[what]
	if !known {
		log.Infof("Plugin '%s' asked if host canDo '%s' (unimplemented)", pluginName, what)
	}
	return supported
}

// CommonPluginCanDos are the capability strings queried when describing a
// plugin.
var CommonPluginCanDos = []string{
	"sendVstEvents",
	"sendVstMidiEvent",
	"receiveVstEvents",
	"receiveVstMidiEvent",
	"receiveVstTimeInfo",
	"offline",
	"midiProgramNames",
	"bypass",
}

// CanDoResultString renders an effCanDo answer.
func CanDoResultString(result int64) string {
	switch result {
	case -1:
		return "No"
	case 0:
		return "Don't know"
	case 1:
		return "Yes"
	default:
		return "Undefined response"
	}
}
