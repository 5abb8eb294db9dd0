// SPDX-License-Identifier: MIT
package vst2

import (
	"math"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
)

// Identity reported to plugins.
const (
	HostVendor       = "Teragon Audio"
	HostProduct      = "MrsWatson"
	HostVersionMajor = 0
	HostVersionMinor = 9
	HostVersionPatch = 7

	// HostAPIVersion is the VST version this host implements.
	HostAPIVersion = 2400
)

const (
	processLevelUnknown   = 0
	automationUnsupported = 1
	languageEnglish       = 1
)

// Host answers the callbacks of one hosted module. It reads the session's
// settings and clock but never writes them.
type Host struct {
	session     *audio.Session
	pluginName  string
	shellID     int32
	onIOChanged func(Effect) bool
}

// NewHostCallback returns the host for one module. shellID is the sub-plugin
// requested from a shell module, or 0.
func NewHostCallback(session *audio.Session, pluginName string, shellID int32) *Host {
	if session == nil {
		session = audio.NewSession(nil)
	}
	return &Host{session: session, pluginName: pluginName, shellID: shellID}
}

// OnIOChanged sets the function called when the module reports a change in
// its I/O configuration. It reports whether the module was found.
func (h *Host) OnIOChanged(fn func(Effect) bool) {
	h.onIOChanged = fn
}

// Callback returns Dispatch as a HostCallback for a Loader.
func (h *Host) Callback() HostCallback {
	return h.Dispatch
}

// Dispatch handles one host opcode. Unknown, deprecated and unsupported
// opcodes are logged and answered with 0.
func (h *Host) Dispatch(effect Effect, opcode HostOpcode, index int32, value int64, ptr any, opt float32) int64 {
	id := h.idString(effect)
	log.Debugf("Plugin '%s' called host dispatcher with %s, %d, %d", id, opcode, index, value)

	switch opcode {
	case HostAutomate:
		// Parameter changes from a GUI or live MIDI do not happen offline.
		return 0

	case HostVersion:
		return HostAPIVersion

	case HostCurrentID:
		return int64(h.shellID)

	case HostIdle:
		return 1

	case HostWantMidi:
		// Sent by older instruments to announce themselves.
		return 1

	case HostGetTime:
		info, ok := ptr.(*TimeInfo)
		if !ok || info == nil {
			log.InternalErrorf("plugin '%s' requested time info without a TimeInfo to fill", id)
			return 0
		}
		h.fillTimeInfo(id, info, TimeInfoFlags(value))
		return 1

	case HostProcessEvents:
		log.Unsupportedf("VST master opcode audioMasterProcessEvents")
		return 0

	case HostIOChanged:
		if effect != nil {
			log.Debugf("Number of inputs: %d", effect.NumInputs())
			log.Debugf("Number of outputs: %d", effect.NumOutputs())
			log.Debugf("Number of parameters: %d", effect.NumParams())
			if h.onIOChanged != nil && h.onIOChanged(effect) {
				log.Debugf("Updating plugin '%s'", h.pluginName)
				return 0
			}
			return -1
		}
		h.deprecated(opcode, id)
		return 0

	case HostSizeWindow:
		log.Warnf("Plugin '%s' asked us to resize window (unsupported)", id)
		return 0

	case HostGetSampleRate:
		return int64(h.session.Settings.SampleRate())

	case HostGetBlockSize:
		return int64(h.session.Settings.Blocksize())

	case HostGetInputLatency, HostGetOutputLatency:
		return 0

	case HostGetCurrentProcessLevel:
		return processLevelUnknown

	case HostGetAutomationState:
		return automationUnsupported

	case HostOfflineStart:
		log.Warnf("Plugin '%s' asked us to start offline processing (unsupported)", id)
		return 0
	case HostOfflineRead:
		log.Warnf("Plugin '%s' asked to read offline data (unsupported)", id)
		return 0
	case HostOfflineWrite:
		log.Warnf("Plugin '%s' asked to write offline data (unsupported)", id)
		return 0
	case HostOfflineGetCurrentPass:
		log.Warnf("Plugin '%s' asked for current offline pass (unsupported)", id)
		return 0
	case HostOfflineGetCurrentMetaPass:
		log.Warnf("Plugin '%s' asked for current offline meta pass (unsupported)", id)
		return 0

	case HostGetVendorString:
		return copyString(ptr, HostVendor)

	case HostGetProductString:
		return copyString(ptr, HostProduct)

	case HostGetVendorVersion:
		// Version A.B.C is reported as ABCC.
		return HostVersionMajor*1000 + HostVersionMinor*100 + HostVersionPatch

	case HostVendorSpecific:
		log.Warnf("Plugin '%s' made a vendor specific call (unsupported). Arguments: %d, %d, %f", id, index, value, opt)
		return 0

	case HostCanDo:
		what, _ := ptr.(string)
		if p, ok := ptr.(*string); ok && p != nil {
			what = *p
		}
		if CanDoHost(id, what) {
			return 1
		}
		return 0

	case HostGetLanguage:
		return languageEnglish

	case HostGetDirectory:
		log.Warnf("Plugin '%s' asked for directory pointer (unsupported)", id)
		return 0

	case HostUpdateDisplay:
		return 0

	case HostBeginEdit:
		log.Warnf("Plugin '%s' asked to begin parameter automation (unsupported)", id)
		return 0
	case HostEndEdit:
		log.Warnf("Plugin '%s' asked to end parameter automation (unsupported)", id)
		return 0

	case HostOpenFileSelector:
		log.Warnf("Plugin '%s' asked us to open file selector (unsupported)", id)
		return 0
	case HostCloseFileSelector:
		log.Warnf("Plugin '%s' asked us to close file selector (unsupported)", id)
		return 0

	case HostPinConnected, HostSetTime, HostTempoAt, HostGetNumAutomatableParameters,
		HostGetParameterQuantization, HostNeedIdle, HostGetPreviousPlug, HostGetNextPlug,
		HostWillReplaceOrAccumulate, HostSetOutputSampleRate, HostGetOutputSpeakerArrangement,
		HostSetIcon, HostOpenWindow, HostCloseWindow, HostEditFile, HostGetChunkFile,
		HostGetInputSpeakerArrangement:
		h.deprecated(opcode, id)
		return 0

	default:
		log.Warnf("Plugin '%s' asked if host can do unknown opcode %d", id, int32(opcode))
		return 0
	}
}

// fillTimeInfo writes the fields requested in mask. Sample position and
// sample rate are always valid. Musical positions are 1-based.
func (h *Host) fillTimeInfo(id string, info *TimeInfo, mask TimeInfoFlags) {
	settings := h.session.Settings
	clock := h.session.Clock

	info.SamplePos = float64(clock.CurrentFrame())
	info.SampleRate = settings.SampleRate()

	info.Flags = 0
	if clock.TransportChanged() {
		info.Flags |= TransportChanged
	}
	if clock.IsPlaying() {
		info.Flags |= TransportPlaying
	}

	if mask.Has(NanosValid) {
		// Wall clock time means nothing to an offline render.
		log.Warnf("Plugin '%s' asked for time in nanoseconds (unsupported)", id)
	}

	if mask.Has(PpqPosValid) {
		info.PpqPos = settings.SamplesPerBeat()*info.SamplePos + 1.0
		log.Debugf("Current PPQ position is %g", info.PpqPos)
		info.Flags |= PpqPosValid
	}

	if mask.Has(TempoValid) {
		info.Tempo = settings.Tempo()
		info.Flags |= TempoValid
	}

	if mask.Has(BarsValid) {
		if !mask.Has(PpqPosValid) {
			log.Errorf("Plugin '%s' requested position in bars, but not PPQ", id)
		}
		beats := float64(settings.TimeSigBeatsPerMeasure())
		info.BarStartPos = math.Floor(info.PpqPos/beats)*beats + 1.0
		log.Debugf("Current bar is %g", info.BarStartPos)
		info.Flags |= BarsValid
	}

	// Cycling is not supported; CyclePosValid is never set.

	if mask.Has(TimeSigValid) {
		info.TimeSigNumerator = int32(settings.TimeSigBeatsPerMeasure())
		info.TimeSigDenominator = int32(settings.TimeSigNoteValue())
		info.Flags |= TimeSigValid
	}

	if mask.Has(SmpteValid) {
		log.Unsupportedf("Current time in SMPTE format")
	}

	if mask.Has(ClockValid) {
		log.Unsupportedf("Sample frames until next clock")
	}
}

func (h *Host) deprecated(opcode HostOpcode, id string) {
	log.Deprecatedf("audioMaster%s called by plugin '%s'", opcode, id)
}

func (h *Host) idString(effect Effect) string {
	// Modules may call back before their AEffect is complete.
	if effect == nil {
		if h.pluginName != "" {
			return h.pluginName
		}
		return "????"
	}
	return IDToString(effect.UniqueID())
}

// copyString writes s, truncated to MaxStringLength, into a *string or
// *[]byte and returns 1, or 0 for any other destination.
func copyString(ptr any, s string) int64 {
	if len(s) > MaxStringLength {
		s = s[:MaxStringLength]
	}
	switch dst := ptr.(type) {
	case *string:
		if dst == nil {
			return 0
		}
		*dst = s
	case *[]byte:
		if dst == nil {
			return 0
		}
		*dst = append((*dst)[:0], s...)
	default:
		log.InternalErrorf("cannot copy host string into %T", ptr)
		return 0
	}
	return 1
}
