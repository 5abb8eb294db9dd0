// SPDX-License-Identifier: MIT
/*
Package vst2 describes the VST 2.x binary interface as seen from the host:
opcode and flag constants, the time info structure handed to plugins, the
narrow Effect interface a loaded module is wrapped in, and the host
callback that answers a module's synchronous queries.

No native loader is compiled in. A Loader that resolves a module on disk to
an Effect is registered at runtime with RegisterLoader.
*/
package vst2

import "fmt"

// HostOpcode selects an operation in the host callback (audioMaster*).
type HostOpcode int32

const (
	HostAutomate                    HostOpcode = 0
	HostVersion                     HostOpcode = 1
	HostCurrentID                   HostOpcode = 2
	HostIdle                        HostOpcode = 3
	HostPinConnected                HostOpcode = 4
	HostWantMidi                    HostOpcode = 6
	HostGetTime                     HostOpcode = 7
	HostProcessEvents               HostOpcode = 8
	HostSetTime                     HostOpcode = 9
	HostTempoAt                     HostOpcode = 10
	HostGetNumAutomatableParameters HostOpcode = 11
	HostGetParameterQuantization    HostOpcode = 12
	HostIOChanged                   HostOpcode = 13
	HostNeedIdle                    HostOpcode = 14
	HostSizeWindow                  HostOpcode = 15
	HostGetSampleRate               HostOpcode = 16
	HostGetBlockSize                HostOpcode = 17
	HostGetInputLatency             HostOpcode = 18
	HostGetOutputLatency            HostOpcode = 19
	HostGetPreviousPlug             HostOpcode = 20
	HostGetNextPlug                 HostOpcode = 21
	HostWillReplaceOrAccumulate     HostOpcode = 22
	HostGetCurrentProcessLevel      HostOpcode = 23
	HostGetAutomationState          HostOpcode = 24
	HostOfflineStart                HostOpcode = 25
	HostOfflineRead                 HostOpcode = 26
	HostOfflineWrite                HostOpcode = 27
	HostOfflineGetCurrentPass       HostOpcode = 28
	HostOfflineGetCurrentMetaPass   HostOpcode = 29
	HostSetOutputSampleRate         HostOpcode = 30
	HostGetOutputSpeakerArrangement HostOpcode = 31
	HostGetVendorString             HostOpcode = 32
	HostGetProductString            HostOpcode = 33
	HostGetVendorVersion            HostOpcode = 34
	HostVendorSpecific              HostOpcode = 35
	HostSetIcon                     HostOpcode = 36
	HostCanDo                       HostOpcode = 37
	HostGetLanguage                 HostOpcode = 38
	HostOpenWindow                  HostOpcode = 39
	HostCloseWindow                 HostOpcode = 40
	HostGetDirectory                HostOpcode = 41
	HostUpdateDisplay               HostOpcode = 42
	HostBeginEdit                   HostOpcode = 43
	HostEndEdit                     HostOpcode = 44
	HostOpenFileSelector            HostOpcode = 45
	HostCloseFileSelector           HostOpcode = 46
	HostEditFile                    HostOpcode = 47
	HostGetChunkFile                HostOpcode = 48
	HostGetInputSpeakerArrangement  HostOpcode = 49
)

var hostOpcodeNames = map[HostOpcode]string{
	HostAutomate:                    "Automate",
	HostVersion:                     "Version",
	HostCurrentID:                   "CurrentId",
	HostIdle:                        "Idle",
	HostPinConnected:                "PinConnected",
	HostWantMidi:                    "WantMidi",
	HostGetTime:                     "GetTime",
	HostProcessEvents:               "ProcessEvents",
	HostSetTime:                     "SetTime",
	HostTempoAt:                     "TempoAt",
	HostGetNumAutomatableParameters: "GetNumAutomatableParameters",
	HostGetParameterQuantization:    "GetParameterQuantization",
	HostIOChanged:                   "IOChanged",
	HostNeedIdle:                    "NeedIdle",
	HostSizeWindow:                  "SizeWindow",
	HostGetSampleRate:               "GetSampleRate",
	HostGetBlockSize:                "GetBlockSize",
	HostGetInputLatency:             "GetInputLatency",
	HostGetOutputLatency:            "GetOutputLatency",
	HostGetPreviousPlug:             "GetPreviousPlug",
	HostGetNextPlug:                 "GetNextPlug",
	HostWillReplaceOrAccumulate:     "WillReplaceOrAccumulate",
	HostGetCurrentProcessLevel:      "GetCurrentProcessLevel",
	HostGetAutomationState:          "GetAutomationState",
	HostOfflineStart:                "OfflineStart",
	HostOfflineRead:                 "OfflineRead",
	HostOfflineWrite:                "OfflineWrite",
	HostOfflineGetCurrentPass:       "OfflineGetCurrentPass",
	HostOfflineGetCurrentMetaPass:   "OfflineGetCurrentMetaPass",
	HostSetOutputSampleRate:         "SetOutputSampleRate",
	HostGetOutputSpeakerArrangement: "GetOutputSpeakerArrangement",
	HostGetVendorString:             "GetVendorString",
	HostGetProductString:            "GetProductString",
	HostGetVendorVersion:            "GetVendorVersion",
	HostVendorSpecific:              "VendorSpecific",
	HostSetIcon:                     "SetIcon",
	HostCanDo:                       "CanDo",
	HostGetLanguage:                 "GetLanguage",
	HostOpenWindow:                  "OpenWindow",
	HostCloseWindow:                 "CloseWindow",
	HostGetDirectory:                "GetDirectory",
	HostUpdateDisplay:               "UpdateDisplay",
	HostBeginEdit:                   "BeginEdit",
	HostEndEdit:                     "EndEdit",
	HostOpenFileSelector:            "OpenFileSelector",
	HostCloseFileSelector:           "CloseFileSelector",
	HostEditFile:                    "EditFile",
	HostGetChunkFile:                "GetChunkFile",
	HostGetInputSpeakerArrangement:  "GetInputSpeakerArrangement",
}

func (op HostOpcode) String() string {
	if name, ok := hostOpcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("HostOpcode(%d)", int32(op))
}

// EffectOpcode selects an operation in an effect's dispatcher (eff*).
type EffectOpcode int32

const (
	EffOpen                  EffectOpcode = 0
	EffClose                 EffectOpcode = 1
	EffSetProgram            EffectOpcode = 2
	EffGetProgram            EffectOpcode = 3
	EffGetProgramName        EffectOpcode = 5
	EffGetParamName          EffectOpcode = 8
	EffSetSampleRate         EffectOpcode = 10
	EffSetBlockSize          EffectOpcode = 11
	EffMainsChanged          EffectOpcode = 12
	EffGetChunk              EffectOpcode = 23
	EffSetChunk              EffectOpcode = 24
	EffProcessEvents         EffectOpcode = 25
	EffGetProgramNameIndexed EffectOpcode = 29
	EffGetPlugCategory       EffectOpcode = 35
	EffSetSpeakerArrangement EffectOpcode = 42
	EffGetEffectName         EffectOpcode = 45
	EffGetVendorString       EffectOpcode = 47
	EffGetProductString      EffectOpcode = 48
	EffGetVendorVersion      EffectOpcode = 49
	EffCanDo                 EffectOpcode = 51
	EffGetTailSize           EffectOpcode = 52
	EffGetVstVersion         EffectOpcode = 58
	EffShellGetNextPlugin    EffectOpcode = 70
	EffStartProcess          EffectOpcode = 71
	EffStopProcess           EffectOpcode = 72
)

func (op EffectOpcode) String() string {
	switch op {
	case EffOpen:
		return "Open"
	case EffClose:
		return "Close"
	case EffSetProgram:
		return "SetProgram"
	case EffGetProgram:
		return "GetProgram"
	case EffGetProgramName:
		return "GetProgramName"
	case EffGetParamName:
		return "GetParamName"
	case EffSetSampleRate:
		return "SetSampleRate"
	case EffSetBlockSize:
		return "SetBlockSize"
	case EffMainsChanged:
		return "MainsChanged"
	case EffGetChunk:
		return "GetChunk"
	case EffSetChunk:
		return "SetChunk"
	case EffProcessEvents:
		return "ProcessEvents"
	case EffGetProgramNameIndexed:
		return "GetProgramNameIndexed"
	case EffGetPlugCategory:
		return "GetPlugCategory"
	case EffSetSpeakerArrangement:
		return "SetSpeakerArrangement"
	case EffGetEffectName:
		return "GetEffectName"
	case EffGetVendorString:
		return "GetVendorString"
	case EffGetProductString:
		return "GetProductString"
	case EffGetVendorVersion:
		return "GetVendorVersion"
	case EffCanDo:
		return "CanDo"
	case EffGetTailSize:
		return "GetTailSize"
	case EffGetVstVersion:
		return "GetVstVersion"
	case EffShellGetNextPlugin:
		return "ShellGetNextPlugin"
	case EffStartProcess:
		return "StartProcess"
	case EffStopProcess:
		return "StopProcess"
	default:
		return fmt.Sprintf("EffectOpcode(%d)", int32(op))
	}
}

// EffectFlags are the effFlags* bits of an AEffect.
type EffectFlags int32

const (
	FlagHasEditor     EffectFlags = 1 << 0
	FlagCanReplacing  EffectFlags = 1 << 4
	FlagProgramChunks EffectFlags = 1 << 5
	FlagIsSynth       EffectFlags = 1 << 8
	FlagNoSoundInStop EffectFlags = 1 << 9
)

func (f EffectFlags) Has(flag EffectFlags) bool { return f&flag != 0 }

// EffectMagic is the kEffectMagic value ('VstP') every AEffect carries.
const EffectMagic int32 = 'V'<<24 | 's'<<16 | 't'<<8 | 'P'

// PlugCategoryShell is returned by EffGetPlugCategory for shell modules that
// bundle several sub-plugins.
const PlugCategoryShell = 10

// Speaker arrangement types used with EffSetSpeakerArrangement.
const (
	SpeakerArrMono   int32 = 0
	SpeakerArrStereo int32 = 1
)

// MaxStringLength bounds vendor and product strings exchanged with plugins.
const MaxStringLength = 64
