// SPDX-License-Identifier: MIT
package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/teragonaudio/MrsWatson-sub000/internal/audio"
	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/midi"
	"github.com/teragonaudio/MrsWatson-sub000/internal/vst2"
)

// Vst2x hosts a VST 2.x module through a vst2.Effect.
type Vst2x struct {
	base
	modulePath string
	shellID    int32
	isShell    bool
	typ        Type

	effect     vst2.Effect
	host       *vst2.Host
	numInputs  int
	numOutputs int

	inputs  [][]float32
	outputs [][]float32
	events  vst2.Events
}

// NewVst2x returns an unopened hosted module. name may carry a shell
// sub-plugin ID ("WaveShell:TCR2"); location is the directory it was found
// in, or empty for an absolute name.
func NewVst2x(name, location string, session *audio.Session) *Vst2x {
	if session == nil {
		session = audio.NewSession(nil)
	}
	return &Vst2x{
		base: base{name: name, location: location, session: session},
		typ:  TypeUnknown,
	}
}

func (p *Vst2x) Variant() Variant { return VariantVst2x }
func (p *Vst2x) Type() Type       { return p.typ }

// UniqueID is the loaded module's unique ID, or 0 before Open.
func (p *Vst2x) UniqueID() int32 {
	if p.effect == nil {
		return 0
	}
	return p.effect.UniqueID()
}

func (p *Vst2x) NumParams() int {
	if p.effect == nil {
		return 0
	}
	return p.effect.NumParams()
}

func (p *Vst2x) NumPrograms() int {
	if p.effect == nil {
		return 0
	}
	return p.effect.NumPrograms()
}

func (p *Vst2x) Open() error {
	if p.state != StateUnopened {
		return nil
	}
	name, shellID := vst2.ParseShellName(p.name)
	p.shellID = shellID
	p.modulePath = modulePath(name, p.location)

	log.Infof("Opening VST2.x plugin '%s'", p.name)
	log.Debugf("Plugin location is '%s'", p.location)

	loader, err := vst2.LoaderFor(p.modulePath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPluginOpen, err)
	}

	displayName := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if shellID != 0 {
		displayName = fmt.Sprintf("%s (%s)", displayName, vst2.IDToString(shellID))
	}

	p.host = vst2.NewHostCallback(p.session, displayName, shellID)
	p.host.OnIOChanged(p.ioChanged)
	effect, err := loader.Load(p.modulePath, p.host.Callback())
	if err != nil {
		return fmt.Errorf("%w: could not load VST2.x plugin '%s': %w", ErrPluginOpen, p.modulePath, err)
	}
	if effect == nil {
		return fmt.Errorf("%w: could not load VST2.x plugin '%s'", ErrPluginOpen, p.modulePath)
	}
	if effect.Magic() != vst2.EffectMagic {
		effect.Dispatch(vst2.EffClose, 0, 0, nil, 0)
		return fmt.Errorf("%w: plugin '%s' has bad magic number, possibly corrupt", ErrPluginOpen, p.name)
	}
	// The requested name only located the module; report a friendlier one.
	p.name = displayName
	p.effect = effect
	p.initialize()
	p.state = StateOpen
	return nil
}

func (p *Vst2x) initialize() {
	settings := p.session.Settings
	log.Debugf("Initializing VST2.x plugin '%s' (%s)", p.name, vst2.IDToString(p.effect.UniqueID()))

	if p.effect.Flags().Has(vst2.FlagIsSynth) {
		p.typ = TypeInstrument
	} else {
		p.typ = TypeEffect
	}

	if p.effect.Dispatch(vst2.EffGetPlugCategory, 0, 0, nil, 0) == vst2.PlugCategoryShell {
		log.Debugf("VST is a shell plugin, sub-plugin ID '%s'", vst2.IDToString(p.shellID))
		p.isShell = true
	}

	p.effect.Dispatch(vst2.EffOpen, 0, 0, nil, 0)
	p.effect.Dispatch(vst2.EffSetSampleRate, 0, 0, nil, float32(settings.SampleRate()))
	p.effect.Dispatch(vst2.EffSetBlockSize, 0, int64(settings.Blocksize()), nil, 0)

	arrangement := vst2.SpeakerArrangement{
		Type:        vst2.SpeakerArrStereo,
		NumChannels: int32(settings.NumChannels()),
	}
	if settings.NumChannels() == 1 {
		arrangement.Type = vst2.SpeakerArrMono
	}
	p.effect.Dispatch(vst2.EffSetSpeakerArrangement, 0, 0,
		&vst2.SpeakerArrangements{Input: arrangement, Output: arrangement}, 0)

	p.numInputs = p.effect.NumInputs()
	p.numOutputs = p.effect.NumOutputs()
}

// ioChanged refreshes the cached I/O counts when the module reports new
// ones through the host callback.
func (p *Vst2x) ioChanged(effect vst2.Effect) bool {
	if p.effect == nil || effect.UniqueID() != p.effect.UniqueID() {
		return false
	}
	p.numInputs = effect.NumInputs()
	p.numOutputs = effect.NumOutputs()
	return true
}

func (p *Vst2x) PrepareForProcessing() {
	if p.effect == nil {
		return
	}
	log.Debugf("Resuming plugin '%s'", p.name)
	if p.isShell && p.shellID == 0 {
		log.Errorf("'%s' is a shell plugin, but no sub-plugin ID was given, run with --help plugin", p.name)
	}
	p.effect.Dispatch(vst2.EffMainsChanged, 0, 1, nil, 0)
	p.effect.Dispatch(vst2.EffStartProcess, 0, 0, nil, 0)
	p.state = StatePrepared
}

func (p *Vst2x) ProcessAudio(in, out *audio.SampleBuffer) {
	p.inputs = in.Float32(p.inputs)
	p.outputs = out.Float32(p.outputs)
	p.effect.ProcessReplacing(p.inputs, p.outputs, out.Blocksize())
	out.SetFloat32(p.outputs)
}

func (p *Vst2x) ProcessMidiEvents(events []midi.Event) {
	vst2.ConvertMidiEvents(events, &p.events)
	p.effect.Dispatch(vst2.EffProcessEvents, 0, 0, &p.events, 0)
}

// Setting reports the plugin's I/O counts and tail time. The module returns
// its tail in frames, where 0 and 1 both mean no tail.
func (p *Vst2x) Setting(s Setting) int {
	if p.effect == nil {
		return 0
	}
	switch s {
	case SettingNumInputs:
		return p.numInputs
	case SettingNumOutputs:
		return p.numOutputs
	case SettingTailTimeMs:
		tail := p.effect.Dispatch(vst2.EffGetTailSize, 0, 0, nil, 0)
		if tail <= 1 {
			return 0
		}
		return int(float64(tail) * 1000.0 / p.session.Settings.SampleRate())
	default:
		log.Unsupportedf("Plugin setting %d for VST2.x", s)
		return 0
	}
}

func (p *Vst2x) SetParameter(index int, value float32) bool {
	if index < 0 || index >= p.effect.NumParams() {
		log.Errorf("Parameter index %d out of range for plugin '%s' (%d parameters)", index, p.name, p.effect.NumParams())
		return false
	}
	p.effect.SetParameter(int32(index), value)
	return true
}

// SetProgram selects a built-in program and confirms the module switched.
func (p *Vst2x) SetProgram(program int) error {
	if program < 0 || program >= p.effect.NumPrograms() {
		return fmt.Errorf("cannot load program, plugin '%s' only has %d programs", p.name, p.effect.NumPrograms()-1)
	}
	if result := p.effect.Dispatch(vst2.EffSetProgram, 0, int64(program), nil, 0); result != 0 {
		return fmt.Errorf("plugin '%s' failed to load program number %d", p.name, program)
	}
	if current := p.effect.Dispatch(vst2.EffGetProgram, 0, 0, nil, 0); current != int64(program) {
		return fmt.Errorf("plugin '%s' claimed to load program %d successfully, but current program is %d",
			p.name, program, current)
	}
	return nil
}

// SetChunk hands opaque preset or bank data to the module.
func (p *Vst2x) SetChunk(chunk []byte, isPreset bool) error {
	if !p.effect.Flags().Has(vst2.FlagProgramChunks) {
		return fmt.Errorf("plugin '%s' does not accept program chunks", p.name)
	}
	var index int32
	if isPreset {
		index = 1
	}
	p.effect.Dispatch(vst2.EffSetChunk, index, int64(len(chunk)), chunk, 0)
	return nil
}

func (p *Vst2x) Info() Info {
	info := Info{
		Name:       p.name,
		Location:   p.location,
		Variant:    VariantVst2x,
		Type:       p.typ,
		NumInputs:  p.numInputs,
		NumOutputs: p.numOutputs,
	}
	if p.effect == nil {
		return info
	}

	p.effect.Dispatch(vst2.EffGetVendorString, 0, 0, &info.Vendor, 0)
	info.Version = int(p.effect.Dispatch(vst2.EffGetVendorVersion, 0, 0, nil, 0))
	info.UniqueID = vst2.IDToString(p.effect.UniqueID())
	category := p.effect.Dispatch(vst2.EffGetPlugCategory, 0, 0, nil, 0)
	info.Description = fmt.Sprintf("%s, category %d, version %d", p.typ, category, p.effect.Version())

	if p.isShell && p.shellID == 0 {
		for {
			var name string
			id := p.effect.Dispatch(vst2.EffShellGetNextPlugin, 0, 0, &name, 0)
			if id == 0 || name == "" {
				break
			}
			info.SubPlugins = append(info.SubPlugins, fmt.Sprintf("'%s' (%s)", vst2.IDToString(int32(id)), name))
		}
		return info
	}

	for i := range p.effect.NumParams() {
		var name string
		p.effect.Dispatch(vst2.EffGetParamName, int32(i), 0, &name, 0)
		info.Parameters = append(info.Parameters, ParameterInfo{
			Index: i,
			Name:  name,
			Value: p.effect.GetParameter(int32(i)),
		})
	}
	for i := range p.effect.NumPrograms() {
		var name string
		p.effect.Dispatch(vst2.EffGetProgramNameIndexed, int32(i), 0, &name, 0)
		info.Programs = append(info.Programs, name)
	}
	p.effect.Dispatch(vst2.EffGetProgramName, 0, 0, &info.Program, 0)

	info.CanDo = make(map[string]string, len(vst2.CommonPluginCanDos))
	for _, what := range vst2.CommonPluginCanDos {
		info.CanDo[what] = vst2.CanDoResultString(p.effect.Dispatch(vst2.EffCanDo, 0, 0, what, 0))
	}
	return info
}

func (p *Vst2x) Close() {
	if p.effect != nil {
		log.Debugf("Suspending plugin '%s'", p.name)
		p.effect.Dispatch(vst2.EffStopProcess, 0, 0, nil, 0)
		p.effect.Dispatch(vst2.EffMainsChanged, 0, 0, nil, 0)
		p.effect.Dispatch(vst2.EffClose, 0, 0, nil, 0)
		p.effect = nil
	}
	p.state = StateClosed
}

// PlatformExtension is the file extension of VST 2.x modules on this
// platform, without the dot.
func PlatformExtension() string {
	switch runtime.GOOS {
	case "darwin":
		return "vst"
	case "windows":
		return "dll"
	default:
		return "so"
	}
}

// DefaultLocations are searched after the plugin root: the working
// directory, ~/.vst and $VST_PATH.
func DefaultLocations() []string {
	var locations []string
	if wd, err := os.Getwd(); err == nil {
		locations = append(locations, wd)
	}
	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".vst"))
	}
	if env := os.Getenv("VST_PATH"); env != "" {
		locations = append(locations, filepath.SplitList(env)...)
	}
	return locations
}

// modulePath builds the module file path from a name and location,
// appending the platform extension when the name lacks it.
func modulePath(name, location string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), PlatformExtension()) {
		name += "." + PlatformExtension()
	}
	return filepath.Join(location, name)
}

// findVst2x returns the directory containing the named module, or the
// empty string with ok set for an absolute path that exists.
func findVst2x(name, root string) (location string, ok bool) {
	search, _ := vst2.ParseShellName(name)

	if filepath.IsAbs(search) {
		if fileExists(search) {
			return filepath.Dir(search), true
		}
		return "", false
	}

	locations := DefaultLocations()
	if root != "" {
		locations = append([]string{root}, locations...)
	}
	for _, loc := range locations {
		path := modulePath(search, loc)
		log.Debugf("Looking for plugin '%s' in '%s'", search, loc)
		if fileExists(path) {
			return loc, true
		}
	}
	return "", false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
