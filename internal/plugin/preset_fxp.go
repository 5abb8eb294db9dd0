// SPDX-License-Identifier: MIT
package plugin

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/teragonaudio/MrsWatson-sub000/internal/log"
	"github.com/teragonaudio/MrsWatson-sub000/internal/vst2"
)

// FXP chunk magics, all big-endian four-character codes.
const (
	fxpChunkMagic   = "CcnK"
	fxpRegularMagic = "FxCk"
	fxpOpaqueMagic  = "FPCh"
	fxpNameLength   = 28
)

// fxpHeader is the fixed part of an .fxp file.
type fxpHeader struct {
	ChunkMagic [4]byte
	ByteSize   int32
	FxMagic    [4]byte
	Version    int32
	FxID       int32
	FxVersion  int32
	NumParams  int32
	Name       [fxpNameLength]byte
}

// FxpPreset is a VST program file holding either a list of parameter
// values or an opaque chunk.
type FxpPreset struct {
	name string
	data []byte

	programName string
}

func NewFxpPreset(name string) *FxpPreset {
	return &FxpPreset{name: name}
}

func (p *FxpPreset) Name() string             { return p.name }
func (p *FxpPreset) Variant() PresetVariant   { return PresetFxp }
func (p *FxpPreset) CompatibleVariants() uint { return 1 << uint(VariantVst2x) }

// ProgramName is the program name stored in the file, set by Load.
func (p *FxpPreset) ProgramName() string { return p.programName }

func (p *FxpPreset) Open() error {
	data, err := os.ReadFile(p.name)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPresetLoad, err)
	}
	p.data = data
	return nil
}

func (p *FxpPreset) Load(plug Plugin) error {
	loader, ok := plug.(ChunkLoader)
	if !ok {
		return fmt.Errorf("%w: plugin '%s' cannot load FXP presets", ErrIncompatiblePreset, plug.Name())
	}
	if p.data == nil {
		return fmt.Errorf("%w: preset '%s' was not opened", ErrPresetLoad, p.name)
	}

	r := bytes.NewReader(p.data)
	var hdr fxpHeader
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return fmt.Errorf("%w: short FXP header: %w", ErrPresetLoad, err)
	}
	if string(hdr.ChunkMagic[:]) != fxpChunkMagic {
		return fmt.Errorf("%w: preset '%s' has bad chunk magic", ErrPresetLoad, p.name)
	}

	if id := loader.UniqueID(); hdr.FxID != id {
		return fmt.Errorf("%w: preset '%s' is for plugin ID '%s', not '%s'",
			ErrPresetLoad, p.name, vst2.IDToString(hdr.FxID), vst2.IDToString(id))
	}
	p.programName = string(bytes.TrimRight(hdr.Name[:], "\x00"))
	log.Debugf("Preset '%s' program name is '%s', version %d", p.name, p.programName, hdr.FxVersion)

	switch string(hdr.FxMagic[:]) {
	case fxpRegularMagic:
		return p.loadParameters(r, plug, int(hdr.NumParams))
	case fxpOpaqueMagic:
		return p.loadChunk(r, loader)
	default:
		return fmt.Errorf("%w: preset '%s' has unknown FXP type '%s'", ErrPresetLoad, p.name, hdr.FxMagic[:])
	}
}

func (p *FxpPreset) loadParameters(r *bytes.Reader, plug Plugin, numParams int) error {
	if numParams < 0 {
		return fmt.Errorf("%w: preset '%s' has negative parameter count %d", ErrPresetLoad, p.name, numParams)
	}
	if int64(numParams)*4 > int64(r.Len()) {
		return fmt.Errorf("%w: preset '%s' declares %d parameters but holds %d bytes",
			ErrPresetLoad, p.name, numParams, r.Len())
	}
	values := make([]float32, numParams)
	if err := binary.Read(r, binary.BigEndian, values); err != nil {
		return fmt.Errorf("%w: preset '%s' is truncated: %w", ErrPresetLoad, p.name, err)
	}
	for i, v := range values {
		if !plug.SetParameter(i, v) {
			return fmt.Errorf("%w: preset '%s' parameter %d", ErrParameterRejected, p.name, i)
		}
	}
	return nil
}

func (p *FxpPreset) loadChunk(r *bytes.Reader, loader ChunkLoader) error {
	var size int32
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return fmt.Errorf("%w: preset '%s' has no chunk size: %w", ErrPresetLoad, p.name, err)
	}
	if size < 0 {
		return fmt.Errorf("%w: preset '%s' has negative chunk size", ErrPresetLoad, p.name)
	}
	if int64(size) > int64(r.Len()) {
		return fmt.Errorf("%w: preset '%s' declares a %d byte chunk but holds %d bytes",
			ErrPresetLoad, p.name, size, r.Len())
	}
	chunk := make([]byte, size)
	if _, err := io.ReadFull(r, chunk); err != nil {
		return fmt.Errorf("%w: preset '%s' chunk is truncated: %w", ErrPresetLoad, p.name, err)
	}
	if err := loader.SetChunk(chunk, true); err != nil {
		return fmt.Errorf("%w: %w", ErrPresetLoad, err)
	}
	return nil
}

func (p *FxpPreset) Close() {
	p.data = nil
}

// EncodeFxp writes parameter values as a regular FXP program. It is the
// inverse of loading an FxCk preset.
func EncodeFxp(w io.Writer, fxID, fxVersion int32, programName string, params []float32) error {
	hdr := fxpHeader{
		Version:   1,
		FxID:      fxID,
		FxVersion: fxVersion,
		NumParams: int32(len(params)),
	}
	copy(hdr.ChunkMagic[:], fxpChunkMagic)
	copy(hdr.FxMagic[:], fxpRegularMagic)
	copy(hdr.Name[:], programName)
	// byteSize excludes the chunk magic and the size field itself.
	hdr.ByteSize = int32(binary.Size(hdr) - 8 + 4*len(params))

	if err := binary.Write(w, binary.BigEndian, &hdr); err != nil {
		return err
	}
	return binary.Write(w, binary.BigEndian, params)
}
