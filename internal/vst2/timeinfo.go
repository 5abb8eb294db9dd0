// SPDX-License-Identifier: MIT
package vst2

// TimeInfoFlags are the kVstXxx bits of TimeInfo.Flags. The same bits are
// passed in the value argument of HostGetTime to request fields.
type TimeInfoFlags int32

const (
	TransportChanged TimeInfoFlags = 1
	TransportPlaying TimeInfoFlags = 1 << 1
	CycleActive      TimeInfoFlags = 1 << 2
	TransportRecord  TimeInfoFlags = 1 << 3
	NanosValid       TimeInfoFlags = 1 << 8
	PpqPosValid      TimeInfoFlags = 1 << 9
	TempoValid       TimeInfoFlags = 1 << 10
	BarsValid        TimeInfoFlags = 1 << 11
	CyclePosValid    TimeInfoFlags = 1 << 12
	TimeSigValid     TimeInfoFlags = 1 << 13
	SmpteValid       TimeInfoFlags = 1 << 14
	ClockValid       TimeInfoFlags = 1 << 15
)

func (f TimeInfoFlags) Has(flag TimeInfoFlags) bool { return f&flag != 0 }

// TimeInfo mirrors VstTimeInfo. Only fields whose valid bit is set in Flags
// carry meaning.
type TimeInfo struct {
	SamplePos          float64
	SampleRate         float64
	NanoSeconds        float64
	PpqPos             float64
	Tempo              float64
	BarStartPos        float64
	CycleStartPos      float64
	CycleEndPos        float64
	TimeSigNumerator   int32
	TimeSigDenominator int32
	SmpteOffset        int32
	SmpteFrameRate     int32
	SamplesToNextClock int32
	Flags              TimeInfoFlags
}
