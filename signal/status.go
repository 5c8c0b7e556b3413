// Package signal implements the reduced "host" contract that the nfcb core
// borrows: a fixed-length ring buffer of envelope samples, a monotonic
// sample clock, and the exponential-smoothing power average that gates
// carrier-present detection. The full AGC / envelope-recovery front end that
// feeds this buffer on real hardware is out of scope here.
package signal

import "fmt"

// Smoothing rates (per second) for the three exponential averages Configure
// sets up. A new sample is weighted by tau/sampleRate, so a larger tau makes
// a faster average: the power average is the slowest of the three, and the
// signal and variance averages share a rate 100 times faster.
const (
	powerAverageTau    = 1e3
	signalAverageTau   = 1e5
	varianceAverageTau = 1e5
)

// BaseFrequency is the NFC carrier frequency in Hz (13.56 MHz).
const BaseFrequency = 13.56e6

// Status is the minimal envelope-sample host state: the ring buffer, the
// sample clock that indexes it, and the running power average used to gate
// "carrier present" decisions. Ring indices are always
// (offset + signalClock) & mask, so Length must be a power of two.
type Status struct {
	data []float64
	mask uint32

	sampleRate     float64
	sampleTimeUnit float64

	signalClock uint32

	powerAverage    float64
	signalAverage   float64
	varianceAverage float64

	powerLevelThreshold float64

	wPower0, wPower1       float64
	wSignal0, wSignal1     float64
	wVariance0, wVariance1 float64
}

// New creates a Status with a power-of-two ring buffer of the given length
// sampling at sampleRate samples/second. It panics if length is not a power
// of two, since the ring indexing relies on masking rather than modulo.
func New(length int, sampleRate float64) *Status {
	if length <= 0 || length&(length-1) != 0 {
		panic(fmt.Sprintf("signal: buffer length %d is not a power of two", length))
	}

	s := &Status{
		data: make([]float64, length),
		mask: uint32(length - 1),
	}
	s.Configure(sampleRate)
	return s
}

// Configure (re)computes the sample rate, ETU scale, and the three W0/W1
// smoothing-weight pairs for the power, signal, and variance averages.
func (s *Status) Configure(sampleRate float64) {
	s.sampleRate = sampleRate
	s.sampleTimeUnit = sampleRate / BaseFrequency

	s.wPower0 = 1 - powerAverageTau/sampleRate
	s.wPower1 = 1 - s.wPower0
	s.wSignal0 = 1 - signalAverageTau/sampleRate
	s.wSignal1 = 1 - s.wSignal0
	s.wVariance0 = 1 - varianceAverageTau/sampleRate
	s.wVariance1 = 1 - s.wVariance0

	s.powerAverage = 0
	s.signalAverage = 0
	s.varianceAverage = 0
	s.signalClock = 0
}

// SampleTimeUnit returns samples per carrier cycle (1/13.56 MHz); one ETU is
// 128 carrier cycles, so SampleTimeUnit()*128 is samples per ETU.
func (s *Status) SampleTimeUnit() float64 { return s.sampleTimeUnit }

// SampleRate returns the configured sample rate in Hz.
func (s *Status) SampleRate() float64 { return s.sampleRate }

// Length returns the ring buffer length (always a power of two).
func (s *Status) Length() int { return len(s.data) }

// Mask returns length-1, the bitmask used for ring indexing.
func (s *Status) Mask() uint32 { return s.mask }

// Clock returns the current monotonic sample clock.
func (s *Status) Clock() uint32 { return s.signalClock }

// At reads the sample stored at absolute clock index idx, wrapped into the
// ring. idx may be any uint32, including values computed by subtracting a
// delay from the current clock — wraparound is intentional.
func (s *Status) At(idx uint32) float64 {
	return s.data[idx&s.mask]
}

// PowerAverage returns the envelope power average, the most heavily
// smoothed of the three averages.
func (s *Status) PowerAverage() float64 { return s.powerAverage }

// SignalAverage returns the envelope average, smoothed more lightly than
// PowerAverage.
func (s *Status) SignalAverage() float64 { return s.signalAverage }

// VarianceAverage returns the variance average around SignalAverage,
// smoothed at the same rate as SignalAverage.
func (s *Status) VarianceAverage() float64 { return s.varianceAverage }

// PowerLevelThreshold returns the minimum PowerAverage required before the
// SOF detector will consider the envelope as carrying a carrier at all.
func (s *Status) PowerLevelThreshold() float64 { return s.powerLevelThreshold }

// SetPowerLevelThreshold sets the carrier-present gate.
func (s *Status) SetPowerLevelThreshold(v float64) { s.powerLevelThreshold = v }

// PushSample writes one new envelope sample into the ring, advances the
// sample clock, and updates the three exponential averages. Returns the
// absolute clock index the sample was written at (the pre-advance clock).
func (s *Status) PushSample(v float64) uint32 {
	idx := s.signalClock
	s.data[idx&s.mask] = v

	s.powerAverage = s.wPower0*s.powerAverage + s.wPower1*v
	s.signalAverage = s.wSignal0*s.signalAverage + s.wSignal1*v
	diff := v - s.signalAverage
	s.varianceAverage = s.wVariance0*s.varianceAverage + s.wVariance1*diff*diff

	s.signalClock++
	return idx
}
