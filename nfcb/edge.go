package nfcb

import "github.com/sliceratwork/nfcb-decoder/signal"

// ModulationStatus is the per-rate mutable DSP state: the two moving-window
// integrators, the last computed edge/depth values, and the peak trackers
// shared by the SOF detector and the symbol tracker. The two phases never
// run concurrently on the same rate, so one struct carries both.
type ModulationStatus struct {
	filterIntegrate float64
	detectIntegrate float64

	edgeDetector   float64
	modulationDeep float64

	stage sofStage

	// Peak tracker, reused by every SOF stage and by the symbol resync
	// window. hasPeak marks "no peak tracked yet" explicitly instead of a
	// NaN sentinel.
	hasPeak   bool
	peakTime  uint32
	peakValue float64

	searchStartTime uint32
	searchEndTime   uint32

	symbolStartTime uint32
	symbolEndTime   uint32

	// symbolSyncTime is optional-bearing (syncSet) rather than NaN-sentinel.
	syncSet  bool
	syncTime uint32
}

// reset zeroes the per-rate DSP state and releases the rate's search
// progress back to sofBegin.
func (m *ModulationStatus) reset() {
	*m = ModulationStatus{}
}

// updateEdge advances the two moving integrators by one sample and
// recomputes edgeDetector and modulationDeep. clock is the absolute ring
// index the new sample was just written at (the value
// signal.Status.PushSample returned).
func updateEdge(status *signal.Status, p BitrateParams, m *ModulationStatus, clock uint32) {
	sample := status.At(p.OffsetSignalIndex + clock)
	filterSample := status.At(p.OffsetFilterIndex + clock)
	detectSample := status.At(p.OffsetDetectIndex + clock)

	m.filterIntegrate += sample - filterSample
	m.detectIntegrate += sample - detectSample

	if p.Period4 > 0 && p.Period8 > 0 {
		m.edgeDetector = m.filterIntegrate/float64(p.Period4) - m.detectIntegrate/float64(p.Period8)
	}

	if pa := status.PowerAverage(); pa != 0 {
		m.modulationDeep = (pa - sample) / pa
	} else {
		m.modulationDeep = 0
	}
}
