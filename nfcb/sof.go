package nfcb

import (
	"math"

	"github.com/sliceratwork/nfcb-decoder/signal"
)

// sofStage is the tagged variant the SOF detector's state machine steps
// through. sofBegin doubles as the "no lock in progress" null state: it is
// the zero value, it is where reset() always lands, and search never times
// out there (only sofAwaitingRise/sofAwaitingFall have a bounded window).
// The DAG is sofBegin -> sofAwaitingRise -> sofAwaitingFall -> (locked),
// with any state falling back to sofBegin on error.
type sofStage int

const (
	sofBegin        sofStage = iota
	sofAwaitingRise          // was SOF_IDLE: SOF low in progress, waiting for the rising edge that ends it
	sofAwaitingFall          // was SOF_END: SOF high in progress, waiting for the falling edge that ends it
)

// edgeSignificance is the minimum |edgeDetector| considered a real edge
// rather than noise.
const edgeSignificance = 0.001

// stepSOF advances the rate106k SOF detector by one sample. It is a no-op
// (beyond updating the edge detector) while the carrier is below threshold
// or the envelope is too deep to be NFC-B; it returns true exactly once,
// on the sample where the SOF locks, at which point d.frame/
// d.mod[Rate106k]/d.locked have already been set up for the symbol tracker.
func (d *Decoder) stepSOF(status *signal.Status, clock uint32) bool {
	p := &d.rates[Rate106k]
	m := &d.mod[Rate106k]

	updateEdge(status, *p, m, clock)

	if status.PowerAverage() <= status.PowerLevelThreshold() {
		return false
	}

	if m.modulationDeep > d.maxModThreshold {
		m.reset()
		return false
	}

	switch m.stage {
	case sofBegin:
		d.sofBeginStep(m, clock, p)
	case sofAwaitingRise:
		d.sofAwaitingRiseStep(m, clock, p)
	case sofAwaitingFall:
		return d.sofAwaitingFallStep(status, m, clock, p)
	}
	return false
}

// sofBeginStep searches for the falling edge that begins the SOF low
// period, tracking the running peak of edgeDetector. The peak commits
// period4 samples after it was seen, since this state has no bounded
// search window.
func (d *Decoder) sofBeginStep(m *ModulationStatus, clock uint32, p *BitrateParams) {
	if m.edgeDetector > edgeSignificance && m.modulationDeep > d.minModThreshold {
		if !m.hasPeak || m.edgeDetector > m.peakValue {
			m.peakValue = m.edgeDetector
			m.peakTime = clock
			m.hasPeak = true
		}
	}

	if m.hasPeak && clock == m.peakTime+p.Period4 {
		m.symbolStartTime = m.peakTime - p.Period8
		m.searchStartTime = m.peakTime + 10*p.Period1 - p.Period2
		m.searchEndTime = m.peakTime + 11*p.Period1 + p.Period2
		m.stage = sofAwaitingRise
		m.hasPeak = false
	}
}

// sofAwaitingRiseStep waits for the rising edge (negative edgeDetector
// peak) that ends the SOF low period. searchEndTime is both the window's
// upper bound and the commit timer: every time a stronger peak is seen,
// searchEndTime is pushed out to clock+period4, so the window grows to
// keep covering the commit point instead of a fixed bound racing a
// separately tracked peak+period4 deadline. That matters because the edge
// detector's spike decays gradually rather than snapping back to zero, so
// a qualifying edge arriving near the tail of the original window still
// needs those trailing period4 samples to decay below significance before
// the next stage can trust a flat signal again — a fixed window bound
// would read that decay as a bogus modulation change and reset. A
// significant edge outside the (current) window means the low period
// wasn't flat, which isn't NFC-B's SOF — reset. Closing with no tracked
// peak means the expected edge never arrived, so reset too.
func (d *Decoder) sofAwaitingRiseStep(m *ModulationStatus, clock uint32, p *BitrateParams) {
	if clock > m.searchStartTime && clock <= m.searchEndTime {
		if m.edgeDetector < -edgeSignificance && (!m.hasPeak || m.edgeDetector < m.peakValue) {
			m.peakValue = m.edgeDetector
			m.peakTime = clock
			m.hasPeak = true
			m.searchEndTime = clock + p.Period4
		}

		if clock == m.searchEndTime {
			if m.hasPeak {
				m.searchStartTime = m.peakTime + 2*p.Period1 - p.Period2
				m.searchEndTime = m.peakTime + 3*p.Period1 + p.Period2
				m.stage = sofAwaitingFall
				m.hasPeak = false
			} else {
				m.reset()
			}
		}
		return
	}

	if math.Abs(m.edgeDetector) > edgeSignificance {
		m.reset()
	}
}

// sofAwaitingFallStep waits for the falling edge (positive edgeDetector
// peak) that ends the SOF high period, using the same dynamically
// extended searchEndTime as sofAwaitingRiseStep — except the extension is
// period8, not period4, matching the tighter margin the falling edge gets
// before the lock commits. There's no "significant edge outside the
// window" reset here: once the SOF low period has been confirmed, noise on
// the high period is tolerated as long as the falling edge itself still
// lands and a peak is found. On commit it finalizes the lock:
// symbolEndTime, frameStart, and the selected rate are set, and the
// detector falls back to sofBegin for the next search. Returns true
// exactly on the commit sample.
func (d *Decoder) sofAwaitingFallStep(status *signal.Status, m *ModulationStatus, clock uint32, p *BitrateParams) bool {
	if clock <= m.searchStartTime || clock > m.searchEndTime {
		return false
	}

	if m.edgeDetector > edgeSignificance && (!m.hasPeak || m.edgeDetector > m.peakValue) {
		m.peakValue = m.edgeDetector
		m.peakTime = clock
		m.hasPeak = true
		m.searchEndTime = clock + p.Period8
	}

	if clock != m.searchEndTime {
		return false
	}

	if !m.hasPeak {
		m.reset()
		return false
	}

	symbolStartTime := m.symbolStartTime
	symbolEndTime := m.peakTime - p.Period8
	frameStart := symbolStartTime - p.SymbolDelayDetect

	m.reset()

	d.acquireLock(status, Rate106k, frameStart, symbolStartTime, symbolEndTime)
	return true
}
