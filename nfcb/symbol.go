package nfcb

import (
	"math"

	"github.com/sliceratwork/nfcb-decoder/signal"
)

// Pattern is the physical-layer interpretation of one symbol period.
type Pattern int

const (
	// PatternInvalid marks a SymbolStatus that was never filled in, e.g.
	// when the sample buffer ran out before a symbol completed.
	PatternInvalid Pattern = iota
	PatternL               // modulated-low: bit 0
	PatternH               // unmodulated-high: bit 1
)

func (p Pattern) String() string {
	switch p {
	case PatternL:
		return "L"
	case PatternH:
		return "H"
	default:
		return "?"
	}
}

// SymbolStatus is the last symbol the bit-clock recovery loop decided.
type SymbolStatus struct {
	Pattern   Pattern
	Value     int // 0 for PatternL, 1 for PatternH
	StartTime uint32
	EndTime   uint32
}

// stepSymbol advances the locked rate's bit-clock recovery loop by one
// sample. It returns a completed SymbolStatus on the sample where one is
// decided, and false on every other sample.
func (d *Decoder) stepSymbol(status *signal.Status, clock uint32) (SymbolStatus, bool) {
	p := &d.rates[d.lockedRate]
	m := &d.mod[d.lockedRate]

	updateEdge(status, *p, m, clock)

	// Resync: track the strongest significant edge (rising or falling) inside
	// the open window, re-centering symbolEndTime every time a stronger one
	// shows up.
	if clock > m.searchStartTime && clock < m.searchEndTime {
		absEdge := math.Abs(m.edgeDetector)
		if absEdge > edgeSignificance && (!m.hasPeak || absEdge > m.peakValue) && m.modulationDeep > d.minModThreshold {
			m.peakValue = absEdge
			m.peakTime = clock
			m.hasPeak = true
			m.symbolEndTime = clock - p.Period8
			m.syncSet = false
		}
	}

	if !m.syncSet {
		m.symbolStartTime = m.symbolEndTime
		m.symbolEndTime += p.Period1
		m.syncTime = m.symbolStartTime + p.Period2
		m.syncSet = true
	}

	if clock != m.syncTime {
		return SymbolStatus{}, false
	}

	sym := SymbolStatus{
		StartTime: m.symbolStartTime,
		EndTime:   m.symbolEndTime,
	}
	if m.modulationDeep > d.minModThreshold {
		sym.Pattern = PatternL
		sym.Value = 0
	} else {
		sym.Pattern = PatternH
		sym.Value = 1
	}

	m.searchStartTime = m.symbolEndTime - p.Period4
	m.searchEndTime = m.symbolEndTime + p.Period4
	m.syncSet = false
	m.hasPeak = false

	return sym, true
}
