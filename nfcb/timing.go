package nfcb

import (
	"math"

	"github.com/sliceratwork/nfcb-decoder/signal"
)

// Rate identifies one of the four NFC-B Poll bitrates. The table carries
// timing constants for all four, but the SOF detector and symbol tracker
// only ever operate on Rate106k, which stepSOF addresses directly rather
// than looping over rates. Rate212k..Rate848k are reserved so a future SOF
// detector for those rates has somewhere to put its constants.
type Rate int

const (
	Rate106k Rate = iota
	Rate212k
	Rate424k
	Rate848k
)

func (r Rate) String() string {
	switch r {
	case Rate106k:
		return "106k"
	case Rate212k:
		return "212k"
	case Rate424k:
		return "424k"
	case Rate848k:
		return "848k"
	default:
		return "unknown"
	}
}

// BitrateParams holds the immutable per-rate timing constants derived from
// the sample clock: samples-per-symbol at full, half, quarter and eighth
// symbol intervals, the cumulative detection delay, and the four ring
// offsets used to locate "now", "one symbol ago", "a quarter symbol ago" and
// "an eighth symbol ago" relative to the current sample clock.
type BitrateParams struct {
	SymbolsPerSecond float64

	Period1 uint32 // samples per symbol
	Period2 uint32 // samples per half symbol
	Period4 uint32 // samples per quarter symbol
	Period8 uint32 // samples per eighth symbol

	SymbolDelayDetect uint32 // cumulative delay to this rate's detection point

	OffsetSignalIndex uint32 // ring offset for "now"
	OffsetSymbolIndex uint32 // ring offset for "one symbol ago"
	OffsetFilterIndex uint32 // ring offset for "one quarter symbol ago"
	OffsetDetectIndex uint32 // ring offset for "one eighth symbol ago"
}

// buildBitrateTable computes BitrateParams for Rate106k..Rate424k against a
// ring buffer of the given length. Rate848k is intentionally left zeroed;
// nothing in this decoder ever runs SOF search at that rate.
func buildBitrateTable(sampleTimeUnit float64, bufferLength uint32) [4]BitrateParams {
	var table [4]BitrateParams
	var cumulativeDelay uint32

	for r := Rate106k; r <= Rate424k; r++ {
		divisor := uint32(128) >> uint(r)

		// Each period is rounded independently from sampleTimeUnit rather than
		// derived by dividing Period1, since halving an already-rounded value
		// can drift by a sample from rounding the exact fraction directly.
		p := BitrateParams{
			SymbolsPerSecond: signal.BaseFrequency / float64(divisor),
			Period1:          uint32(math.Round(sampleTimeUnit * float64(divisor))),
			Period2:          uint32(math.Round(sampleTimeUnit * float64(divisor>>1))),
			Period4:          uint32(math.Round(sampleTimeUnit * float64(divisor>>2))),
			Period8:          uint32(math.Round(sampleTimeUnit * float64(divisor>>3))),

			SymbolDelayDetect: cumulativeDelay,
		}

		p.OffsetSignalIndex = bufferLength - p.SymbolDelayDetect
		p.OffsetSymbolIndex = bufferLength - p.SymbolDelayDetect - p.Period1
		p.OffsetFilterIndex = bufferLength - p.SymbolDelayDetect - p.Period4
		p.OffsetDetectIndex = bufferLength - p.SymbolDelayDetect - p.Period8

		table[r] = p
		cumulativeDelay = p.SymbolDelayDetect + p.Period1
	}

	return table
}
