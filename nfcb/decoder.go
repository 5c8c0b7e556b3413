// Package nfcb implements the DSP core of an NFC-B (ISO/IEC 14443-3 Type B)
// Poll-side demodulator and frame decoder: modulation detection, bit-clock
// recovery, byte framing, and REQB/WUPB recognition with CRC-B
// verification. Sample acquisition, envelope/power smoothing upstream of
// the ring buffer, and LISTEN-side (PICC->PCD) BPSK decoding are out of
// scope.
package nfcb

import (
	"log"

	"github.com/sliceratwork/nfcb-decoder/signal"
)

// Decoder is the façade: one concrete owning value with private fields,
// operations exposed as methods. No pimpl indirection.
type Decoder struct {
	sampleRate   float64
	stu          float64 // sample-time-unit: samples per 13.56MHz carrier cycle
	bufferLength uint32

	rates [4]BitrateParams
	mod   [4]ModulationStatus

	minModThreshold float64
	maxModThreshold float64

	locked     bool
	lockedRate Rate

	stream       StreamStatus
	frame        FrameStatus
	protocol     ProtocolStatus
	chainedFlags uint8

	cfg     Config
	metrics *Metrics
}

// NewDecoder builds a Decoder from cfg. Pass DefaultConfig() (or a loaded
// Config with defaults applied) rather than a zero-value Config.
func NewDecoder(cfg Config) *Decoder {
	d := &Decoder{
		cfg:             cfg,
		minModThreshold: cfg.MinimumModulationThreshold,
		maxModThreshold: cfg.MaximumModulationThreshold,
	}
	if cfg.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// Configure (re)initializes the per-rate timing tables and session
// defaults against a host ring buffer of bufferLength samples at
// sampleRate samples/second. It returns ErrBufferTooShort if bufferLength
// isn't longer than Rate424k's cumulative detection delay plus one of its
// symbol periods, the largest delay in the rate table.
func (d *Decoder) Configure(sampleRate float64, bufferLength int) error {
	if bufferLength <= 0 {
		bufferLength = d.cfg.SignalBufferLength
	}

	d.sampleRate = sampleRate
	d.stu = sampleRate / signal.BaseFrequency
	d.bufferLength = uint32(bufferLength)

	d.rates = buildBitrateTable(d.stu, d.bufferLength)

	slowest := d.rates[Rate424k]
	if required := slowest.SymbolDelayDetect + slowest.Period1; d.bufferLength <= required {
		return ErrBufferTooShort
	}

	d.protocol = defaultProtocolStatus(d.stu)
	if d.cfg.MaxFrameSize > 0 {
		d.protocol.MaxFrameSize = d.cfg.MaxFrameSize
	} else {
		d.cfg.MaxFrameSize = d.protocol.MaxFrameSize
	}

	d.resetSearch()
	d.frame = FrameStatus{}
	d.chainedFlags = 0

	log.Printf("[nfcb] configured: sampleRate=%.0f bufferLength=%d sampleTimeUnit=%.4f",
		sampleRate, bufferLength, d.stu)
	return nil
}

// sampleTimeUnit returns the samples-per-carrier-cycle ratio computed by
// Configure, used to scale every ETU-based timing constant.
func (d *Decoder) sampleTimeUnit() float64 { return d.stu }

// SetModulationThreshold sets the minimum envelope notch depth considered
// genuine modulation and the maximum depth still considered NFC-B rather
// than interference.
func (d *Decoder) SetModulationThreshold(min, max float64) {
	d.minModThreshold = min
	d.maxModThreshold = max
}

// Detect feeds samples into the SOF search and returns true as soon as a
// lock is acquired, leaving any remaining samples in the batch unconsumed
// by the symbol tracker (the caller is expected to switch to Decode once
// Detect returns true). It returns false, having consumed the whole batch,
// if no SOF was found. If the decoder is already locked it returns true
// immediately without consuming anything.
func (d *Decoder) Detect(status *signal.Status, samples []float64) bool {
	if d.locked {
		return true
	}
	for _, v := range samples {
		clock := status.PushSample(v)
		if d.stepSOF(status, clock) {
			return true
		}
	}
	return false
}

// Decode consumes samples one at a time, driving SOF search, symbol
// tracking, and byte framing, and returns every frame completed during
// this call in emission order.
func (d *Decoder) Decode(status *signal.Status, samples []float64) []Frame {
	var frames []Frame

	for _, v := range samples {
		clock := status.PushSample(v)

		if !d.locked {
			d.stepSOF(status, clock)
			continue
		}

		sym, ok := d.stepSymbol(status, clock)
		if !ok {
			continue
		}

		outcome := d.stepFramer(sym)
		if outcome == framerContinue {
			continue
		}

		if len(d.stream.bytes) >= 1 {
			truncated := outcome == framerTruncated || outcome == framerStreamError
			frameEnd := sym.EndTime - d.rates[d.lockedRate].SymbolDelayDetect
			f := d.dispatchFrame(frameEnd, truncated)
			frames = append(frames, f)
			if d.metrics != nil {
				d.metrics.recordFrame(f)
			}
			d.decodeListenFrame()
		} else {
			d.resetSearch()
		}
		d.stream.reset()
	}

	return frames
}

// acquireLock finalizes a SOF commit: locks the rate, records the frame
// start, and bootstraps the symbol tracker's first resync window around
// the SOF's trailing edge.
func (d *Decoder) acquireLock(status *signal.Status, rate Rate, frameStart, symbolStart, symbolEnd uint32) {
	d.locked = true
	d.lockedRate = rate

	d.frame.Type = FrameTypePoll
	d.frame.FrameStart = frameStart

	m := &d.mod[rate]
	m.symbolStartTime = symbolStart
	m.symbolEndTime = symbolEnd
	m.searchStartTime = symbolEnd - d.rates[rate].Period4
	m.searchEndTime = symbolEnd + d.rates[rate].Period4
	m.syncSet = false
	m.hasPeak = false

	d.stream.reset()

	if d.metrics != nil {
		d.metrics.sofLocks.Inc()
	}
	log.Printf("[nfcb] SOF locked: rate=%s frameStart=%d", rate, frameStart)

	_ = status // status is only needed by callers that want to read it post-lock; kept for symmetry with stepSOF's signature.
}

// resetSearch releases the bitrate lock, zeroes every rate's DSP state, and
// discards any in-progress byte stream, returning the decoder to SOF
// search.
func (d *Decoder) resetSearch() {
	d.locked = false
	d.lockedRate = 0
	for i := range d.mod {
		d.mod[i].reset()
	}
	d.stream.reset()
	d.frame.reset()

	if d.metrics != nil {
		d.metrics.resets.Inc()
	}
}
