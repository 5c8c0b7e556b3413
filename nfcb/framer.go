package nfcb

// StreamStatus is the in-progress byte being assembled from decoded
// symbols: a 9-bit shift position (0 = start bit, 1..8 = data bits
// LSB-first, 9 = stop bit) plus the byte buffer accumulated so far for the
// current frame. Reset at every frame boundary.
type StreamStatus struct {
	bits  int
	data  byte
	bytes []byte
}

func (s *StreamStatus) reset() {
	s.bits = 0
	s.data = 0
	s.bytes = s.bytes[:0]
}

// framerOutcome is what stepFramer decided happened to the byte stream on
// this symbol.
type framerOutcome int

const (
	framerContinue    framerOutcome = iota
	framerEOF                       // 10 consecutive Ls: end of frame
	framerTruncated                 // maxFrameSize reached before EOF
	framerStreamError               // bad start/stop bit position
)

// stepFramer advances the byte framer by one decoded symbol. The EOF check
// here is a heuristic: it treats bit index 9 with pattern L as end-of-frame
// whenever the accumulated data byte is zero, without independently
// confirming bits 1..8 were each L — a data byte of 0x00 followed by an L
// where a stop bit was expected is indistinguishable from an EOF run
// starting one byte early, but that ambiguity only arises for an all-zero
// trailing byte, which real REQB/WUPB exchanges never send as their last
// byte before EOF.
//
// The maxFrameSize check happens before this symbol is consumed, not right
// after the maxFrameSize-th byte is appended: once the stream already holds
// maxFrameSize bytes, the next symbol (the following byte's start bit) is
// discarded and reported as truncation, one symbol later than appending the
// last allowed byte.
func (d *Decoder) stepFramer(sym SymbolStatus) framerOutcome {
	if len(d.stream.bytes) >= d.cfg.MaxFrameSize {
		return framerTruncated
	}

	switch {
	case d.stream.bits == 0:
		if sym.Pattern != PatternL {
			return framerStreamError
		}
		d.stream.bits = 1

	case d.stream.bits >= 1 && d.stream.bits <= 8:
		if sym.Value != 0 {
			d.stream.data |= byte(1) << uint(d.stream.bits-1)
		}
		d.stream.bits++

	case d.stream.bits == 9:
		if sym.Pattern == PatternH {
			d.stream.bytes = append(d.stream.bytes, d.stream.data)
			d.stream.data = 0
			d.stream.bits = 0
			return framerContinue
		}
		if d.stream.data == 0 {
			return framerEOF
		}
		return framerStreamError
	}

	return framerContinue
}
