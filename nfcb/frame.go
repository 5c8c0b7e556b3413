package nfcb

// TechTypeNfcB tags every frame this decoder emits.
const TechTypeNfcB = "NfcB"

// CommandREQB is the PCD command byte that starts both REQB and WUPB
// requests; they differ only in a flag bit inside the byte, which this core
// does not need to distinguish to recognize the frame shape.
const CommandREQB = 0x05

// FrameType distinguishes which side of the exchange a frame belongs to.
type FrameType int

const (
	FrameTypeNone FrameType = iota
	FrameTypePoll
	FrameTypeListen
)

func (t FrameType) String() string {
	switch t {
	case FrameTypePoll:
		return "Poll"
	case FrameTypeListen:
		return "Listen"
	default:
		return "None"
	}
}

// FramePhase tags the recognized protocol role of an emitted frame.
type FramePhase int

const (
	PhaseNone FramePhase = iota
	PhaseSelectionFrame
	PhaseApplicationFrame
)

func (p FramePhase) String() string {
	switch p {
	case PhaseSelectionFrame:
		return "SelectionFrame"
	case PhaseApplicationFrame:
		return "ApplicationFrame"
	default:
		return "None"
	}
}

// Flags are error/status bits carried on an emitted Frame.
type Flags uint8

const (
	FlagTruncated Flags = 1 << iota
	FlagCrcError
)

// Frame is a decoded protocol frame with its timing and error flags.
type Frame struct {
	TechType    string
	Type        FrameType
	Phase       FramePhase
	SampleStart uint32
	SampleEnd   uint32
	TimeStart   float64
	TimeEnd     float64
	Data        []byte
	Flags       Flags
}

// Truncated reports whether the frame was cut short by maxFrameSize or
// ended by a stream error rather than a clean EOF.
func (f Frame) Truncated() bool { return f.Flags&FlagTruncated != 0 }

// CrcError reports whether the frame's trailing CRC-B failed verification.
func (f Frame) CrcError() bool { return f.Flags&FlagCrcError != 0 }

// FrameStatus is the current frame's metadata plus the small amount of
// session bookkeeping that carries from one frame to the next: whether the
// core should next attempt a Listen decode, the sample-index deadlines for
// that attempt, and the last recognized command byte.
type FrameStatus struct {
	Type FrameType

	FrameStart uint32
	FrameEnd   uint32

	GuardEnd   uint32
	WaitingEnd uint32

	LastFrameEnd uint32
	LastCommand  byte
}

func (fs *FrameStatus) reset() {
	fs.Type = FrameTypeNone
	fs.FrameStart = 0
	fs.FrameEnd = 0
}

// ProtocolStatus holds the negotiated session parameters that persist
// across frames within a session: maximum frame size and the guard/waiting
// time budgets.
type ProtocolStatus struct {
	MaxFrameSize int

	StartUpGuardTime float64 // SFGT default, in samples
	FrameWaitingTime float64 // FWT, in samples
	FrameGuardTime   float64 // TR0min, in samples
	RequestGuardTime float64 // in samples
}

// defaultProtocolStatus builds the session timing defaults from the
// sample-time unit.
func defaultProtocolStatus(sampleTimeUnit float64) ProtocolStatus {
	return ProtocolStatus{
		MaxFrameSize:     256,
		StartUpGuardTime: sampleTimeUnit * 256 * 16 * 1,
		FrameWaitingTime: sampleTimeUnit * 256 * 16 * 16,
		FrameGuardTime:   sampleTimeUnit * 128 * 7,
		RequestGuardTime: sampleTimeUnit * 7000,
	}
}

// dispatchFrame runs a completed byte buffer through the recognizers and
// turns it into an emitted Frame. truncated marks frames cut short by
// maxFrameSize or by a stream error rather than ended by a clean EOF
// pattern.
func (d *Decoder) dispatchFrame(frameEnd uint32, truncated bool) Frame {
	payload := make([]byte, len(d.stream.bytes))
	copy(payload, d.stream.bytes)

	f := Frame{
		TechType:    TechTypeNfcB,
		Type:        FrameTypePoll,
		SampleStart: d.frame.FrameStart,
		SampleEnd:   frameEnd,
		TimeStart:   float64(d.frame.FrameStart) / d.sampleRate,
		TimeEnd:     float64(frameEnd) / d.sampleRate,
		Data:        payload,
	}
	if truncated {
		f.Flags |= FlagTruncated
	}

	if !d.processREQB(&f, payload) {
		d.processOther(&f, payload)
	}

	// Chained T=CL flags accumulate onto every dispatched frame; this core
	// models only the passthrough, not chaining semantics.
	f.Flags |= Flags(d.chainedFlags)

	if f.Type == FrameTypePoll && d.locked {
		delay := d.rates[d.lockedRate].SymbolDelayDetect
		d.frame.GuardEnd = frameEnd + uint32(d.protocol.FrameGuardTime) + delay
		d.frame.WaitingEnd = frameEnd + uint32(d.protocol.FrameWaitingTime) + delay
		d.frame.Type = FrameTypeListen
	}

	d.frame.LastFrameEnd = frameEnd
	d.frame.FrameStart = 0
	d.frame.FrameEnd = 0

	return f
}

// processREQB recognizes a 5-byte Poll frame opening with CommandREQB
// (REQB/WUPB). On a match it resets the session protocol parameters,
// overrides the per-frame guard/waiting budget for the ATQB response
// window, clears chainedFlags, tags the frame's phase, and remembers the
// command byte. Returns false if the frame doesn't match, in which case f
// is left untouched.
func (d *Decoder) processREQB(f *Frame, payload []byte) bool {
	if len(payload) != 5 || payload[0] != CommandREQB {
		return false
	}

	sampleTimeUnit := d.sampleTimeUnit()
	d.protocol.MaxFrameSize = 256
	d.protocol.FrameGuardTime = sampleTimeUnit * 128 * 7
	d.protocol.FrameWaitingTime = sampleTimeUnit * 256 * 16 * 16
	d.cfg.MaxFrameSize = d.protocol.MaxFrameSize

	// ATQB response window overrides.
	d.protocol.FrameGuardTime = sampleTimeUnit * 128 * 7
	d.protocol.FrameWaitingTime = sampleTimeUnit * 128 * 18

	d.chainedFlags = 0
	f.Phase = PhaseSelectionFrame
	if !VerifyCRC16B(payload) {
		f.Flags |= FlagCrcError
	}
	d.frame.LastCommand = payload[0]

	return true
}

// processOther tags any frame that doesn't match a recognized command as a
// generic application frame, still CRC-checked.
func (d *Decoder) processOther(f *Frame, payload []byte) {
	f.Phase = PhaseApplicationFrame
	if !VerifyCRC16B(payload) {
		f.Flags |= FlagCrcError
	}
}

// decodeListenFrame is the stubbed PICC->PCD BPSK listen-side decoder: it
// never produces a frame, and the waitingEnd deadline recorded in
// FrameStatus is not actively enforced here. It immediately returns the
// core to modulation search, completing the PollFrame -> ListenFrame ->
// search transition.
func (d *Decoder) decodeListenFrame() {
	d.frame.Type = FrameTypeNone
	d.frame.LastCommand = 0
	d.locked = false
	d.lockedRate = 0
	for i := range d.mod {
		d.mod[i].reset()
	}
}
