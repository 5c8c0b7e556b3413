package nfcb

import "errors"

// ErrBufferTooShort is returned when a ring buffer isn't longer than
// Rate424k's cumulative detection delay plus one of its symbol periods, the
// largest delay in the rate table.
var ErrBufferTooShort = errors.New("nfcb: signal buffer too short for detection delay")
