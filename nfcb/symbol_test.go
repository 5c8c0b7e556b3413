package nfcb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sliceratwork/nfcb-decoder/signal"
)

// lockedFixture returns a decoder already locked on Rate106k with a fresh
// symbol-tracker resync window, and the status it's bound to, skipping SOF
// search entirely so stepSymbol can be exercised in isolation.
func lockedFixture(t *testing.T) (*Decoder, *signal.Status) {
	t.Helper()

	const sampleRate = 1_695_000.0
	const bufferLength = 1 << 16

	status := signal.New(bufferLength, sampleRate)
	status.SetPowerLevelThreshold(0.5)

	d := NewDecoder(DefaultConfig())
	require.NoError(t, d.Configure(sampleRate, bufferLength))

	// Warm up the power average on unmodulated carrier before locking, same
	// as a real SOF handoff would leave it.
	var clock uint32
	for i := 0; i < 60000; i++ {
		clock = status.PushSample(1.0)
	}

	d.acquireLock(status, Rate106k, clock, clock, clock)
	return d, status
}

func TestStepSymbol_DecidesHForUnmodulatedRun(t *testing.T) {
	t.Parallel()

	d, status := lockedFixture(t)
	p := &d.rates[Rate106k]

	var decided SymbolStatus
	var got bool
	for i := uint32(0); i < 2*p.Period1; i++ {
		clock := status.PushSample(1.0)
		if sym, ok := d.stepSymbol(status, clock); ok {
			decided = sym
			got = true
			break
		}
	}

	require.True(t, got, "expected a symbol decision within two symbol periods")
	assert.Equal(t, PatternH, decided.Pattern)
	assert.Equal(t, 1, decided.Value)
}

func TestStepSymbol_DecidesLForModulatedRun(t *testing.T) {
	t.Parallel()

	d, status := lockedFixture(t)
	p := &d.rates[Rate106k]

	var decided SymbolStatus
	var got bool
	for i := uint32(0); i < 2*p.Period1; i++ {
		clock := status.PushSample(0.7)
		if sym, ok := d.stepSymbol(status, clock); ok {
			decided = sym
			got = true
			break
		}
	}

	require.True(t, got)
	assert.Equal(t, PatternL, decided.Pattern)
	assert.Equal(t, 0, decided.Value)
}

func TestStepSymbol_EachDecisionAdvancesTheWindow(t *testing.T) {
	t.Parallel()

	d, status := lockedFixture(t)
	p := &d.rates[Rate106k]

	var decisions []SymbolStatus
	for i := uint32(0); i < 6*p.Period1 && len(decisions) < 3; i++ {
		clock := status.PushSample(1.0)
		if sym, ok := d.stepSymbol(status, clock); ok {
			decisions = append(decisions, sym)
		}
	}

	require.Len(t, decisions, 3)
	for i := 1; i < len(decisions); i++ {
		assert.Greater(t, decisions[i].StartTime, decisions[i-1].StartTime)
		assert.Equal(t, decisions[i-1].EndTime, decisions[i].StartTime)
	}
}
