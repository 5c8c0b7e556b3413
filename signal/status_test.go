package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_PanicsOnNonPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int
	}{
		{"zero", 0},
		{"negative", -4},
		{"odd", 17},
		{"non_power_of_two", 100},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Panics(t, func() {
				New(tt.length, 1e6)
			})
		})
	}
}

func TestNew_AcceptsPowerOfTwo(t *testing.T) {
	t.Parallel()

	s := New(1024, 1e6)
	require.NotNil(t, s)
	assert.Equal(t, 1024, s.Length())
	assert.Equal(t, uint32(1023), s.Mask())
	assert.Equal(t, uint32(0), s.Clock())
}

func TestPushSample_AdvancesClockAndWrapsRing(t *testing.T) {
	t.Parallel()

	s := New(4, 1e6)

	idx0 := s.PushSample(1.0)
	idx1 := s.PushSample(2.0)
	idx2 := s.PushSample(3.0)
	idx3 := s.PushSample(4.0)
	idx4 := s.PushSample(5.0) // wraps back onto slot 0

	assert.Equal(t, uint32(0), idx0)
	assert.Equal(t, uint32(1), idx1)
	assert.Equal(t, uint32(2), idx2)
	assert.Equal(t, uint32(3), idx3)
	assert.Equal(t, uint32(4), idx4)

	assert.Equal(t, uint32(5), s.Clock())
	assert.Equal(t, 5.0, s.At(4))
	assert.Equal(t, 5.0, s.At(0)) // 4 & mask(3) == 0
}

func TestPushSample_PowerAverageConvergesTowardConstantInput(t *testing.T) {
	t.Parallel()

	s := New(8, 1e6)
	for i := 0; i < 100000; i++ {
		s.PushSample(0.5)
	}
	assert.InDelta(t, 0.5, s.PowerAverage(), 0.01)
	assert.InDelta(t, 0.5, s.SignalAverage(), 0.01)
}

func TestPushSample_VarianceAverageZeroOnConstantInput(t *testing.T) {
	t.Parallel()

	s := New(8, 1e6)
	for i := 0; i < 200000; i++ {
		s.PushSample(0.5)
	}
	assert.InDelta(t, 0, s.VarianceAverage(), 1e-6)
}

func TestPowerLevelThreshold_RoundTrips(t *testing.T) {
	t.Parallel()

	s := New(4, 1e6)
	assert.Equal(t, 0.0, s.PowerLevelThreshold())
	s.SetPowerLevelThreshold(0.02)
	assert.Equal(t, 0.02, s.PowerLevelThreshold())
}

func TestConfigure_RecomputesSampleTimeUnit(t *testing.T) {
	t.Parallel()

	s := New(4, 13.56e6)
	assert.InDelta(t, 1.0, s.SampleTimeUnit(), 1e-9)

	s.Configure(27.12e6)
	assert.InDelta(t, 2.0, s.SampleTimeUnit(), 1e-9)
	assert.Equal(t, uint32(0), s.Clock())
}
