package resilience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeededJitterDeterministic(t *testing.T) {
	bounds := JitterBounds{Min: 200 * time.Millisecond, Max: 500 * time.Millisecond}
	a := seededJitter("flights", 0, bounds)
	b := seededJitter("flights", 0, bounds)
	assert.Equal(t, a, b, "same name+attempt must always produce the same delay")

	c := seededJitter("flights", 1, bounds)
	assert.NotEqual(t, a, c, "different attempt numbers should (almost always) differ")
}

func TestSeededJitterWithinBounds(t *testing.T) {
	bounds := JitterBounds{Min: 200 * time.Millisecond, Max: 500 * time.Millisecond}
	for attempt := 0; attempt < 20; attempt++ {
		d := seededJitter("lodging", attempt, bounds)
		assert.GreaterOrEqual(t, d, bounds.Min)
		assert.Less(t, d, bounds.Max)
	}
}

func TestSeededJitterZeroSpanReturnsMin(t *testing.T) {
	bounds := JitterBounds{Min: 300 * time.Millisecond, Max: 300 * time.Millisecond}
	assert.Equal(t, bounds.Min, seededJitter("x", 0, bounds))
}

func TestCancellableSleepCompletesNormally(t *testing.T) {
	clock := newFakeClock()
	err := cancellableSleep(context.Background(), clock, 25*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 25*time.Millisecond, clock.now.Sub(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestCancellableSleepHonorsCancellation(t *testing.T) {
	clock := newFakeClock()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := cancellableSleep(ctx, clock, 50*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableReason(t *testing.T) {
	assert.True(t, isRetryableReason("ConnectionError"))
	assert.True(t, isRetryableReason("TimeoutError"))
	assert.True(t, isRetryableReason("TemporaryError"))
	assert.True(t, isRetryableReason("timeout"))
	assert.False(t, isRetryableReason("ValidationError"))
	assert.False(t, isRetryableReason(""))
}
