package connection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffGrowth(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     0, // deterministic
	})

	assert.Equal(t, 100*time.Millisecond, b.Next())
	assert.Equal(t, 200*time.Millisecond, b.Next())
	assert.Equal(t, 400*time.Millisecond, b.Next())
	assert.Equal(t, 800*time.Millisecond, b.Next())
	assert.Equal(t, time.Second, b.Next(), "capped at max")
	assert.Equal(t, time.Second, b.Next(), "stays at max")
}

func TestBackoffReset(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     0,
	})

	b.Next()
	b.Next()
	assert.Equal(t, 2, b.Attempts())

	b.Reset()
	assert.Equal(t, 0, b.Attempts())
	assert.Equal(t, 100*time.Millisecond, b.Next(), "delay starts over")
}

func TestBackoffJitterBounds(t *testing.T) {
	b := NewBackoffWithConfig(BackoffConfig{
		Initial:    100 * time.Millisecond,
		Max:        time.Second,
		Multiplier: 2.0,
		Jitter:     0.25,
	})

	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := b.Next()
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+time.Duration(float64(base)*0.25))
		base *= 2
		if base > time.Second {
			base = time.Second
		}
	}
}

func TestBackoffDefaults(t *testing.T) {
	b := NewBackoff()
	assert.Equal(t, InitialBackoff, b.Current())

	b = NewBackoffWithConfig(BackoffConfig{Multiplier: 0.5})
	b.Next()
	assert.Equal(t, time.Duration(float64(InitialBackoff)*BackoffMultiplier), b.Current(),
		"multiplier below 1 falls back to the default")
}
