package fetch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestSchedulePolicyBackoffClampsToLastEntry(t *testing.T) {
	t.Parallel()

	p := NewSchedulePolicy([]time.Duration{time.Second, 2 * time.Second}, 5)
	assert.Equal(t, time.Second, p.Backoff(0))
	assert.Equal(t, 2*time.Second, p.Backoff(1))
	assert.Equal(t, 2*time.Second, p.Backoff(4))
	assert.Equal(t, time.Second, p.Backoff(-1))
	assert.Equal(t, 5, p.MaxRetries())
}

func TestSchedulePolicyDefaults(t *testing.T) {
	t.Parallel()

	p := NewSchedulePolicy(nil, 0)
	assert.Equal(t, len(DefaultSchedule), p.MaxRetries())
	assert.Equal(t, time.Minute, p.Backoff(0))
	assert.Equal(t, 120*time.Minute, p.Backoff(99))
}

func TestSchedulePolicyShouldRetry(t *testing.T) {
	t.Parallel()

	p := NewSchedulePolicy([]time.Duration{time.Millisecond}, 0)
	wrapped := fmt.Errorf("visit: %w", timeoutErr{})

	assert.True(t, p.ShouldRetry(wrapped, 0))
	assert.False(t, p.ShouldRetry(wrapped, 1), "budget exhausted")
	assert.False(t, p.ShouldRetry(errors.New("connection refused"), 0))
	assert.False(t, p.ShouldRetry(nil, 0))
}

func TestIsTimeout(t *testing.T) {
	t.Parallel()

	assert.True(t, IsTimeout(context.DeadlineExceeded))
	assert.True(t, IsTimeout(fmt.Errorf("wrapped: %w", timeoutErr{})))
	assert.False(t, IsTimeout(errors.New("nope")))
	assert.False(t, IsTimeout(nil))
}

func TestJitterStaysInRange(t *testing.T) {
	t.Parallel()

	lo, hi := 200*time.Millisecond, 800*time.Millisecond
	for i := 0; i < 100; i++ {
		d := jitter(lo, hi)
		assert.GreaterOrEqual(t, d, lo)
		assert.LessOrEqual(t, d, hi)
	}
	assert.Equal(t, lo, jitter(lo, lo))
}

func TestSleepWithContext(t *testing.T) {
	t.Parallel()

	assert.NoError(t, sleepWithContext(context.Background(), 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepWithContext(ctx, time.Hour), context.Canceled)
}
