package fetch

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"time"
)

// DefaultSchedule is the pause taken after the n-th consecutive timeout.
var DefaultSchedule = []time.Duration{
	1 * time.Minute,
	2 * time.Minute,
	3 * time.Minute,
	4 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	20 * time.Minute,
	30 * time.Minute,
	60 * time.Minute,
	120 * time.Minute,
}

// SchedulePolicy retries timeouts only, pausing according to a fixed
// schedule. Attempts beyond the schedule reuse its last entry.
type SchedulePolicy struct {
	schedule   []time.Duration
	maxRetries int
}

// NewSchedulePolicy builds a policy that allows maxRetries timeout
// retries. A non-positive maxRetries defaults to len(schedule).
func NewSchedulePolicy(schedule []time.Duration, maxRetries int) *SchedulePolicy {
	if len(schedule) == 0 {
		schedule = DefaultSchedule
	}
	if maxRetries <= 0 {
		maxRetries = len(schedule)
	}
	return &SchedulePolicy{
		schedule:   append([]time.Duration(nil), schedule...),
		maxRetries: maxRetries,
	}
}

// ShouldRetry reports whether the attempt-th retry is allowed for err.
// attempt counts retries already taken, starting at zero.
func (p *SchedulePolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= p.maxRetries {
		return false
	}
	return IsTimeout(err)
}

// Backoff returns the pause before the attempt-th retry.
func (p *SchedulePolicy) Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= len(p.schedule) {
		attempt = len(p.schedule) - 1
	}
	return p.schedule[attempt]
}

// MaxRetries returns the retry budget.
func (p *SchedulePolicy) MaxRetries() int {
	return p.maxRetries
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Sleeper pauses between retries.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	return sleepWithContext(ctx, d)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("sleep canceled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

// jitter returns a uniformly random duration in [lo, hi].
func jitter(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(hi-lo)+1))
	if err != nil {
		return lo + (hi-lo)/2
	}
	return lo + time.Duration(n.Int64())
}
