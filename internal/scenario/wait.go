package scenario

import (
	"context"
	"math/rand/v2"
	"time"
)

// WaitTime decides how long a simulated user pauses before its next action.
type WaitTime interface {
	Next() time.Duration
}

type between struct {
	min, max time.Duration
}

// Between returns a policy drawing uniformly from the closed interval [min, max].
func Between(min, max time.Duration) WaitTime {
	if min > max {
		min, max = max, min
	}
	return between{min: min, max: max}
}

func (b between) Next() time.Duration {
	if b.max == b.min {
		return b.min
	}
	// +1 keeps max itself reachable
	return b.min + rand.N(b.max-b.min+1)
}

type constant time.Duration

// Constant always waits d.
func Constant(d time.Duration) WaitTime {
	return constant(d)
}

func (c constant) Next() time.Duration {
	return time.Duration(c)
}

// Sleep pauses for d and reports whether ctx is still live afterwards.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
