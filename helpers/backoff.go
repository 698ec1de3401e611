package helpers

import (
	"time"
)

// Backoff computes retry delays for single consumer loop, not safe for concurrent use.
// Success resets delay to zero, each failure multiplies it by K within [Min, Max].
type Backoff struct {
	Min time.Duration
	Max time.Duration
	K   float64

	delay time.Duration
}

// Next records attempt result and returns delay before next attempt.
// Use scenario:
// for {
//   err := op()
//   time.Sleep(backoff.Next(err == nil))
// }
func (b *Backoff) Next(success bool) time.Duration {
	if success {
		b.delay = 0
		return 0
	}
	if b.delay == 0 {
		b.delay = b.Min
	} else {
		b.delay = time.Duration(float64(b.delay) * b.K)
	}
	if b.delay > b.Max {
		b.delay = b.Max
	}
	if b.delay < b.Min {
		b.delay = b.Min
	}
	return b.delay.Truncate(time.Millisecond)
}
