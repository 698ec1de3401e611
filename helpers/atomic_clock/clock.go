// Package atomic_clock keeps last event time readable from other goroutines.
// Wall clock only, do not use where time zone matters.
package atomic_clock

import (
	"sync/atomic"
	"time"
)

// Clock zero value means never touched.
type Clock struct{ ns int64 }

func (c *Clock) Touch()          { c.Set(time.Now()) }
func (c *Clock) Set(t time.Time) { atomic.StoreInt64(&c.ns, t.UnixNano()) }
func (c *Clock) IsZero() bool    { return atomic.LoadInt64(&c.ns) == 0 }

func (c *Clock) Time() time.Time {
	ns := atomic.LoadInt64(&c.ns)
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Idle returns time passed since last Touch, 0 if never touched.
func (c *Clock) Idle(now time.Time) time.Duration {
	if c.IsZero() {
		return 0
	}
	return now.Sub(c.Time())
}
