package atomic_clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock(t *testing.T) {
	t.Parallel()

	var c Clock
	assert.True(t, c.IsZero())
	assert.True(t, c.Time().IsZero())
	assert.Equal(t, time.Duration(0), c.Idle(time.Now()))

	base := time.Date(2020, 1, 2, 3, 4, 5, 6, time.UTC)
	c.Set(base)
	assert.False(t, c.IsZero())
	assert.True(t, base.Equal(c.Time()))
	assert.Equal(t, 90*time.Second, c.Idle(base.Add(90*time.Second)))

	c.Touch()
	assert.InDelta(t, 0, float64(c.Idle(time.Now())), float64(time.Second))
}
