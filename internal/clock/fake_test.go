package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeFiresInDeadlineOrder(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	c := NewFake(start)

	var fired []string
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "first") })
	c.AfterFunc(10*time.Second, func() { fired = append(fired, "late") })

	c.Advance(5 * time.Second)

	assert.Equal(t, []string{"first", "second"}, fired)
	assert.Equal(t, start.Add(5*time.Second), c.Now())
	assert.Equal(t, 1, c.Pending())
}

func TestFakeStopPreventsFiring(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })

	require.True(t, timer.Stop())
	require.False(t, timer.Stop())

	c.Advance(time.Minute)
	assert.False(t, fired)
}

func TestFakeRescheduleInsideCallback(t *testing.T) {
	c := NewFake(time.Unix(0, 0))

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			c.AfterFunc(time.Second, tick)
		}
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(10 * time.Second)
	assert.Equal(t, 3, count)
}

func TestFakeSetDoesNotFire(t *testing.T) {
	start := time.Unix(0, 0)
	c := NewFake(start)

	fired := false
	c.AfterFunc(time.Second, func() { fired = true })
	c.Set(start.Add(time.Hour))

	assert.False(t, fired)
	deadline, ok := c.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, start.Add(time.Second), deadline)
}
