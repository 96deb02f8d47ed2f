package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_SleepAdvancesTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	c := NewFake(start)

	c.Sleep(20 * time.Millisecond)
	c.Sleep(400 * time.Millisecond)
	c.Sleep(-time.Second)

	assert.Equal(t, start.Add(420*time.Millisecond), c.Now())
	total, calls := c.Slept()
	assert.Equal(t, 420*time.Millisecond, total)
	assert.Equal(t, 2, calls)
}

func TestFake_AdvanceNeverGoesBackward(t *testing.T) {
	start := time.Date(2024, 1, 1, 22, 0, 0, 0, time.UTC)
	c := NewFake(start)

	c.Advance(-time.Hour)
	assert.Equal(t, start, c.Now())

	c.Advance(time.Minute)
	assert.Equal(t, start.Add(time.Minute), c.Now())

	_, calls := c.Slept()
	assert.Zero(t, calls)
}

func TestReal_NowIsMonotonic(t *testing.T) {
	var c Clock = Real{}
	a := c.Now()
	b := c.Now()
	assert.False(t, b.Before(a))
}
