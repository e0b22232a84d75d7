package app

import "time"

// Clock measures absolute scene time from a start instant. Scene time stands
// still while paused and restarts from zero on Restart.
type Clock struct {
	now      func() time.Time
	start    time.Time
	pausedAt time.Time
	paused   bool
}

// NewClock starts a clock at now(). A nil now uses time.Now.
func NewClock(now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, start: now()}
}

// Elapsed returns scene seconds since the start.
func (c *Clock) Elapsed() float64 {
	end := c.now()
	if c.paused {
		end = c.pausedAt
	}
	return end.Sub(c.start).Seconds()
}

// Paused reports whether scene time is frozen.
func (c *Clock) Paused() bool {
	return c.paused
}

// Pause freezes scene time. Pausing twice is a no-op.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.pausedAt = c.now()
	c.paused = true
}

// Resume continues scene time from where it was paused.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.start = c.start.Add(c.now().Sub(c.pausedAt))
	c.paused = false
}

// Toggle pauses a running clock and resumes a paused one.
func (c *Clock) Toggle() {
	if c.paused {
		c.Resume()
	} else {
		c.Pause()
	}
}

// Restart sets scene time back to zero, keeping the pause state.
func (c *Clock) Restart() {
	c.start = c.now()
	c.pausedAt = c.start
}
