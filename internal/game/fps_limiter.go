package game

import (
	"time"
)

// FPSLimiter provides high-precision frame rate limiting
type FPSLimiter struct {
	limit int
	next  time.Time
}

// NewFPSLimiter creates a limiter for limit frames per second; 0 disables it
func NewFPSLimiter(limit int) *FPSLimiter {
	return &FPSLimiter{limit: limit}
}

// Wait blocks until the next frame should be rendered based on the FPS limit.
// Uses a hybrid sleep/spin approach for better precision on high FPS caps.
func (f *FPSLimiter) Wait() {
	if f.limit <= 0 {
		f.next = time.Time{}
		return
	}

	target := time.Second / time.Duration(f.limit)

	if f.next.IsZero() {
		f.next = time.Now().Add(target)
	} else {
		f.next = f.next.Add(target)
	}

	for {
		remaining := time.Until(f.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
		// busy-wait for the final few microseconds
		if time.Until(f.next) <= 0 {
			break
		}
	}

	// If we're significantly late (e.g., hitch), resync to avoid drift
	if late := -time.Until(f.next); late > target {
		f.next = time.Now().Add(target)
	}
}

// TickClock converts frame time into a whole number of fixed-rate ticks
type TickClock struct {
	step  time.Duration
	accum time.Duration
	// maxCatchUp bounds ticks per frame so a long hitch does not stall rendering
	maxCatchUp int
}

// NewTickClock creates a clock for hz ticks per second
func NewTickClock(hz int) *TickClock {
	if hz <= 0 {
		hz = 20
	}
	return &TickClock{step: time.Second / time.Duration(hz), maxCatchUp: 4}
}

// Advance adds dt and returns how many ticks are due
func (c *TickClock) Advance(dt time.Duration) int {
	c.accum += dt
	n := int(c.accum / c.step)
	c.accum -= time.Duration(n) * c.step
	if n > c.maxCatchUp {
		n = c.maxCatchUp
		c.accum = 0
	}
	return n
}
