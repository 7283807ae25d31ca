package round

import "fmt"

// Clock counts a round down one second at a time.
// It is either ticking or stopped; expiry stops it and is reported exactly once.
type Clock struct {
	remaining int
	ticking   bool
}

// Start begins a countdown from seconds.
func (c *Clock) Start(seconds int) {
	c.remaining = seconds
	c.ticking = seconds > 0
}

// Tick removes one second. expired is true on the tick that reaches zero.
func (c *Clock) Tick() (remaining int, expired bool, err error) {
	if !c.ticking {
		return c.remaining, false, fmt.Errorf("%w: tick on stopped clock", ErrInvalidTransition)
	}
	c.remaining--
	return c.remaining, c.checkExpired(), nil
}

// Penalize removes seconds from the countdown, clamping at zero.
// Reaching zero expires the clock exactly as a tick would.
func (c *Clock) Penalize(seconds int) (remaining int, expired bool, err error) {
	if !c.ticking {
		return c.remaining, false, fmt.Errorf("%w: penalty on stopped clock", ErrInvalidTransition)
	}
	c.remaining = max(0, c.remaining-seconds)
	return c.remaining, c.checkExpired(), nil
}

func (c *Clock) checkExpired() bool {
	if c.remaining > 0 {
		return false
	}
	c.remaining = 0
	c.ticking = false
	return true
}

// Stop halts the countdown. Safe to call in any state.
func (c *Clock) Stop() {
	c.ticking = false
}

// Remaining returns the seconds left.
func (c *Clock) Remaining() int {
	return c.remaining
}

// Ticking reports whether the countdown is active.
func (c *Clock) Ticking() bool {
	return c.ticking
}
