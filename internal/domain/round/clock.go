// Package round implements the round countdown state machine.
package round

// Phase is the lifecycle stage of a round.
type Phase int

// Phases. Ended is terminal.
const (
	NotStarted Phase = iota
	Active
	Ended
)

func (p Phase) String() string {
	switch p {
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "not_started"
	}
}

// Clock counts a round down in whole seconds. It is not safe for concurrent
// use; the owning session serializes calls.
type Clock struct {
	phase     Phase
	remaining int
}

// NewClock returns a clock that will run for seconds once started.
func NewClock(seconds int) *Clock {
	if seconds < 0 {
		seconds = 0
	}
	return &Clock{remaining: seconds}
}

// Start moves NotStarted to Active. A clock with nothing on it goes straight
// to Ended, and Start reports true for that transition. Starting a clock that
// already left NotStarted does nothing and reports false.
func (c *Clock) Start() (ended bool) {
	if c.phase != NotStarted {
		return false
	}
	c.phase = Active
	if c.remaining == 0 {
		c.phase = Ended
		return true
	}
	return false
}

// Tick removes one second. It reports true exactly once, on the tick that
// takes the remaining time to zero. Ticks outside Active do nothing.
func (c *Clock) Tick() (ended bool) {
	if c.phase != Active {
		return false
	}
	if c.remaining > 0 {
		c.remaining--
	}
	if c.remaining == 0 {
		c.phase = Ended
		return true
	}
	return false
}

// Phase returns the current phase.
func (c *Clock) Phase() Phase { return c.phase }

// Remaining returns the seconds left, never negative.
func (c *Clock) Remaining() int { return c.remaining }

// Active reports whether gameplay rules apply.
func (c *Clock) Active() bool { return c.phase == Active }
