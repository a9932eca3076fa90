package actions

import "github.com/sarchlab/eventsim/sim"

// Countdown fires a fixed number of times, Interval apart.
type Countdown struct {
	Label     string
	Interval  sim.VTimeInSec
	Remaining int
}

// NewCountdown creates an action that fires times times.
func NewCountdown(label string, interval sim.VTimeInSec, times int) *Countdown {
	if times <= 0 {
		panic("countdown requires a positive number of firings")
	}

	return &Countdown{
		Label:     label,
		Interval:  interval,
		Remaining: times,
	}
}

// Name returns the label of the action.
func (c *Countdown) Name() string {
	return c.Label
}

// Execute consumes one firing.
func (c *Countdown) Execute(now sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
	c.Remaining--

	if c.Remaining <= 0 {
		return sim.Delete[sim.VTimeInSec]()
	}

	return sim.Reschedule(now + c.Interval)
}
