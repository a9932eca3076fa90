// Package actions provides ready-made event actions that scenarios can
// schedule.
package actions

import "github.com/sarchlab/eventsim/sim"

// Periodic fires every Interval. Once the next firing would be later than
// Until it deletes itself. An Until of 0 keeps it firing forever.
type Periodic struct {
	Label    string
	Interval sim.VTimeInSec
	Until    sim.VTimeInSec
	Fired    uint64
}

// NewPeriodic creates a Periodic action.
func NewPeriodic(label string, interval, until sim.VTimeInSec) *Periodic {
	if interval <= 0 {
		panic("periodic action requires a positive interval")
	}

	return &Periodic{
		Label:    label,
		Interval: interval,
		Until:    until,
	}
}

// Name returns the label of the action.
func (p *Periodic) Name() string {
	return p.Label
}

// Execute counts the firing and asks to run again one interval later.
func (p *Periodic) Execute(now sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
	p.Fired++

	next := now + p.Interval
	if p.Until > 0 && next > p.Until {
		return sim.Delete[sim.VTimeInSec]()
	}

	return sim.Reschedule(next)
}
