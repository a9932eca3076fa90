package config

import (
	"fmt"

	"github.com/sarchlab/eventsim/actions"
	"github.com/sarchlab/eventsim/sim"
)

// Build creates the action described and returns it with the time of its
// first firing. Cron actions without At fire first at the first match after
// start.
func (a Action) Build(
	start sim.VTimeInSec,
) (sim.EventAction[sim.VTimeInSec], sim.VTimeInSec, error) {
	interval := sim.VTimeInSec(a.Interval)
	until := sim.VTimeInSec(a.Until)

	var first sim.VTimeInSec
	if a.At != nil {
		first = sim.VTimeInSec(*a.At)
	}

	switch a.Kind {
	case KindPeriodic:
		return actions.NewPeriodic(a.Name, interval, until), first, nil
	case KindCountdown:
		return actions.NewCountdown(a.Name, interval, a.Times), first, nil
	case KindCron:
		c, err := actions.NewCron(a.Name, a.Schedule, until)
		if err != nil {
			return nil, 0, err
		}

		if a.At == nil {
			next, ok := c.NextAfter(start)
			if !ok {
				return nil, 0, fmt.Errorf(
					"schedule %q never matches after %v", a.Schedule, start)
			}

			first = next
		}

		return c, first, nil
	case KindWalker:
		return actions.NewWalker(a.Name, interval, a.Moves, a.Seed), first, nil
	default:
		return nil, 0, validateAction(a)
	}
}
