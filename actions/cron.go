package actions

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sarchlab/eventsim/sim"
)

// Epoch is the wall clock instant that simulated time 0 maps to when
// evaluating cron schedules.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Cron fires whenever a standard five-field cron expression matches. One
// simulated time unit is one second after Epoch.
type Cron struct {
	Label    string
	Schedule string
	Until    sim.VTimeInSec
	Fired    uint64

	schedule cron.Schedule
}

// NewCron parses the cron expression and creates the action.
func NewCron(label, schedule string, until sim.VTimeInSec) (*Cron, error) {
	parser := cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

	s, err := parser.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron schedule %q: %w",
			schedule, err)
	}

	return &Cron{
		Label:    label,
		Schedule: schedule,
		Until:    until,
		schedule: s,
	}, nil
}

// Name returns the label of the action.
func (c *Cron) Name() string {
	return c.Label
}

// NextAfter returns the first simulated time later than now at which the
// schedule matches. The second return value is false if the schedule does
// not match within the search range of the cron library.
func (c *Cron) NextAfter(now sim.VTimeInSec) (sim.VTimeInSec, bool) {
	wall := Epoch.Add(time.Duration(float64(now) * float64(time.Second)))

	next := c.schedule.Next(wall)
	if next.IsZero() {
		return 0, false
	}

	return sim.VTimeInSec(next.Sub(Epoch).Seconds()), true
}

// Execute counts the firing and moves to the next match of the schedule. The
// action is dropped when the schedule runs out of matches.
func (c *Cron) Execute(now sim.VTimeInSec) sim.Disposition[sim.VTimeInSec] {
	c.Fired++

	next, ok := c.NextAfter(now)
	if !ok || (c.Until > 0 && next > c.Until) {
		return sim.Delete[sim.VTimeInSec]()
	}

	return sim.Reschedule(next)
}
