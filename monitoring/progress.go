package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/eventsim/sim"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string
	Name       string
	StartTime  time.Time
	Total      uint64
	Finished   uint64
	InProgress uint64
}

// ProgressBarSnapshot is the state of a ProgressBar at one moment.
type ProgressBarSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress -= amount
	b.Finished += amount
}

// Snapshot copies the current state of the bar.
func (b *ProgressBar) Snapshot() ProgressBarSnapshot {
	b.Lock()
	defer b.Unlock()

	return ProgressBarSnapshot{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// A SimTimeProgress is a hook that reports how far the simulated time has
// advanced towards the end of a run on a ProgressBar. The bar counts whole
// time units.
type SimTimeProgress struct {
	bar       *ProgressBar
	startTime float64
	reported  uint64
}

// NewSimTimeProgress creates a progress bar on the monitor that tracks a run
// from startTime to maxTime.
func NewSimTimeProgress(
	m *Monitor,
	name string,
	startTime, maxTime float64,
) *SimTimeProgress {
	total := uint64(0)
	if maxTime > startTime {
		total = uint64(maxTime - startTime)
	}

	return &SimTimeProgress{
		bar:       m.CreateProgressBar(name, total),
		startTime: startTime,
	}
}

// Bar returns the underlying progress bar.
func (p *SimTimeProgress) Bar() *ProgressBar {
	return p.bar
}

// Func advances the bar after each event.
func (p *SimTimeProgress) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(sim.EventInfo)
	if !ok {
		return
	}

	elapsed := evt.TimeAsFloat() - p.startTime
	if elapsed <= 0 {
		return
	}

	done := min(uint64(elapsed), p.bar.Total)
	if done > p.reported {
		p.bar.IncrementFinished(done - p.reported)
		p.reported = done
	}
}
