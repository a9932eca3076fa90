// Package tracing provides hooks that collect information about the events
// dispatched by a simulation.
package tracing

import (
	"sync"

	"github.com/sarchlab/eventsim/datarecording"
	"github.com/sarchlab/eventsim/sim"
	"github.com/tebeka/atexit"
)

// The tables written by a DispatchTracer.
const (
	DispatchTableName = "dispatch"
	RunTableName      = "run"
)

// A DispatchEntry is a row of the dispatch table.
type DispatchEntry struct {
	RunID       int
	EventID     string
	Time        float64
	Action      string
	Disposition string
	NextTime    float64
}

// A RunEntry is a row of the run table. It is written when a run returns.
type RunEntry struct {
	RunID      int
	StartTime  float64
	EndTime    float64
	Dispatched uint64
}

// DispatchTracer is a hook that stores every dispatched event into a data
// recorder. Each call to Run is stored as a separate run.
type DispatchTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	startTime, endTime float64

	runID        int
	runStartTime float64
	dispatched   uint64
	total        uint64
}

// NewDispatchTracer creates a DispatchTracer that writes into the given
// recorder.
func NewDispatchTracer(
	dataRecorder datarecording.DataRecorder,
) *DispatchTracer {
	dataRecorder.CreateTable(DispatchTableName, DispatchEntry{})
	dataRecorder.CreateTable(RunTableName, RunEntry{})

	t := &DispatchTracer{
		backend: dataRecorder,
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

// SetTimeRange limits tracing to the events whose time is in
// [startTime, endTime). An endTime of 0 means no upper bound.
func (t *DispatchTracer) SetTimeRange(startTime, endTime float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.startTime = startTime
	t.endTime = endTime
}

// Func records the events and runs.
func (t *DispatchTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosRunStart:
		t.startRun(ctx)
	case sim.HookPosAfterEvent:
		t.recordDispatch(ctx)
	case sim.HookPosRunEnd:
		t.endRun(ctx)
	}
}

func (t *DispatchTracer) startRun(ctx sim.HookCtx) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.runID++
	t.runStartTime = timeOf(ctx.Domain)
	t.dispatched = 0
}

func (t *DispatchTracer) recordDispatch(ctx sim.HookCtx) {
	evt, ok := ctx.Item.(sim.EventInfo)
	if !ok {
		return
	}

	disposition, ok := ctx.Detail.(sim.DispositionInfo)
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	now := evt.TimeAsFloat()
	if now < t.startTime || (t.endTime > 0 && now >= t.endTime) {
		return
	}

	t.backend.InsertData(DispatchTableName, DispatchEntry{
		RunID:       t.runID,
		EventID:     evt.ID(),
		Time:        now,
		Action:      evt.ActionName(),
		Disposition: disposition.String(),
		NextTime:    disposition.NextTimeAsFloat(),
	})

	t.dispatched++
	t.total++
}

func (t *DispatchTracer) endRun(ctx sim.HookCtx) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.InsertData(RunTableName, RunEntry{
		RunID:      t.runID,
		StartTime:  t.runStartTime,
		EndTime:    timeOf(ctx.Domain),
		Dispatched: t.dispatched,
	})
}

// NumTraced returns the number of dispatches recorded so far.
func (t *DispatchTracer) NumTraced() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.total
}

// Terminate flushes the recorded data.
func (t *DispatchTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}

// A floatTimeTeller reports the current time as a float64. Every
// sim.EventManager satisfies it.
type floatTimeTeller interface {
	CurrentTimeAsFloat() float64
}

func timeOf(domain sim.Hookable) float64 {
	if tt, ok := domain.(floatTimeTeller); ok {
		return tt.CurrentTimeAsFloat()
	}

	return 0
}
