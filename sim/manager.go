package sim

import (
	"container/heap"
	"log"
)

// A DrainPolicy decides what Run does when the queue runs out of events before
// the maximum time is reached.
type DrainPolicy int

const (
	// SpinOnDrain keeps looping on an empty queue. Time does not advance, so
	// unless an event is added the run never returns.
	SpinOnDrain DrainPolicy = iota

	// StopOnDrain returns from Run as soon as the queue is empty.
	StopOnDrain
)

func (p DrainPolicy) String() string {
	switch p {
	case SpinOnDrain:
		return "spin"
	case StopOnDrain:
		return "stop"
	default:
		return "unknown"
	}
}

// An EventManager keeps the discrete event simulation running. It owns a
// priority queue of events and always dispatches the earliest one next.
//
// An EventManager is not safe for concurrent use. Actions may add events from
// within Execute since they run on the same goroutine as the loop.
type EventManager[T Time] struct {
	*HookableBase

	events      eventHeap[T]
	progress    ProgressLogger
	drainPolicy DrainPolicy
	now         T
}

// NewEventManager creates an EventManager with an empty queue that prints
// progress to stdout and spins on an empty queue.
func NewEventManager[T Time]() *EventManager[T] {
	return MakeManagerBuilder[T]().Build()
}

// Add inserts an event into the queue.
func (m *EventManager[T]) Add(evt Event[T]) {
	heap.Push(&m.events, evt)
}

// Next removes and returns the earliest event. The second return value is
// false if the queue is empty. Events at the same time come out in no
// particular order.
func (m *EventManager[T]) Next() (Event[T], bool) {
	if m.events.Len() == 0 {
		return Event[T]{}, false
	}

	return heap.Pop(&m.events).(Event[T]), true
}

// MustNext is like Next but panics if the queue is empty. Calling it on an
// empty queue is a bug in the caller.
func (m *EventManager[T]) MustNext() Event[T] {
	evt, ok := m.Next()
	if !ok {
		log.Panic("sim: no event left in the queue")
	}

	return evt
}

// Peek returns the earliest event without removing it from the queue.
func (m *EventManager[T]) Peek() (Event[T], bool) {
	if m.events.Len() == 0 {
		return Event[T]{}, false
	}

	return m.events[0], true
}

// Len returns the number of events waiting in the queue.
func (m *EventManager[T]) Len() int {
	return m.events.Len()
}

// CurrentTime returns the time of the event being dispatched, or the start
// time if no event has been dispatched in the current run yet.
func (m *EventManager[T]) CurrentTime() T {
	return m.now
}

// CurrentTimeAsFloat returns CurrentTime converted to float64.
func (m *EventManager[T]) CurrentTimeAsFloat() float64 {
	return float64(m.now)
}

// DrainPolicy returns how the manager behaves on an empty queue.
func (m *EventManager[T]) DrainPolicy() DrainPolicy {
	return m.drainPolicy
}

// Run dispatches events from startTime until the current time reaches
// maxTime. The bound is only checked between events, so an event that is
// popped at or after maxTime still executes. Progress is logged at most once
// every logInterval.
func (m *EventManager[T]) Run(startTime, maxTime, logInterval T) {
	executor := NewEventExecutor(startTime, logInterval, m.progress)

	m.now = startTime
	m.InvokeHook(HookCtx{Domain: m, Pos: HookPosRunStart, Item: m.now})

	// RunEnd also fires when an action panics, so hooks can release what
	// they hold for the event in flight.
	defer func() {
		m.InvokeHook(HookCtx{Domain: m, Pos: HookPosRunEnd, Item: m.now})
	}()

	for m.now < maxTime {
		evt, ok := m.Next()
		if !ok {
			if m.drainPolicy == StopOnDrain {
				break
			}

			continue
		}

		m.now = evt.Time()
		m.dispatch(executor, evt)
	}
}

func (m *EventManager[T]) dispatch(executor *EventExecutor[T], evt Event[T]) {
	hookCtx := HookCtx{
		Domain: m,
		Pos:    HookPosBeforeEvent,
		Item:   evt,
	}
	m.InvokeHook(hookCtx)

	disposition := executor.Execute(evt)
	if t, ok := disposition.RescheduleTime(); ok {
		m.Add(NewEvent(t, evt.Action()))
	}

	hookCtx.Pos = HookPosAfterEvent
	hookCtx.Detail = disposition
	m.InvokeHook(hookCtx)
}
