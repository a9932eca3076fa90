package sim

import (
	"fmt"
	"log"
	"reflect"
)

// A Disposition is what an action reports after it executes. The zero value
// deletes the event.
type Disposition[T Time] struct {
	reschedule bool
	time       T
}

// Delete returns a disposition that drops the event and its action.
func Delete[T Time]() Disposition[T] {
	return Disposition[T]{}
}

// Reschedule returns a disposition that moves the same action into a new event
// that happens at time t.
func Reschedule[T Time](t T) Disposition[T] {
	return Disposition[T]{reschedule: true, time: t}
}

// IsDelete returns true if the event is to be discarded.
func (d Disposition[T]) IsDelete() bool {
	return !d.reschedule
}

// RescheduleTime returns the new execution time. The second return value is
// false if the disposition is Delete.
func (d Disposition[T]) RescheduleTime() (T, bool) {
	return d.time, d.reschedule
}

// NextTimeAsFloat returns the reschedule time converted to float64, or 0 for
// a Delete disposition.
func (d Disposition[T]) NextTimeAsFloat() float64 {
	if !d.reschedule {
		return 0
	}

	return float64(d.time)
}

func (d Disposition[T]) String() string {
	if !d.reschedule {
		return "delete"
	}

	return fmt.Sprintf("reschedule@%v", d.time)
}

// An EventAction decides what happens when an event fires. It may perform any
// side effect but must return before the simulation can continue.
type EventAction[T Time] interface {
	Execute(executionTime T) Disposition[T]
}

// ActionFunc turns a plain function into an EventAction.
type ActionFunc[T Time] func(executionTime T) Disposition[T]

// Execute calls f.
func (f ActionFunc[T]) Execute(executionTime T) Disposition[T] {
	return f(executionTime)
}

// A Named action reports a human readable name. Tracers and the monitor use
// it instead of the Go type name.
type Named interface {
	Name() string
}

// ActionName returns the name of an action. Named actions report their own
// name, others are identified by their type.
func ActionName(action any) string {
	if n, ok := action.(Named); ok {
		return n.Name()
	}

	return reflect.TypeOf(action).String()
}

// An Event is an action scheduled to happen at a point in simulated time.
// Events are immutable. While queued, an event exclusively owns its action.
type Event[T Time] struct {
	id     string
	time   T
	action EventAction[T]
}

// NewEvent creates an event that executes the action at time t.
func NewEvent[T Time](t T, action EventAction[T]) Event[T] {
	if action == nil {
		log.Panic("sim: cannot create an event without an action")
	}

	return Event[T]{
		id:     GetIDGenerator().Generate(),
		time:   t,
		action: action,
	}
}

// ID returns the unique identifier of the event.
func (e Event[T]) ID() string {
	return e.id
}

// Time returns the time that the event is going to happen.
func (e Event[T]) Time() T {
	return e.time
}

// TimeAsFloat returns the event time converted to float64.
func (e Event[T]) TimeAsFloat() float64 {
	return float64(e.time)
}

// Action returns the action carried by the event.
func (e Event[T]) Action() EventAction[T] {
	return e.action
}

// ActionName returns the name of the action carried by the event.
func (e Event[T]) ActionName() string {
	return ActionName(e.action)
}

// Compare orders events by priority. It returns 1 if e happens earlier than
// other, -1 if later and 0 if both happen at the same time, whatever else
// differs between them. An earlier event has a higher priority.
func (e Event[T]) Compare(other Event[T]) int {
	switch {
	case e.time < other.time:
		return 1
	case e.time > other.time:
		return -1
	default:
		return 0
	}
}

// EventInfo is the view of an event that hooks receive in HookCtx.Item.
type EventInfo interface {
	ID() string
	TimeAsFloat() float64
	ActionName() string
}

// DispositionInfo is the view of a disposition that hooks receive in
// HookCtx.Detail.
type DispositionInfo interface {
	fmt.Stringer
	IsDelete() bool
	NextTimeAsFloat() float64
}

var (
	_ EventInfo       = Event[VTimeInSec]{}
	_ DispositionInfo = Disposition[VTimeInSec]{}
)
