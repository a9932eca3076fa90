package tracing

import (
	"sync"

	"github.com/sarchlab/eventsim/sim"
)

// DispositionCount summarizes what the events of one action returned.
type DispositionCount struct {
	Dispatched  uint64
	Deleted     uint64
	Rescheduled uint64
}

// DispositionCounter is a hook that counts the dispatched events per action.
type DispositionCounter struct {
	lock        sync.Mutex
	actionNames []string
	counts      map[string]*DispositionCount
}

// NewDispositionCounter creates a new DispositionCounter.
func NewDispositionCounter() *DispositionCounter {
	return &DispositionCounter{
		counts: make(map[string]*DispositionCount),
	}
}

// Func counts the event that has just been dispatched.
func (c *DispositionCounter) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(sim.EventInfo)
	if !ok {
		return
	}

	disposition, ok := ctx.Detail.(sim.DispositionInfo)
	if !ok {
		c.count(evt.ActionName(), nil)
		return
	}

	deleted := disposition.IsDelete()
	c.count(evt.ActionName(), &deleted)
}

// Add counts a dispatch read back from a recording.
func (c *DispositionCounter) Add(entry *DispatchEntry) {
	deleted := entry.Disposition == "delete"
	c.count(entry.Action, &deleted)
}

func (c *DispositionCounter) count(name string, deleted *bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	count, found := c.counts[name]
	if !found {
		count = &DispositionCount{}
		c.counts[name] = count
		c.actionNames = append(c.actionNames, name)
	}

	count.Dispatched++

	if deleted == nil {
		return
	}

	if *deleted {
		count.Deleted++
	} else {
		count.Rescheduled++
	}
}

// ActionNames returns the action names in the order they were first seen.
func (c *DispositionCounter) ActionNames() []string {
	c.lock.Lock()
	defer c.lock.Unlock()

	names := make([]string, len(c.actionNames))
	copy(names, c.actionNames)

	return names
}

// Count returns the counts of an action. An unknown action has all zeros.
func (c *DispositionCounter) Count(actionName string) DispositionCount {
	c.lock.Lock()
	defer c.lock.Unlock()

	count, found := c.counts[actionName]
	if !found {
		return DispositionCount{}
	}

	return *count
}

// Total returns the sum of the counts of all actions.
func (c *DispositionCounter) Total() DispositionCount {
	c.lock.Lock()
	defer c.lock.Unlock()

	total := DispositionCount{}
	for _, count := range c.counts {
		total.Dispatched += count.Dispatched
		total.Deleted += count.Deleted
		total.Rescheduled += count.Rescheduled
	}

	return total
}
