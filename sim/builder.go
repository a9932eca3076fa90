package sim

import "os"

// ManagerBuilder can be used to build an EventManager.
type ManagerBuilder[T Time] struct {
	progress    ProgressLogger
	drainPolicy DrainPolicy
	hooks       []Hook
}

// MakeManagerBuilder creates a builder with the default settings: progress is
// printed to stdout and the manager spins on an empty queue.
func MakeManagerBuilder[T Time]() ManagerBuilder[T] {
	return ManagerBuilder[T]{
		progress:    NewWriterProgressLogger(os.Stdout),
		drainPolicy: SpinOnDrain,
	}
}

// WithProgressLogger sets where the progress lines go. Passing nil disables
// progress logging.
func (b ManagerBuilder[T]) WithProgressLogger(l ProgressLogger) ManagerBuilder[T] {
	b.progress = l
	return b
}

// WithDrainPolicy sets what Run does on an empty queue.
func (b ManagerBuilder[T]) WithDrainPolicy(p DrainPolicy) ManagerBuilder[T] {
	b.drainPolicy = p
	return b
}

// WithStopOnDrain makes Run return once the queue is empty.
func (b ManagerBuilder[T]) WithStopOnDrain() ManagerBuilder[T] {
	return b.WithDrainPolicy(StopOnDrain)
}

// WithHook registers a hook on the manager being built.
func (b ManagerBuilder[T]) WithHook(h Hook) ManagerBuilder[T] {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

// Build creates the EventManager.
func (b ManagerBuilder[T]) Build() *EventManager[T] {
	m := &EventManager[T]{
		HookableBase: NewHookableBase(),
		events:       make(eventHeap[T], 0),
		progress:     b.progress,
		drainPolicy:  b.drainPolicy,
	}

	for _, h := range b.hooks {
		m.AcceptHook(h)
	}

	return m
}
