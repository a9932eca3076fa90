package sim

// An EventExecutor dispatches events one by one for a single run. It keeps
// track of the current time and prints the progress at most once every
// logFrequency units of simulated time.
type EventExecutor[T Time] struct {
	logFrequency T
	lastLogTime  T
	currentTime  T

	progress ProgressLogger
}

// NewEventExecutor creates an executor that starts at startTime. Progress
// lines go to progress; a nil logger disables progress logging.
func NewEventExecutor[T Time](
	startTime, logFrequency T,
	progress ProgressLogger,
) *EventExecutor[T] {
	return &EventExecutor[T]{
		logFrequency: logFrequency,
		lastLogTime:  startTime,
		currentTime:  startTime,
		progress:     progress,
	}
}

// Execute moves the current time to the event time, logs the progress if
// enough time has passed since the last log line, and runs the action. The
// action's disposition is returned unchanged.
func (x *EventExecutor[T]) Execute(evt Event[T]) Disposition[T] {
	x.currentTime = evt.Time()

	if x.currentTime-x.lastLogTime >= x.logFrequency {
		if x.progress != nil {
			x.progress.LogProgress(formatProgress(x.currentTime))
		}

		x.lastLogTime = x.currentTime
	}

	return evt.Action().Execute(x.currentTime)
}

// CurrentTime returns the time of the most recently executed event.
func (x *EventExecutor[T]) CurrentTime() T {
	return x.currentTime
}

// LastLogTime returns the time at which progress was last logged.
func (x *EventExecutor[T]) LastLogTime() T {
	return x.lastLogTime
}
