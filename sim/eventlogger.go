package sim

import (
	"log"
)

// A LogHookBase provides the logger that logging hooks write to.
type LogHookBase struct {
	*log.Logger
}

// EventLogger is an hook that prints the event information
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write in to the logger
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger

	return h
}

// Func writes the event and what its action decided into the logger
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosAfterEvent {
		return
	}

	evt, ok := ctx.Item.(EventInfo)
	if !ok {
		return
	}

	disposition, ok := ctx.Detail.(DispositionInfo)
	if !ok {
		h.Logger.Printf("%v, %s", evt.TimeAsFloat(), evt.ActionName())
		return
	}

	h.Logger.Printf("%v, %s -> %s",
		evt.TimeAsFloat(), evt.ActionName(), disposition)
}
