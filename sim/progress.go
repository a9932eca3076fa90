package sim

import (
	"fmt"
	"io"
	"log"
)

// A ProgressLogger receives the progress lines of a run, one formatted line
// per call, such as "t = 100".
type ProgressLogger interface {
	LogProgress(line string)
}

// ProgressLoggerFunc adapts a function to the ProgressLogger interface.
type ProgressLoggerFunc func(line string)

// LogProgress calls f.
func (f ProgressLoggerFunc) LogProgress(line string) {
	f(line)
}

type writerProgressLogger struct {
	w io.Writer
}

// NewWriterProgressLogger returns a ProgressLogger that writes each line to w.
func NewWriterProgressLogger(w io.Writer) ProgressLogger {
	return &writerProgressLogger{w: w}
}

func (l *writerProgressLogger) LogProgress(line string) {
	fmt.Fprintln(l.w, line)
}

type logProgressLogger struct {
	LogHookBase
}

// NewLogProgressLogger returns a ProgressLogger that prints through a standard
// library logger, picking up its prefix and flags.
func NewLogProgressLogger(logger *log.Logger) ProgressLogger {
	l := new(logProgressLogger)
	l.Logger = logger

	return l
}

func (l *logProgressLogger) LogProgress(line string) {
	l.Logger.Println(line)
}

func formatProgress[T Time](now T) string {
	return fmt.Sprintf("t = %v", now)
}
