package simulation

import (
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/eventsim/datarecording"
	"github.com/sarchlab/eventsim/monitoring"
	"github.com/sarchlab/eventsim/sim"
	"github.com/sarchlab/eventsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	recordOn       bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
	drainPolicy    sim.DrainPolicy
	progress       sim.ProgressLogger
	hooks          []sim.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		recordOn:    true,
		monitorOn:   true,
		drainPolicy: sim.SpinOnDrain,
		progress:    sim.NewWriterProgressLogger(os.Stdout),
	}
}

// WithoutRecording sets the simulation to not write a database.
func (b Builder) WithoutRecording() Builder {
	b.recordOn = false
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithStopOnDrain makes Run return once no event is left.
func (b Builder) WithStopOnDrain() Builder {
	b.drainPolicy = sim.StopOnDrain
	return b
}

// WithProgressLogger sets where the progress lines go. Passing nil disables
// progress logging.
func (b Builder) WithProgressLogger(l sim.ProgressLogger) Builder {
	b.progress = l
	return b
}

// WithHook registers an additional hook on the event manager.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], h)
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.recordOn && b.outputFileName != "" {
		panic("output file cannot be set when recording is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:      xid.New().String(),
		actions: make(map[string]sim.EventAction[sim.VTimeInSec]),
		counter: tracing.NewDispositionCounter(),
	}

	mb := sim.MakeManagerBuilder[sim.VTimeInSec]().
		WithProgressLogger(b.progress).
		WithDrainPolicy(b.drainPolicy).
		WithHook(s.counter)

	if b.recordOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "eventsim_" + s.id
		}

		s.dataRecorder = datarecording.NewDataRecorder(outputPath)
		s.tracer = tracing.NewDispatchTracer(s.dataRecorder)
		mb = mb.WithHook(s.tracer)
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}

		s.progress = &runProgress{}
		mb = mb.WithHook(s.monitor).WithHook(s.progress)
	}

	for _, h := range b.hooks {
		mb = mb.WithHook(h)
	}

	s.manager = mb.Build()

	if s.monitor != nil {
		s.monitorURL = s.monitor.StartServer()
	}

	return s
}
