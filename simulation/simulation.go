// Package simulation wires an event manager together with recording, tracing
// and monitoring.
package simulation

import (
	"fmt"
	"os"

	"github.com/sarchlab/eventsim/datarecording"
	"github.com/sarchlab/eventsim/monitoring"
	"github.com/sarchlab/eventsim/sim"
	"github.com/sarchlab/eventsim/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id      string
	manager *sim.EventManager[sim.VTimeInSec]

	dataRecorder datarecording.DataRecorder
	tracer       *tracing.DispatchTracer
	counter      *tracing.DispositionCounter
	monitor      *monitoring.Monitor
	monitorURL   string
	progress     *runProgress

	actions     map[string]sim.EventAction[sim.VTimeInSec]
	actionNames []string
}

// ID returns the unique identifier of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetManager returns the event manager used in the simulation.
func (s *Simulation) GetManager() *sim.EventManager[sim.VTimeInSec] {
	return s.manager
}

// GetDataRecorder returns the data recorder used in the simulation. It is nil
// if recording is disabled.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetTracer returns the dispatch tracer. It is nil if recording is disabled.
func (s *Simulation) GetTracer() *tracing.DispatchTracer {
	return s.tracer
}

// GetCounter returns the counter of dispositions per action.
func (s *Simulation) GetCounter() *tracing.DispositionCounter {
	return s.counter
}

// GetMonitor returns the monitor used in the simulation. It is nil if
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the address of the monitoring server, or an empty string
// if monitoring is disabled.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// RegisterAction makes an action available for scheduling under a name.
func (s *Simulation) RegisterAction(
	name string,
	action sim.EventAction[sim.VTimeInSec],
) {
	if _, found := s.actions[name]; found {
		panic("action " + name + " already registered")
	}

	s.actions[name] = action
	s.actionNames = append(s.actionNames, name)

	if s.monitor != nil {
		s.monitor.RegisterAction(name, action)
	}
}

// GetActionByName returns the action registered under the name.
func (s *Simulation) GetActionByName(name string) sim.EventAction[sim.VTimeInSec] {
	action, found := s.actions[name]
	if !found {
		panic("action " + name + " is not registered")
	}

	return action
}

// ActionNames returns the names of the actions in registration order.
func (s *Simulation) ActionNames() []string {
	names := make([]string, len(s.actionNames))
	copy(names, s.actionNames)

	return names
}

// Schedule adds an event that executes the named action at time t.
func (s *Simulation) Schedule(t sim.VTimeInSec, name string) {
	s.manager.Add(sim.NewEvent(t, s.GetActionByName(name)))
}

// Run dispatches the events from startTime until maxTime.
func (s *Simulation) Run(startTime, maxTime, logInterval sim.VTimeInSec) {
	if s.monitor != nil {
		s.progress.current = monitoring.NewSimTimeProgress(
			s.monitor, "Simulated time",
			float64(startTime), float64(maxTime))

		defer func() {
			s.monitor.CompleteProgressBar(s.progress.current.Bar())
			s.progress.current = nil
		}()
	}

	s.manager.Run(startTime, maxTime, logInterval)
}

// Terminate flushes and closes the recording.
func (s *Simulation) Terminate() {
	if s.dataRecorder == nil {
		return
	}

	err := s.dataRecorder.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close the recording: %v\n", err)
	}
}

type runProgress struct {
	current *monitoring.SimTimeProgress
}

func (p *runProgress) Func(ctx sim.HookCtx) {
	if p.current != nil {
		p.current.Func(ctx)
	}
}
