package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/eventsim/config"
	"github.com/sarchlab/eventsim/sim"
	"github.com/sarchlab/eventsim/simulation"
)

type runOptions struct {
	configFile  string
	envFile     string
	start       float64
	max         float64
	logInterval float64
	stopOnDrain bool
	output      string
	noRecord    bool
	monitor     bool
	monitorPort int
	openBrowser bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run a scenario.",
		Long: `Run loads a scenario file, schedules its actions and ` +
			`dispatches the events from the start time to the max time. ` +
			`Flags override the values in the scenario file, which ` +
			`override the EVENTSIM_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScenario(cmd, opts)
		},
	}

	f := runCmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "scenario.yaml",
		"Path to the scenario file")
	f.StringVar(&opts.envFile, "env", ".env", "Path to the .env file")
	f.Float64Var(&opts.start, "start", 0, "Simulated time to start from")
	f.Float64Var(&opts.max, "max", 0, "Simulated time to stop at")
	f.Float64Var(&opts.logInterval, "log-interval", 0,
		"Minimum simulated time between two progress lines")
	f.BoolVar(&opts.stopOnDrain, "stop-on-drain", false,
		"Return once no event is left instead of waiting for more")
	f.StringVar(&opts.output, "output", "",
		"Name of the SQLite file to record into, without extension")
	f.BoolVar(&opts.noRecord, "no-record", false, "Do not record the events")
	f.BoolVar(&opts.monitor, "monitor", false, "Start the monitoring server")
	f.IntVar(&opts.monitorPort, "monitor-port", 0,
		"Port of the monitoring server")
	f.BoolVar(&opts.openBrowser, "open-browser", false,
		"Open the monitoring page in a browser")

	return runCmd
}

func runScenario(cmd *cobra.Command, opts *runOptions) error {
	err := config.LoadEnv(opts.envFile)
	if err != nil {
		return err
	}

	scenario, err := config.Load(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	err = config.ApplyEnv(scenario)
	if err != nil {
		return fmt.Errorf("failed to apply environment: %w", err)
	}

	err = applyFlags(cmd, opts, scenario)
	if err != nil {
		return err
	}

	s := buildSimulation(cmd, scenario)
	defer s.Terminate()

	start := sim.VTimeInSec(scenario.Start)
	for _, a := range scenario.Actions {
		action, first, err := a.Build(start)
		if err != nil {
			return fmt.Errorf("action %s: %w", a.Name, err)
		}

		s.RegisterAction(a.Name, action)
		s.Schedule(first, a.Name)
	}

	if opts.openBrowser && s.MonitorURL() != "" {
		err = browser.OpenURL(s.MonitorURL())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open browser: %v\n", err)
		}
	}

	s.Run(start, sim.VTimeInSec(scenario.Max),
		sim.VTimeInSec(scenario.LogInterval))

	printSummary(cmd, s)

	return nil
}

func applyFlags(
	cmd *cobra.Command,
	opts *runOptions,
	scenario *config.Scenario,
) error {
	f := cmd.Flags()

	if f.Changed("start") {
		scenario.Start = opts.start
	}

	if f.Changed("max") {
		scenario.Max = opts.max
	}

	if f.Changed("log-interval") {
		scenario.LogInterval = opts.logInterval
	}

	if f.Changed("stop-on-drain") {
		scenario.StopOnDrain = opts.stopOnDrain
	}

	if f.Changed("output") {
		scenario.Output = opts.output
	}

	if f.Changed("no-record") {
		scenario.NoRecord = opts.noRecord
	}

	if f.Changed("monitor") {
		scenario.Monitor = opts.monitor
	}

	if f.Changed("monitor-port") {
		scenario.MonitorPort = opts.monitorPort
	}

	if opts.openBrowser {
		scenario.Monitor = true
	}

	err := config.Validate(scenario)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}

func buildSimulation(
	cmd *cobra.Command,
	scenario *config.Scenario,
) *simulation.Simulation {
	b := simulation.MakeBuilder().
		WithProgressLogger(sim.NewWriterProgressLogger(cmd.OutOrStdout()))

	if scenario.StopOnDrain {
		b = b.WithStopOnDrain()
	}

	if scenario.NoRecord {
		b = b.WithoutRecording()
	} else if scenario.Output != "" {
		b = b.WithOutputFileName(scenario.Output)
	}

	if !scenario.Monitor {
		b = b.WithoutMonitoring()
	} else if scenario.MonitorPort > 0 {
		b = b.WithMonitorPort(scenario.MonitorPort)
	}

	return b.Build()
}

func printSummary(cmd *cobra.Command, s *simulation.Simulation) {
	out := cmd.OutOrStdout()
	counter := s.GetCounter()

	fmt.Fprintf(out, "Simulation %s stopped at t = %v with %d events left\n",
		s.ID(), s.GetManager().CurrentTime(), s.GetManager().Len())

	for _, name := range counter.ActionNames() {
		c := counter.Count(name)
		fmt.Fprintf(out, "  %s: %d dispatched, %d rescheduled, %d deleted\n",
			name, c.Dispatched, c.Rescheduled, c.Deleted)
	}
}
