package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sarchlab/eventsim/actions"
	"github.com/sarchlab/eventsim/sim"
)

// Environment variables that override the scenario file.
const (
	EnvMonitorPort = "EVENTSIM_MONITOR_PORT"
	EnvOutput      = "EVENTSIM_OUTPUT"
	EnvLogInterval = "EVENTSIM_LOG_INTERVAL"
)

// Load reads, parses and validates a scenario file.
func Load(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates a scenario.
func Parse(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if err := Validate(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadEnv loads the given .env files into the environment. Files that do not
// exist are skipped. Without arguments, .env in the working directory is
// tried.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, f := range filenames {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	return nil
}

// ApplyEnv overrides the scenario with the environment variables that are
// set.
func ApplyEnv(scenario *Scenario) error {
	if v, ok := os.LookupEnv(EnvMonitorPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMonitorPort, err)
		}

		scenario.MonitorPort = port
	}

	if v, ok := os.LookupEnv(EnvOutput); ok {
		scenario.Output = v
	}

	if v, ok := os.LookupEnv(EnvLogInterval); ok {
		interval, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvLogInterval, err)
		}

		scenario.LogInterval = interval
	}

	return Validate(scenario)
}

// Validate checks that the scenario can be run.
func Validate(scenario *Scenario) error {
	if scenario.Max < scenario.Start {
		return fmt.Errorf("max (%v) must not be less than start (%v)",
			scenario.Max, scenario.Start)
	}

	if scenario.LogInterval < 0 {
		return errors.New("logInterval must not be negative")
	}

	if scenario.MonitorPort < 0 {
		return errors.New("monitorPort must not be negative")
	}

	names := make(map[string]bool)

	for i, a := range scenario.Actions {
		if a.Name == "" {
			return fmt.Errorf("action %d: name is required", i)
		}

		if names[a.Name] {
			return fmt.Errorf("action %s: name is used more than once", a.Name)
		}

		names[a.Name] = true

		if err := validateAction(a); err != nil {
			return fmt.Errorf("action %s: %w", a.Name, err)
		}

		if a.Kind == KindCron {
			if err := validateSchedule(a, scenario.Start); err != nil {
				return fmt.Errorf("action %s: %w", a.Name, err)
			}
		}
	}

	return nil
}

func validateAction(a Action) error {
	switch a.Kind {
	case KindPeriodic:
		if a.Interval <= 0 {
			return errors.New("interval must be greater than 0")
		}
	case KindCountdown:
		if a.Interval < 0 {
			return errors.New("interval must not be negative")
		}

		if a.Times <= 0 {
			return errors.New("times must be greater than 0")
		}
	case KindCron:
		if a.Schedule == "" {
			return errors.New("schedule is required for cron actions")
		}
	case KindWalker:
		if a.Interval < 0 {
			return errors.New("interval must not be negative")
		}

		if a.Moves <= 0 {
			return errors.New("moves must be greater than 0")
		}
	default:
		return fmt.Errorf("unknown kind %q", a.Kind)
	}

	if a.Kind != KindCron && a.At == nil {
		return errors.New("at is required")
	}

	return nil
}

func validateSchedule(a Action, start float64) error {
	c, err := actions.NewCron(a.Name, a.Schedule, sim.VTimeInSec(a.Until))
	if err != nil {
		return err
	}

	if _, ok := c.NextAfter(sim.VTimeInSec(start)); !ok {
		return fmt.Errorf("schedule %q never matches after %v",
			a.Schedule, start)
	}

	return nil
}
