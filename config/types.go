// Package config loads the scenario files that describe a simulation run.
package config

// Scenario describes one simulation run.
type Scenario struct {
	Start       float64 `yaml:"start"`
	Max         float64 `yaml:"max"`
	LogInterval float64 `yaml:"logInterval"`
	StopOnDrain bool    `yaml:"stopOnDrain"`

	// Output is the name of the SQLite file without the extension. A random
	// name is used if empty.
	Output      string `yaml:"output,omitempty"`
	NoRecord    bool   `yaml:"noRecord,omitempty"`
	Monitor     bool   `yaml:"monitor,omitempty"`
	MonitorPort int    `yaml:"monitorPort,omitempty"`

	Actions []Action `yaml:"actions"`
}

// Action describes an action and when it first fires.
type Action struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`

	// At is the time of the first firing. Cron actions fire at the first
	// match after the start time if At is not set.
	At *float64 `yaml:"at,omitempty"`

	Interval float64 `yaml:"interval,omitempty"`
	Until    float64 `yaml:"until,omitempty"`

	// For countdown actions
	Times int `yaml:"times,omitempty"`

	// For cron actions
	Schedule string `yaml:"schedule,omitempty"`

	// For walker actions
	Moves int   `yaml:"moves,omitempty"`
	Seed  int64 `yaml:"seed,omitempty"`
}

// Kind selects the implementation of an action.
type Kind string

const (
	KindPeriodic  Kind = "periodic"
	KindCountdown Kind = "countdown"
	KindCron      Kind = "cron"
	KindWalker    Kind = "walker"
)
