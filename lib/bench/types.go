package bench

import (
	"time"
)

// Plan describes which transfer tests to time and how often.
type Plan struct {
	Target      string     `yaml:"target"`
	Repetitions int        `yaml:"repetitions"`
	BytesTotal  int        `yaml:"bytesTotal"`
	Tests       []TestSpec `yaml:"tests"`
}

type TestSpec struct {
	Name             string `yaml:"name"`
	BytesPerTransfer int    `yaml:"bytesPerTransfer"`
	// Transfers overrides BytesTotal / BytesPerTransfer when set.
	Transfers int `yaml:"transfers"`
}

// Task is one row to measure: a test at a repetition number.
type Task struct {
	Index            int
	Name             string
	Nr               int
	Transfers        int
	BytesPerTransfer int
}

type Result struct {
	Task      Task
	Duration  time.Duration
	Error     error
	WorkerID  int
	StartTime time.Time
	EndTime   time.Time
}
