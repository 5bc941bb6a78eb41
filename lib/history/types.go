package history

import (
	"time"

	"percipio.com/xferhist/lib/stats"
)

// Run is one analysis as recorded on disk.
type Run struct {
	RunID        string                 `json:"runId"`
	Timestamp    time.Time              `json:"timestamp"`
	Source       string                 `json:"source"`
	Column       string                 `json:"column"`
	Groups       []*stats.Summary       `json:"groups"`
	BaselineID   string                 `json:"baselineId,omitempty"`
	Comparisons  map[string]*Comparison `json:"comparisons,omitempty"`
	Regression   bool                   `json:"regression"`
	ThresholdPct float64                `json:"thresholdPct"`
	GitInfo      GitMetadata            `json:"gitInfo"`
}

type GitMetadata struct {
	CommitHash string    `json:"commitHash"`
	ShortHash  string    `json:"shortHash"`
	Branch     string    `json:"branch"`
	RepoName   string    `json:"repoName,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Comparison relates one group to the same group in the baseline run.
type Comparison struct {
	Current        *stats.Summary `json:"current"`
	Previous       *stats.Summary `json:"previous"`
	AvgIncreasePct float64        `json:"avgIncreasePct"`
	StdIncreasePct float64        `json:"stdIncreasePct"`
	Regression     bool           `json:"regression"`
}

// TrendPoint is a group's average at one run.
type TrendPoint struct {
	RunID      string    `json:"runId"`
	CommitHash string    `json:"commitHash"`
	Timestamp  time.Time `json:"timestamp"`
	Count      int       `json:"count"`
	Avg        float64   `json:"avg"`
	Max        float64   `json:"max"`
}

type Summary struct {
	LastRun      time.Time               `json:"lastRun"`
	RunCount     int                     `json:"runCount"`
	Regression   bool                    `json:"regression"`
	History      []string                `json:"history"`
	GroupHistory map[string][]TrendPoint `json:"groupHistory"`
}
