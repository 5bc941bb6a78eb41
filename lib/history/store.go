package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"percipio.com/xferhist/lib/git"
	"percipio.com/xferhist/lib/logger"
	"percipio.com/xferhist/lib/stats"
	"percipio.com/xferhist/lib/util"
)

const (
	summaryFile  = "summary.json"
	runTimestamp = "20060102-150405.000000000"
)

type Store struct {
	baseDir      string
	thresholdPct float64
	gitInfo      GitMetadata
	now          func() time.Time
}

func NewStore(baseDir string, thresholdPct float64, useGit bool) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("history directory is required")
	}

	commitInfo, err := git.GetCommitInfo(useGit)
	if err != nil {
		logger.Warn("Git information not available: %v. Using timestamp-based tracking.", err)
		commitInfo, _ = git.GetCommitInfo(false)
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}

	return &Store{
		baseDir:      baseDir,
		thresholdPct: thresholdPct,
		gitInfo: GitMetadata{
			CommitHash: commitInfo.Hash,
			ShortHash:  commitInfo.ShortHash,
			Branch:     commitInfo.Branch,
			RepoName:   commitInfo.RepoName,
			Timestamp:  commitInfo.Timestamp,
		},
		now: time.Now,
	}, nil
}

// Save records a run and compares it with the latest earlier run of the same
// source and column.
func (s *Store) Save(source, column string, summaries []*stats.Summary) (*Run, error) {
	now := s.now()
	run := &Run{
		RunID:        uuid.NewString(),
		Timestamp:    now,
		Source:       source,
		Column:       column,
		Groups:       summaries,
		ThresholdPct: s.thresholdPct,
		GitInfo:      s.gitInfo,
	}

	previous, err := s.LoadLatest(source, column)
	if err != nil {
		logger.Warn("Failed to load previous run: %v", err)
	} else if previous != nil {
		run.BaselineID = previous.RunID
		run.Comparisons, run.Regression = s.compareWithBaseline(run, previous)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, err
	}

	filename := filepath.Join(s.baseDir, fmt.Sprintf("%s_%s.json", now.UTC().Format(runTimestamp), run.RunID))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return nil, err
	}

	if err := s.updateSummary(run); err != nil {
		return run, fmt.Errorf("failed to update summary: %w", err)
	}

	return run, nil
}

// LoadLatest returns the most recent run for source and column, or nil when
// there is none.
func (s *Store) LoadLatest(source, column string) (*Run, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" && entry.Name() != summaryFile {
			files = append(files, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))

	for _, name := range files {
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			return nil, err
		}

		var run Run
		if err := json.Unmarshal(data, &run); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		if run.Source == source && run.Column == column {
			return &run, nil
		}
	}

	return nil, nil
}

func (s *Store) compareWithBaseline(current, baseline *Run) (map[string]*Comparison, bool) {
	previous := make(map[string]*stats.Summary, len(baseline.Groups))
	for _, g := range baseline.Groups {
		previous[g.Name] = g
	}

	comparisons := make(map[string]*Comparison)
	regression := false
	for _, g := range current.Groups {
		prev, ok := previous[g.Name]
		if !ok {
			continue
		}

		c := &Comparison{
			Current:        g,
			Previous:       prev,
			AvgIncreasePct: util.CalculatePercentageChange(g.Avg, prev.Avg),
			StdIncreasePct: util.CalculatePercentageChange(g.Std, prev.Std),
		}
		c.Regression = c.AvgIncreasePct > s.thresholdPct
		comparisons[g.Name] = c

		if c.Regression {
			regression = true
		}
	}

	return comparisons, regression
}

func (s *Store) updateSummary(current *Run) error {
	summary, err := s.GetSummary()
	if err != nil {
		return err
	}

	summary.LastRun = current.Timestamp
	summary.RunCount++
	summary.History = append(summary.History, current.RunID)
	summary.Regression = current.Regression

	for _, g := range current.Groups {
		key := trendKey(current.Source, current.Column, g.Name)
		summary.GroupHistory[key] = append(summary.GroupHistory[key], TrendPoint{
			RunID:      current.RunID,
			CommitHash: current.GitInfo.CommitHash,
			Timestamp:  current.Timestamp,
			Count:      g.Count,
			Avg:        g.Avg,
			Max:        g.Max,
		})
		logger.Debug("Group %s has %d history points", key, len(summary.GroupHistory[key]))
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.baseDir, summaryFile), data, 0644)
}

func (s *Store) GetSummary() (*Summary, error) {
	summary := &Summary{GroupHistory: make(map[string][]TrendPoint)}

	data, err := os.ReadFile(filepath.Join(s.baseDir, summaryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return summary, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	if summary.GroupHistory == nil {
		summary.GroupHistory = make(map[string][]TrendPoint)
	}

	return summary, nil
}

func trendKey(source, column, group string) string {
	return strings.Join([]string{filepath.Base(source), column, group}, "/")
}
