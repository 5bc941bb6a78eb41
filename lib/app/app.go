package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"percipio.com/xferhist/lib/bench"
	"percipio.com/xferhist/lib/config"
	"percipio.com/xferhist/lib/export"
	"percipio.com/xferhist/lib/history"
	"percipio.com/xferhist/lib/logger"
	"percipio.com/xferhist/lib/record"
	"percipio.com/xferhist/lib/sink"
	"percipio.com/xferhist/lib/stats"
	"percipio.com/xferhist/lib/util"
	"percipio.com/xferhist/lib/viz"
)

// Version is set via -ldflags at build time
var Version = "dev"

const sinkService = "xferhist-sink"

type App struct {
	config *config.Config
	stdout io.Writer
}

// New parses the command line. program is argv[0]; its base name is the
// default name of the data and plot files.
func New(program string, args []string, stdout, stderr io.Writer) (*App, error) {
	cfg, err := config.Load(program, args, stderr)
	if err != nil {
		return nil, err
	}

	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	logger.Debug("Configuration: %+v", *cfg)

	return &App{
		config: cfg,
		stdout: stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	switch a.config.Command {
	case config.CommandBench:
		return a.runBench(ctx)
	case config.CommandServe:
		return a.runServe(ctx)
	default:
		return a.runAnalyze()
	}
}

func (a *App) runAnalyze() error {
	cfg := a.config
	dataPath := cfg.DataPath()

	table, err := record.Load(dataPath)
	if err != nil {
		return err
	}
	if len(table) == 0 {
		return fmt.Errorf("%s: %w", dataPath, record.ErrNoRecords)
	}
	logger.Info("Loaded %d records from %s", len(table), dataPath)

	ex, err := record.Column(cfg.Column)
	if err != nil {
		return err
	}

	groups := record.GroupByName(table)
	summaries, err := stats.Summarize(groups, cfg.Column)
	if err != nil {
		return err
	}

	if err := stats.WriteReport(a.stdout, summaries); err != nil {
		return err
	}

	opts := viz.DefaultHistogramOptions(cfg.Column)
	opts.Bins = cfg.Bins
	if err := viz.RenderHistogram(cfg.PlotPath(), groups, ex, opts); err != nil {
		return err
	}
	logger.Info("Histogram of %d groups written to %s", len(groups), cfg.PlotPath())

	if cfg.SummaryPath != "" {
		report := export.Report{
			Source:    filepath.Base(dataPath),
			Column:    cfg.Column,
			Generated: time.Now().UTC(),
			Groups:    summaries,
		}
		if err := export.WriteSummaries(cfg.SummaryPath, report); err != nil {
			return err
		}
		logger.Info("Summaries exported to %s", cfg.SummaryPath)
	}

	if cfg.ChartPath != "" {
		if err := viz.RenderSummaryChart(cfg.ChartPath, summaries); err != nil {
			return err
		}
		logger.Info("Average chart written to %s", cfg.ChartPath)
	}

	if cfg.HistoryDir != "" {
		a.recordHistory(filepath.Base(dataPath), summaries)
	}

	return nil
}

// recordHistory is best effort: a broken history directory must not fail the
// analysis.
func (a *App) recordHistory(source string, summaries []*stats.Summary) {
	cfg := a.config

	store, err := history.NewStore(cfg.HistoryDir, cfg.ThresholdPct, !cfg.NoGit)
	if err != nil {
		logger.Warn("Failed to initialize history store: %v. Continuing without history tracking.", err)
		return
	}

	run, err := store.Save(source, cfg.Column, summaries)
	if err != nil {
		logger.Error("Failed to save run history: %v", err)
		return
	}
	if run.BaselineID == "" {
		logger.Info("Recorded run %s (no baseline yet)", run.RunID)
		return
	}

	logger.Info("Recorded run %s, baseline %s", run.RunID, run.BaselineID)
	for _, s := range summaries {
		c, ok := run.Comparisons[s.Name]
		if !ok {
			continue
		}
		if c.Regression {
			logger.Warn("Regression in %s: avg %s -> %s (%s%%, threshold %s%%)", s.Name,
				stats.FormatValue(c.Previous.Avg), stats.FormatValue(c.Current.Avg),
				util.FormatChange(c.AvgIncreasePct), util.FormatFloat(cfg.ThresholdPct))
		} else {
			logger.Info("%s: avg change %s%%, std change %s%%", s.Name,
				util.FormatChange(c.AvgIncreasePct), util.FormatChange(c.StdIncreasePct))
		}
	}
}

func (a *App) runBench(ctx context.Context) error {
	cfg := a.config

	plan, err := bench.LoadPlan(cfg.PlanPath)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d tests from %s", len(plan.Tests), cfg.PlanPath)

	table, err := bench.NewRunner(cfg.Workers, cfg.RPS).Run(ctx, plan)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	dataPath := cfg.DataPath()
	if err := writeTable(dataPath, table); err != nil {
		return err
	}
	logger.Info("Wrote %d records to %s", len(table), dataPath)
	return nil
}

func writeTable(path string, table record.Table) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	return record.Write(f, table)
}

func (a *App) runServe(ctx context.Context) error {
	if logger.ParseLevel(a.config.LogLevel) != logger.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	return sink.New(sinkService, Version).Run(ctx, a.config.Addr)
}
