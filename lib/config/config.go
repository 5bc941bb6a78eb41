package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"percipio.com/xferhist/lib/logger"
)

const (
	CommandAnalyze = "analyze"
	CommandBench   = "bench"
	CommandServe   = "serve"
)

var ErrUsage = errors.New("usage error")

type Config struct {
	Command string

	// Analysis
	Name         string
	Dir          string
	Column       string
	Bins         int
	OutPath      string
	SummaryPath  string
	ChartPath    string
	HistoryDir   string
	ThresholdPct float64
	NoGit        bool

	// Benchmark
	PlanPath string
	Workers  int
	RPS      float64

	// Sink
	Addr string

	LogLevel string
}

// DataPath is the input table, <dir>/<name>.dat.
func (c *Config) DataPath() string {
	return filepath.Join(c.Dir, c.Name+DataExt)
}

// PlotPath is the histogram output, <dir>/<name>.pdf unless -out is set.
func (c *Config) PlotPath() string {
	if c.OutPath != "" {
		return c.OutPath
	}
	return filepath.Join(c.Dir, c.Name+PlotExt)
}

// Load reads an optional .env file, then parses args (without the program
// name) on top of the environment. program is used to derive the default
// base name.
func Load(program string, args []string, stderr io.Writer) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env: %v", err)
	}

	return Parse(program, args, stderr)
}

func Parse(program string, args []string, stderr io.Writer) (*Config, error) {
	d := GetDefaults()
	config := &Config{Command: CommandAnalyze}

	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		config.Command = args[0]
		args = args[1:]
	}

	switch config.Command {
	case CommandAnalyze, CommandBench, CommandServe:
	default:
		return nil, fmt.Errorf("%w: unknown command %q", ErrUsage, config.Command)
	}

	fs := flag.NewFlagSet(BaseName(program), flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&config.Name, "name", getEnv("XFERHIST_NAME", BaseName(program)), "Base name of the .dat input and .pdf output")
	fs.StringVar(&config.Dir, "dir", getEnv("XFERHIST_DIR", "."), "Directory holding the data and plot files")
	fs.StringVar(&config.Column, "column", getEnv("XFERHIST_COLUMN", d.Column), "Numeric column to summarise and plot")
	fs.IntVar(&config.Bins, "bins", getEnvAsInt("XFERHIST_BINS", d.Bins), "Histogram bins per name")
	fs.StringVar(&config.OutPath, "out", getEnv("XFERHIST_OUT", ""), "Histogram output path (extension selects the format)")
	fs.StringVar(&config.SummaryPath, "summary", getEnv("XFERHIST_SUMMARY", ""), "Export summaries to a .json or .yaml file")
	fs.StringVar(&config.ChartPath, "chart", getEnv("XFERHIST_CHART", ""), "Render a bar chart of averages to a .png or .svg file")
	fs.StringVar(&config.HistoryDir, "history", getEnv("XFERHIST_HISTORY_DIR", ""), "Record runs in this directory and compare with the previous run")
	fs.Float64Var(&config.ThresholdPct, "threshold", getEnvAsFloat("XFERHIST_THRESHOLD", d.ThresholdPct), "Regression threshold in percent")
	fs.BoolVar(&config.NoGit, "no-git", getEnvAsBool("XFERHIST_NO_GIT", false), "Use timestamp-based hashes instead of git commits")

	fs.StringVar(&config.PlanPath, "plan", getEnv("XFERHIST_PLAN", ""), "YAML benchmark plan")
	fs.StringVar(&config.PlanPath, "p", getEnv("XFERHIST_PLAN", ""), "YAML benchmark plan (shorthand)")
	fs.IntVar(&config.Workers, "workers", getEnvAsInt("XFERHIST_WORKERS", d.Workers), "Benchmark workers")
	fs.Float64Var(&config.RPS, "rps", getEnvAsFloat("XFERHIST_RPS", 0), "Benchmark transfer rate limit per second (0 = unlimited)")

	fs.StringVar(&config.Addr, "addr", getEnv("XFERHIST_ADDR", d.Addr), "Sink listen address")

	config.LogLevel = getEnv("LOG_LEVEL", d.LogLevel)

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: %s [analyze|bench|serve] [options]

Commands:
  analyze   Summarise <name>.dat per name and plot a histogram to <name>.pdf (default)
  bench     Time transfers described by a plan and write <name>.dat
  serve     Run the HTTP sink that bench transfers to

Options:
`, fs.Name())
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: base name is empty", ErrUsage)
	}
	if c.Bins < 1 {
		return fmt.Errorf("%w: -bins must be at least 1", ErrUsage)
	}
	if c.ThresholdPct < 0 {
		return fmt.Errorf("%w: -threshold must not be negative", ErrUsage)
	}

	switch c.Command {
	case CommandBench:
		if c.PlanPath == "" {
			return fmt.Errorf("%w: --plan or -p flag is required", ErrUsage)
		}
		if _, err := os.Stat(c.PlanPath); os.IsNotExist(err) {
			return fmt.Errorf("%w: file %s does not exist", ErrUsage, c.PlanPath)
		}
		if c.Workers < 1 {
			return fmt.Errorf("%w: -workers must be at least 1", ErrUsage)
		}
	case CommandServe:
		if c.Addr == "" {
			return fmt.Errorf("%w: -addr is required", ErrUsage)
		}
	}

	return nil
}

// BaseName strips directories and the extension from a program path, so
// "/usr/local/bin/testHist" and "testHist.exe" both give "testHist".
func BaseName(program string) string {
	base := filepath.Base(program)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Warn("Invalid value %q for %s, using default: %v", valueStr, key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		logger.Warn("Invalid value %q for %s, using default: %v", valueStr, key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Warn("Invalid value %q for %s, using default: %v", valueStr, key, defaultValue)
		return defaultValue
	}

	return value
}
