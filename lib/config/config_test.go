package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"percipio.com/xferhist/lib/logger"
)

func TestParse_DefaultsFollowProgramName(t *testing.T) {
	cfg, err := Parse("/opt/eval/plot/testHist", nil, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, CommandAnalyze, cfg.Command)
	assert.Equal(t, "testHist", cfg.Name)
	assert.Equal(t, DefaultColumn, cfg.Column)
	assert.Equal(t, DefaultBins, cfg.Bins)
	assert.Equal(t, "testHist.dat", cfg.DataPath())
	assert.Equal(t, "testHist.pdf", cfg.PlotPath())
}

func TestParse_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("XFERHIST_NAME", "fromenv")
	t.Setenv("XFERHIST_BINS", "25")

	cfg, err := Parse("xferhist", []string{"-name", "fromflag", "-dir", "data"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "fromflag", cfg.Name)
	assert.Equal(t, 25, cfg.Bins)
	assert.Equal(t, filepath.Join("data", "fromflag.dat"), cfg.DataPath())
	assert.Equal(t, filepath.Join("data", "fromflag.pdf"), cfg.PlotPath())
}

func TestParse_InvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("XFERHIST_THRESHOLD", "lots")

	cfg, err := Parse("xferhist", nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, DefaultThresholdPct, cfg.ThresholdPct)
}

func TestParse_Commands(t *testing.T) {
	t.Run("unknown command", func(t *testing.T) {
		_, err := Parse("xferhist", []string{"plot"}, io.Discard)
		assert.True(t, errors.Is(err, ErrUsage))
	})

	t.Run("bench requires a plan", func(t *testing.T) {
		_, err := Parse("xferhist", []string{"bench"}, io.Discard)
		assert.True(t, errors.Is(err, ErrUsage))
	})

	t.Run("bench with a plan", func(t *testing.T) {
		plan := filepath.Join(t.TempDir(), "plan.yaml")
		require.NoError(t, os.WriteFile(plan, []byte("target: http://x\n"), 0644))

		cfg, err := Parse("xferhist", []string{"bench", "-p", plan, "-workers", "2"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, CommandBench, cfg.Command)
		assert.Equal(t, plan, cfg.PlanPath)
		assert.Equal(t, 2, cfg.Workers)
	})

	t.Run("serve", func(t *testing.T) {
		cfg, err := Parse("xferhist", []string{"serve", "-addr", "127.0.0.1:0"}, io.Discard)
		require.NoError(t, err)
		assert.Equal(t, CommandServe, cfg.Command)
		assert.Equal(t, "127.0.0.1:0", cfg.Addr)
	})
}

func TestParse_RejectsBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"-bins", "0"},
		{"-threshold", "-1"},
		{"-unknown"},
		{"stray"},
		{"analyze", "stray"},
	} {
		_, err := Parse("xferhist", args, io.Discard)
		assert.Error(t, err, "args %v", args)
	}
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "testHist", BaseName("testHist.py"))
	assert.Equal(t, "testHist", BaseName("/usr/local/bin/testHist"))
	assert.Equal(t, "xferhist", BaseName(`xferhist.exe`))
}

func TestLoad_DotEnv(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	t.Run("missing file is silent", func(t *testing.T) {
		buf.Reset()
		t.Chdir(t.TempDir())

		_, err := Load("xferhist", nil, io.Discard)
		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})

	t.Run("unreadable file is reported", func(t *testing.T) {
		buf.Reset()
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0755))
		t.Chdir(dir)

		_, err := Load("xferhist", nil, io.Discard)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "[WARN] Failed to load .env")
	})
}
