package export

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"percipio.com/xferhist/lib/stats"
)

func sampleReport() Report {
	return Report{
		Source:    "testHist.dat",
		Column:    "transferDuration",
		Generated: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Groups: []*stats.Summary{
			{Name: "A", Column: "transferDuration", Count: 3, Min: 1, Avg: 2, Std: 1, Max: 3},
			{Name: "B", Column: "transferDuration", Count: 1, Min: 5, Avg: 5, Std: math.NaN(), Max: 5},
		},
	}
}

func TestWriteSummaries_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	require.NoError(t, WriteSummaries(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"std": null`)

	var got Report
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "testHist.dat", got.Source)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, 1.0, got.Groups[0].Std)
	assert.True(t, math.IsNaN(got.Groups[1].Std))
}

func TestWriteSummaries_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, WriteSummaries(path, sampleReport()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Report
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, "transferDuration", got.Column)
	require.Len(t, got.Groups, 2)
	assert.Equal(t, "B", got.Groups[1].Name)
	assert.True(t, math.IsNaN(got.Groups[1].Std))
}

func TestWriteSummaries_UnsupportedFormat(t *testing.T) {
	assert.Error(t, WriteSummaries(filepath.Join(t.TempDir(), "summary.csv"), sampleReport()))
}
