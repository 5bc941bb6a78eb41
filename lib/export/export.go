package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"percipio.com/xferhist/lib/stats"
)

type Report struct {
	Source    string           `json:"source" yaml:"source"`
	Column    string           `json:"column" yaml:"column"`
	Generated time.Time        `json:"generated" yaml:"generated"`
	Groups    []*stats.Summary `json:"groups" yaml:"groups"`
}

// WriteSummaries writes the report as JSON or YAML depending on the
// extension of path.
func WriteSummaries(path string, report Report) error {
	var (
		b   []byte
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		b, err = json.MarshalIndent(report, "", "  ")
	case ".yaml", ".yml":
		b, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unsupported summary format %q (use .json or .yaml)", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to encode summaries: %w", err)
	}

	return os.WriteFile(path, b, 0644)
}
