package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"percipio.com/xferhist/lib/record"
)

var ErrEmptyGroup = errors.New("empty group")

// Summary describes one column of one group. Std is the sample standard
// deviation and is NaN for a single value.
type Summary struct {
	Name   string  `json:"name" yaml:"name"`
	Column string  `json:"column" yaml:"column"`
	Count  int     `json:"count" yaml:"count"`
	Min    float64 `json:"min" yaml:"min"`
	Avg    float64 `json:"avg" yaml:"avg"`
	Std    float64 `json:"std" yaml:"std"`
	Max    float64 `json:"max" yaml:"max"`
}

func Calculate(name, column string, values []float64) (*Summary, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyGroup, name)
	}

	s := &Summary{
		Name:   name,
		Column: column,
		Count:  len(values),
		Min:    floats.Min(values),
		Max:    floats.Max(values),
	}

	if len(values) == 1 {
		s.Avg = values[0]
		s.Std = math.NaN()
		return s, nil
	}

	s.Avg, s.Std = stat.MeanStdDev(values, nil)
	return s, nil
}

// Summarize calculates one summary per group, in group order.
func Summarize(groups []record.Group, column string) ([]*Summary, error) {
	ex, err := record.Column(column)
	if err != nil {
		return nil, err
	}

	summaries := make([]*Summary, 0, len(groups))
	for _, g := range groups {
		s, err := Calculate(g.Name, column, g.Values(ex))
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// WriteReport prints a Name block with Min, Avg, Std and Max lines per
// summary.
func WriteReport(w io.Writer, summaries []*Summary) error {
	for _, s := range summaries {
		if _, err := io.WriteString(w, s.String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Summary) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name %s\n", s.Name))
	sb.WriteString(fmt.Sprintf("Min = %s\n", FormatValue(s.Min)))
	sb.WriteString(fmt.Sprintf("Avg = %s\n", FormatValue(s.Avg)))
	sb.WriteString(fmt.Sprintf("Std = %s\n", FormatValue(s.Std)))
	sb.WriteString(fmt.Sprintf("Max = %s\n", FormatValue(s.Max)))
	return sb.String()
}

// FormatValue prints the shortest representation that round-trips.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
