package stats

import (
	"encoding/json"
	"math"
)

// summaryJSON carries Std as a pointer: JSON has no NaN, so an undefined
// standard deviation travels as null.
type summaryJSON struct {
	Name   string   `json:"name"`
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Min    float64  `json:"min"`
	Avg    float64  `json:"avg"`
	Std    *float64 `json:"std"`
	Max    float64  `json:"max"`
}

func (s Summary) MarshalJSON() ([]byte, error) {
	out := summaryJSON{
		Name:   s.Name,
		Column: s.Column,
		Count:  s.Count,
		Min:    s.Min,
		Avg:    s.Avg,
		Max:    s.Max,
	}
	if !math.IsNaN(s.Std) {
		std := s.Std
		out.Std = &std
	}
	return json.Marshal(out)
}

func (s *Summary) UnmarshalJSON(b []byte) error {
	var in summaryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	*s = Summary{
		Name:   in.Name,
		Column: in.Column,
		Count:  in.Count,
		Min:    in.Min,
		Avg:    in.Avg,
		Max:    in.Max,
		Std:    math.NaN(),
	}
	if in.Std != nil {
		s.Std = *in.Std
	}
	return nil
}
