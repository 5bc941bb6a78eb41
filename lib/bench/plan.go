package bench

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidPlan = errors.New("invalid plan")

func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return &plan, nil
}

// Validate checks the plan and fills in a repetition count of 1 when unset.
func (p *Plan) Validate() error {
	u, err := url.Parse(p.Target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: target %q is not an http(s) URL", ErrInvalidPlan, p.Target)
	}
	if p.Repetitions < 0 {
		return fmt.Errorf("%w: repetitions must not be negative", ErrInvalidPlan)
	}
	if p.Repetitions == 0 {
		p.Repetitions = 1
	}
	if len(p.Tests) == 0 {
		return fmt.Errorf("%w: no tests defined", ErrInvalidPlan)
	}

	seen := make(map[string]bool)
	for _, t := range p.Tests {
		if t.Name == "" || strings.ContainsAny(t.Name, " \t\r\n#") {
			return fmt.Errorf("%w: test name %q must be a single word without '#'", ErrInvalidPlan, t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate test %s", ErrInvalidPlan, t.Name)
		}
		seen[t.Name] = true

		if t.BytesPerTransfer < 1 {
			return fmt.Errorf("%w: %s: bytesPerTransfer must be positive", ErrInvalidPlan, t.Name)
		}
		if p.TransfersFor(t) < 1 {
			return fmt.Errorf("%w: %s: needs transfers or a bytesTotal of at least bytesPerTransfer", ErrInvalidPlan, t.Name)
		}
	}

	return nil
}

func (p *Plan) TransfersFor(t TestSpec) int {
	if t.Transfers > 0 {
		return t.Transfers
	}
	return p.BytesTotal / t.BytesPerTransfer
}

// Tasks expands the plan into one task per test and repetition, in plan
// order.
func (p *Plan) Tasks() []Task {
	tasks := make([]Task, 0, len(p.Tests)*p.Repetitions)
	for i, t := range p.Tests {
		for nr := 0; nr < p.Repetitions; nr++ {
			tasks = append(tasks, Task{
				Index:            i,
				Name:             t.Name,
				Nr:               nr,
				Transfers:        p.TransfersFor(t),
				BytesPerTransfer: t.BytesPerTransfer,
			})
		}
	}
	return tasks
}
