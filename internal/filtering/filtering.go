// Package filtering drops candidate résumés that should not reach scoring.
package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/profile"
)

// Candidate is one extracted résumé.
type Candidate struct {
	Path    string
	Name    string
	Text    string
	Profile profile.Profile
}

// Candidates is the working list passed through the filter steps.
type Candidates struct {
	Items []*Candidate
}

// Len returns the number of candidates left.
func (c *Candidates) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Items)
}

// Exclude removes every candidate for which reason returns a non-empty string and
// returns the removals in input order.
func (c *Candidates) Exclude(filter string, reason func(*Candidate) string) []Removal {
	kept := c.Items[:0]
	var removed []Removal
	for _, item := range c.Items {
		if why := reason(item); why != "" {
			removed = append(removed, Removal{Candidate: item, Filter: filter, Reason: why})
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	return removed
}

// Removal records why a candidate was dropped.
type Removal struct {
	Candidate *Candidate
	Filter    string
	Reason    string
}

// Filter represents a single filtering step applied to candidates.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, c *Candidates) (*Candidates, Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
	Removed []Removal
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run validates the enabled filters, then applies them in order.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, c *Candidates) (*Candidates, []Removal, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	var removed []Removal
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		next, info, err := step.Apply(ctx, c)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		removed = append(removed, info.Removed...)
		c = next
	}

	return c, removed, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func newStep(initial int, c *Candidates, removed []Removal) Step {
	return Step{Initial: initial, Dropped: len(removed), Left: c.Len(), Removed: removed}
}
