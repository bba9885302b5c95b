package filtering

import (
	"context"
	"fmt"
	"strconv"
)

type minSkillsFilter struct {
	min       int
	requested int
	disabled  string
}

// NewMinSkills drops candidates matching fewer than min of the requested skills.
// It disables itself when no minimum is set or the job lists no skills.
func NewMinSkills(min, requested int) Filter {
	f := &minSkillsFilter{min: min, requested: requested}
	switch {
	case min == 0:
		f.disabled = "no minimum configured"
	case requested == 0:
		f.disabled = "job lists no skills"
	}
	return f
}

func (f *minSkillsFilter) Name() string { return "min_skills" }

func (f *minSkillsFilter) Disable(reason string) { f.disabled = reason }

func (f *minSkillsFilter) IsEnabled() bool { return f.disabled == "" }

func (f *minSkillsFilter) Validate() error {
	if f.min < 0 {
		return fmt.Errorf("minimum skills must not be negative, got %d", f.min)
	}
	return nil
}

func (f *minSkillsFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		if got := len(item.Profile.Skills); got < f.min {
			return fmt.Sprintf("matched %d of %d skills, need %d", got, f.requested, f.min)
		}
		return ""
	})
	return c, newStep(initial, c, removed), nil
}

func (f *minSkillsFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.disabled,
		Details: map[string]string{"min": strconv.Itoa(f.min), "requested": strconv.Itoa(f.requested)},
	}
}

type minExperienceFilter struct {
	years    float64
	disabled string
}

// NewMinExperience drops candidates stating fewer years of experience than years.
func NewMinExperience(years float64) Filter {
	f := &minExperienceFilter{years: years}
	if years == 0 {
		f.disabled = "no minimum configured"
	}
	return f
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Disable(reason string) { f.disabled = reason }

func (f *minExperienceFilter) IsEnabled() bool { return f.disabled == "" }

func (f *minExperienceFilter) Validate() error {
	if f.years < 0 {
		return fmt.Errorf("minimum experience must not be negative, got %v", f.years)
	}
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		if got := item.Profile.ExperienceYears; float64(got) < f.years {
			return fmt.Sprintf("%d year(s) of experience stated, need %g", got, f.years)
		}
		return ""
	})
	return c, newStep(initial, c, removed), nil
}

type emailRequiredFilter struct {
	disabled string
}

// NewEmailRequired drops candidates without a contact email. Pass false to keep it disabled.
func NewEmailRequired(required bool) Filter {
	f := &emailRequiredFilter{}
	if !required {
		f.disabled = "email not required"
	}
	return f
}

func (f *emailRequiredFilter) Name() string { return "email_required" }

func (f *emailRequiredFilter) Disable(reason string) { f.disabled = reason }

func (f *emailRequiredFilter) IsEnabled() bool { return f.disabled == "" }

func (f *emailRequiredFilter) Validate() error { return nil }

func (f *emailRequiredFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		if !item.Profile.HasEmail() {
			return "no email address found"
		}
		return ""
	})
	return c, newStep(initial, c, removed), nil
}
