package filtering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// ExcludedCandidates is the content of an exclude file.
type ExcludedCandidates struct {
	Items []*ExcludedCandidate `json:"items"`
}

// ExcludedCandidate names a résumé file that must not be screened again.
type ExcludedCandidate struct {
	// Name matches either the file name or the full path of a candidate.
	Name       string    `json:"name"`
	Reason     string    `json:"reason,omitempty"`
	ExcludedAt time.Time `json:"excluded_at,omitempty"`
}

// LoadExcludedCandidates reads an exclude file. An empty file yields an empty list.
func LoadExcludedCandidates(path string) (*ExcludedCandidates, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &ExcludedCandidates{}, nil
	}

	var excluded ExcludedCandidates
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

// Reasons maps every excluded name to its reason.
func (e *ExcludedCandidates) Reasons() map[string]string {
	out := make(map[string]string, len(e.Items))
	for _, item := range e.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		reason := strings.TrimSpace(item.Reason)
		if reason == "" {
			reason = "listed in exclude file"
		}
		out[name] = reason
	}
	return out
}

type excludeFileFilter struct {
	path     string
	disabled string
	loaded   int
}

// NewExcludeFile creates a filter that removes candidates listed in an exclude file.
func NewExcludeFile(path string) Filter {
	return &excludeFileFilter{path: strings.TrimSpace(path)}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(reason string) { f.disabled = reason }

func (f *excludeFileFilter) IsEnabled() bool { return f.disabled == "" }

func (f *excludeFileFilter) Validate() error {
	if f.path == "" {
		return nil
	}
	info, err := os.Stat(f.path)
	if err != nil {
		return fmt.Errorf("exclude file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("exclude file %q is a directory", f.path)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, newStep(initial, c, nil), nil
	}

	excluded, err := LoadExcludedCandidates(f.path)
	if err != nil {
		return c, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}
	reasons := excluded.Reasons()
	f.loaded = len(reasons)

	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		if why, ok := reasons[item.Name]; ok {
			return why
		}
		return reasons[item.Path]
	})

	return c, newStep(initial, c, removed), nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
		details["entries"] = fmt.Sprint(f.loaded)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.disabled, Details: details}
}
