package filtering

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/spigell/cv-screener/internal/textrep"
)

type emptyTextFilter struct {
	disabled string
}

// NewEmptyText drops candidates without a single token.
func NewEmptyText() Filter {
	return &emptyTextFilter{}
}

func (f *emptyTextFilter) Name() string { return "empty_text" }

func (f *emptyTextFilter) Disable(reason string) { f.disabled = reason }

func (f *emptyTextFilter) IsEnabled() bool { return f.disabled == "" }

func (f *emptyTextFilter) Validate() error { return nil }

func (f *emptyTextFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		if len(textrep.Tokenize(item.Text)) == 0 {
			return "no words in extracted text"
		}
		return ""
	})
	return c, newStep(initial, c, removed), nil
}

type duplicateTextFilter struct {
	disabled string
}

// NewDuplicateText keeps the first of several candidates with the same token stream.
func NewDuplicateText() Filter {
	return &duplicateTextFilter{}
}

func (f *duplicateTextFilter) Name() string { return "duplicate_text" }

func (f *duplicateTextFilter) Disable(reason string) { f.disabled = reason }

func (f *duplicateTextFilter) IsEnabled() bool { return f.disabled == "" }

func (f *duplicateTextFilter) Validate() error { return nil }

func (f *duplicateTextFilter) Apply(_ context.Context, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	seen := make(map[[sha256.Size]byte]string, initial)
	removed := c.Exclude(f.Name(), func(item *Candidate) string {
		sum := sha256.Sum256([]byte(strings.Join(textrep.Tokenize(item.Text), " ")))
		if first, ok := seen[sum]; ok {
			return fmt.Sprintf("same text as %s", first)
		}
		seen[sum] = item.Name
		return ""
	})
	return c, newStep(initial, c, removed), nil
}
