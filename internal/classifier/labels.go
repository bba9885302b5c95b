package classifier

import (
	"fmt"
	"sort"
	"strings"
)

// LabelSpace maps category labels to dense indices in [0, Len()).
// Labels are ordered lexicographically so the mapping only depends on the label set.
type LabelSpace struct {
	labels []string
	index  map[string]int
}

// NewLabelSpace builds the label space from the observed labels. Duplicates are collapsed.
func NewLabelSpace(observed []string) (*LabelSpace, error) {
	seen := make(map[string]struct{}, len(observed))
	labels := make([]string, 0)
	for _, label := range observed {
		if strings.TrimSpace(label) == "" {
			return nil, fmt.Errorf("empty category label")
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no category labels observed")
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return &LabelSpace{labels: labels, index: index}, nil
}

// Len returns the number of labels.
func (l *LabelSpace) Len() int { return len(l.labels) }

// Index returns the dense index of label.
func (l *LabelSpace) Index(label string) (int, bool) {
	i, ok := l.index[label]
	return i, ok
}

// Label returns the label at index i.
func (l *LabelSpace) Label(i int) (string, bool) {
	if i < 0 || i >= len(l.labels) {
		return "", false
	}
	return l.labels[i], true
}

// Labels returns a copy of the labels in index order.
func (l *LabelSpace) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

// Encode maps labels to their indices.
func (l *LabelSpace) Encode(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, label := range labels {
		idx, ok := l.index[label]
		if !ok {
			return nil, fmt.Errorf("label %q is not in the label space", label)
		}
		out[i] = idx
	}
	return out, nil
}
