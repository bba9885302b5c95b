// Package textrep turns raw text into TF-IDF weighted sparse vectors over a fitted
// vocabulary of word n-grams.
package textrep

import (
	"math"
	"sort"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/apperrors"
)

const (
	DefaultMaxFeatures = 5000
	DefaultNgramMin    = 1
	DefaultNgramMax    = 2
)

// Config controls vocabulary construction.
type Config struct {
	MaxFeatures int
	NgramMin    int
	NgramMax    int
	// StopWords replaces the built-in English list when non-nil.
	StopWords []string
}

// DefaultConfig returns unigrams and bigrams capped at 5000 terms.
func DefaultConfig() Config {
	return Config{
		MaxFeatures: DefaultMaxFeatures,
		NgramMin:    DefaultNgramMin,
		NgramMax:    DefaultNgramMax,
	}
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.MaxFeatures <= 0 {
		c.MaxFeatures = DefaultMaxFeatures
	}
	if c.NgramMin <= 0 {
		c.NgramMin = DefaultNgramMin
	}
	if c.NgramMax < c.NgramMin {
		c.NgramMax = c.NgramMin
	}
}

var fitCounter atomic.Uint64

// Vectorizer is a fitted TF-IDF model. It is immutable after Fit.
type Vectorizer struct {
	id    uint64
	vocab map[string]int
	terms []string
	idf   []float64
	stop  map[string]struct{}
	minN  int
	maxN  int
}

// Fit builds the vocabulary and inverse document frequencies from the corpus texts.
func Fit(texts []string, cfg Config) (*Vectorizer, error) {
	cfg.ApplyDefaults()
	if len(texts) == 0 {
		return nil, apperrors.Data("fit representation", "corpus is empty")
	}

	stopWords := cfg.StopWords
	if stopWords == nil {
		stopWords = englishStopWords
	}
	stop := stopWordSet(stopWords)

	counts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, text := range texts {
		seen := make(map[string]struct{})
		for _, term := range terms(text, stop, cfg.NgramMin, cfg.NgramMax) {
			counts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(counts) == 0 {
		return nil, apperrors.Data("fit representation", "every document is empty after stop-word removal")
	}

	selected := make([]string, 0, len(counts))
	for term := range counts {
		selected = append(selected, term)
	}
	sort.Slice(selected, func(i, j int) bool {
		ci, cj := counts[selected[i]], counts[selected[j]]
		if ci != cj {
			return ci > cj
		}
		return selected[i] < selected[j]
	})
	if len(selected) > cfg.MaxFeatures {
		selected = selected[:cfg.MaxFeatures]
	}
	sort.Strings(selected)

	n := float64(len(texts))
	vocab := make(map[string]int, len(selected))
	idf := make([]float64, len(selected))
	for i, term := range selected {
		vocab[term] = i
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	return &Vectorizer{
		id:    fitCounter.Add(1),
		vocab: vocab,
		terms: selected,
		idf:   idf,
		stop:  stop,
		minN:  cfg.NgramMin,
		maxN:  cfg.NgramMax,
	}, nil
}

// Dim returns the vocabulary size.
func (v *Vectorizer) Dim() int { return len(v.terms) }

// Transform maps texts into the fitted vocabulary space. Unknown terms are ignored.
func (v *Vectorizer) Transform(texts []string) []Vector {
	out := make([]Vector, len(texts))
	for i, text := range texts {
		out[i] = v.transformOne(text)
	}
	return out
}

func (v *Vectorizer) transformOne(text string) Vector {
	counts := make(map[int]float64)
	for _, term := range terms(text, v.stop, v.minN, v.maxN) {
		if idx, ok := v.vocab[term]; ok {
			counts[idx]++
		}
	}

	indices := make([]int, 0, len(counts))
	for idx := range counts {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	for i, idx := range indices {
		values[i] = counts[idx] * v.idf[idx]
	}
	if len(values) > 0 {
		if norm := floats.Norm(values, 2); norm > 0 {
			floats.Scale(1/norm, values)
		}
	}

	return Vector{Indices: indices, Values: values, dim: len(v.terms), owner: v.id}
}
