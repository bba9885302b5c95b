package model

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/corpus"
)

// EvalOptions controls the holdout split.
type EvalOptions struct {
	TestFraction float64
	Seed         uint64
}

// DefaultEvalOptions holds out 20% of every category with seed 42.
func DefaultEvalOptions() EvalOptions {
	return EvalOptions{TestFraction: 0.2, Seed: 42}
}

// CategoryMetrics are the per-category holdout results.
type CategoryMetrics struct {
	Category  string  `json:"category"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarises a holdout run.
type Evaluation struct {
	TrainSize  int               `json:"train_size"`
	TestSize   int               `json:"test_size"`
	Accuracy   float64           `json:"accuracy"`
	MacroF1    float64           `json:"macro_f1"`
	Categories []CategoryMetrics `json:"categories"`
}

// Evaluate trains on a stratified split of docs and scores the held-out part.
// Categories with a single document stay entirely in the training part.
func Evaluate(ctx context.Context, docs []corpus.Document, cfg Config, opts EvalOptions) (*Evaluation, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = DefaultEvalOptions().TestFraction
	}

	train, test := stratifiedSplit(docs, opts)
	if len(test) == 0 {
		return nil, apperrors.Data("evaluate model", "too few documents per category for a holdout split")
	}

	m, err := Train(ctx, train, cfg)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(test))
	for i, doc := range test {
		texts[i] = doc.Text
	}
	predicted := m.Predict(m.Transform(texts))

	type counts struct{ tp, fp, fn, support int }
	perCategory := make(map[string]*counts)
	get := func(label string) *counts {
		c, ok := perCategory[label]
		if !ok {
			c = &counts{}
			perCategory[label] = c
		}
		return c
	}

	correct := 0
	for i, doc := range test {
		actual := doc.Category
		get(actual).support++
		if predicted[i] == actual {
			correct++
			get(actual).tp++
			continue
		}
		get(actual).fn++
		get(predicted[i]).fp++
	}

	eval := &Evaluation{
		TrainSize: len(train),
		TestSize:  len(test),
		Accuracy:  float64(correct) / float64(len(test)),
	}

	labels := make([]string, 0, len(perCategory))
	for label := range perCategory {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var f1Sum float64
	for _, label := range labels {
		c := perCategory[label]
		precision := ratio(c.tp, c.tp+c.fp)
		recall := ratio(c.tp, c.tp+c.fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		f1Sum += f1
		eval.Categories = append(eval.Categories, CategoryMetrics{
			Category:  label,
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   c.support,
		})
	}
	eval.MacroF1 = f1Sum / float64(len(labels))

	return eval, nil
}

func stratifiedSplit(docs []corpus.Document, opts EvalOptions) (train, test []corpus.Document) {
	byCategory := make(map[string][]int)
	for i, doc := range docs {
		byCategory[doc.Category] = append(byCategory[doc.Category], i)
	}
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	for _, category := range categories {
		idx := byCategory[category]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		holdout := int(float64(len(idx))*opts.TestFraction + 0.5)
		if holdout >= len(idx) {
			holdout = len(idx) - 1
		}
		for n, i := range idx {
			if n < holdout {
				test = append(test, docs[i])
			} else {
				train = append(train, docs[i])
			}
		}
	}
	return train, test
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
