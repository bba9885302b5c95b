// Package model bundles the fitted text representation, the category classifier and the
// label space into one immutable unit that answers scoring queries.
package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/classifier"
	"github.com/spigell/cv-screener/internal/corpus"
	"github.com/spigell/cv-screener/internal/textrep"
)

// Config combines the representation and classifier settings.
type Config struct {
	Representation textrep.Config
	Classifier     classifier.Options
}

// DefaultConfig returns the default TF-IDF and logistic regression settings.
func DefaultConfig() Config {
	return Config{
		Representation: textrep.DefaultConfig(),
		Classifier:     classifier.DefaultOptions(),
	}
}

// Model is read-only after Train and safe for concurrent queries.
type Model struct {
	id         string
	trainedAt  time.Time
	documents  int
	vectorizer *textrep.Vectorizer
	classifier classifier.Classifier
	labels     *classifier.LabelSpace
}

// Train fits a new independent model on docs.
func Train(ctx context.Context, docs []corpus.Document, cfg Config) (*Model, error) {
	if len(docs) == 0 {
		return nil, apperrors.Data("train model", "corpus is empty")
	}

	texts := make([]string, len(docs))
	categories := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
		categories[i] = doc.Category
	}

	labels, err := classifier.NewLabelSpace(categories)
	if err != nil {
		return nil, apperrors.Data("train model", "%v", err)
	}
	y, err := labels.Encode(categories)
	if err != nil {
		return nil, fmt.Errorf("encode labels: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vectorizer, err := textrep.Fit(texts, cfg.Representation)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	trainer, err := classifier.NewTrainer(cfg.Classifier)
	if err != nil {
		return nil, err
	}
	fitted, err := trainer.Fit(vectorizer.Transform(texts), y, labels.Len())
	if err != nil {
		return nil, fmt.Errorf("fit classifier: %w", err)
	}

	return &Model{
		id:         uuid.NewString(),
		trainedAt:  time.Now().UTC(),
		documents:  len(docs),
		vectorizer: vectorizer,
		classifier: fitted,
		labels:     labels,
	}, nil
}

// ID identifies this trained instance in logs.
func (m *Model) ID() string { return m.id }

// TrainedAt returns when the model finished fitting.
func (m *Model) TrainedAt() time.Time { return m.trainedAt }

// Documents returns the size of the training corpus.
func (m *Model) Documents() int { return m.documents }

// Dim returns the vocabulary size.
func (m *Model) Dim() int { return m.vectorizer.Dim() }

// Labels returns the known categories in label-space order.
func (m *Model) Labels() []string { return m.labels.Labels() }

// HasCategory reports whether label was seen during training.
func (m *Model) HasCategory(label string) bool {
	_, ok := m.labels.Index(label)
	return ok
}

// Transform maps texts into this model's vector space.
func (m *Model) Transform(texts []string) []textrep.Vector {
	return m.vectorizer.Transform(texts)
}

// Probabilities returns the full class distribution per vector.
func (m *Model) Probabilities(vectors []textrep.Vector) [][]float64 {
	if len(vectors) == 0 {
		return nil
	}
	return m.classifier.PredictProba(vectors)
}

// CategoryProbabilities returns P(label | vector) per vector.
func (m *Model) CategoryProbabilities(vectors []textrep.Vector, label string) ([]float64, error) {
	idx, ok := m.labels.Index(label)
	if !ok {
		return nil, apperrors.UnknownCategory("category probabilities", label)
	}

	proba := m.Probabilities(vectors)
	out := make([]float64, len(proba))
	for i, row := range proba {
		out[i] = row[idx]
	}
	return out, nil
}

// MaxProbabilities returns the highest class probability per vector.
func (m *Model) MaxProbabilities(vectors []textrep.Vector) []float64 {
	proba := m.Probabilities(vectors)
	out := make([]float64, len(proba))
	for i, row := range proba {
		out[i] = floats.Max(row)
	}
	return out
}

// Predict returns the most probable category per vector.
func (m *Model) Predict(vectors []textrep.Vector) []string {
	if len(vectors) == 0 {
		return nil
	}
	idx := classifier.Predict(m.classifier, vectors)
	out := make([]string, len(idx))
	for i, k := range idx {
		out[i], _ = m.labels.Label(k)
	}
	return out
}
