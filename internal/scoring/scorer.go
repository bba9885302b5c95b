package scoring

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/textrep"
)

// FallbackPolicy decides what happens when the target category is unknown to the model.
type FallbackPolicy string

const (
	// FallbackMaxProbability uses each candidate's highest class probability.
	FallbackMaxProbability FallbackPolicy = "max-probability"
	// FallbackReject returns the UnknownCategoryError to the caller.
	FallbackReject FallbackPolicy = "reject"
)

// ParseFallbackPolicy accepts the configuration spelling of a policy.
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch p := FallbackPolicy(s); p {
	case "":
		return FallbackMaxProbability, nil
	case FallbackMaxProbability, FallbackReject:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported category fallback: %s", s)
	}
}

// Weights combine the sub-scores into the final score.
type Weights struct {
	Category   float64
	Similarity float64
}

// DefaultWeights favour textual similarity over the category probability.
func DefaultWeights() Weights {
	return Weights{Category: 0.4, Similarity: 0.6}
}

// Validate requires non-negative weights summing to 1.
func (w Weights) Validate() error {
	if w.Category < 0 || w.Similarity < 0 {
		return apperrors.Validation("validate weights", "weights must be non-negative, got %v/%v", w.Category, w.Similarity)
	}
	if math.Abs(w.Category+w.Similarity-1) > 1e-9 {
		return apperrors.Validation("validate weights", "weights must sum to 1, got %v", w.Category+w.Similarity)
	}
	return nil
}

// Model is the query surface of a trained model.
type Model interface {
	Transform(texts []string) []textrep.Vector
	CategoryProbabilities(vectors []textrep.Vector, label string) ([]float64, error)
	MaxProbabilities(vectors []textrep.Vector) []float64
}

// Scorer scores candidate batches against one model.
type Scorer struct {
	model    Model
	weights  Weights
	fallback FallbackPolicy
	logger   *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

func WithWeights(w Weights) Option {
	return func(s *Scorer) { s.weights = w }
}

func WithFallback(p FallbackPolicy) Option {
	return func(s *Scorer) { s.fallback = p }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns a Scorer with default weights and the max-probability fallback.
func New(m Model, opts ...Option) (*Scorer, error) {
	if m == nil {
		return nil, fmt.Errorf("scorer requires a model")
	}
	s := &Scorer{
		model:    m,
		weights:  DefaultWeights(),
		fallback: FallbackMaxProbability,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.weights.Validate(); err != nil {
		return nil, err
	}
	policy, err := ParseFallbackPolicy(string(s.fallback))
	if err != nil {
		return nil, err
	}
	s.fallback = policy
	return s, nil
}

// Batch is a scored batch plus how the category column was obtained.
type Batch struct {
	Scores []CandidateScore
	// CategoryFallback is set when the target category was unknown and the
	// max-probability fallback produced the category scores.
	CategoryFallback bool
}

// Score returns one CandidateScore per text, in input order.
func (s *Scorer) Score(req JobRequest, texts []string) ([]CandidateScore, error) {
	batch, err := s.ScoreBatch(req, texts)
	if err != nil {
		return nil, err
	}
	return batch.Scores, nil
}

// ScoreBatch is Score with the fallback indicator.
func (s *Scorer) ScoreBatch(req JobRequest, texts []string) (*Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return &Batch{Scores: []CandidateScore{}}, nil
	}

	inputs := make([]string, 0, len(texts)+1)
	inputs = append(inputs, texts...)
	inputs = append(inputs, req.Description)
	vectors := s.model.Transform(inputs)
	if len(vectors) != len(inputs) {
		return nil, fmt.Errorf("model returned %d vectors for %d texts", len(vectors), len(inputs))
	}
	candidates, job := vectors[:len(texts)], vectors[len(texts)]

	batch := &Batch{Scores: make([]CandidateScore, len(texts))}
	categoryScores, err := s.model.CategoryProbabilities(candidates, req.TargetCategory)
	if err != nil {
		if !errors.Is(err, apperrors.ErrUnknownCategory) || s.fallback == FallbackReject {
			return nil, err
		}
		s.logger.Warn("target category is unknown, using max class probability",
			zap.String("category", req.TargetCategory),
			zap.Int("candidates", len(texts)),
		)
		categoryScores = s.model.MaxProbabilities(candidates)
		batch.CategoryFallback = true
	}

	for i, vec := range candidates {
		similarity, err := textrep.CosineSimilarity(vec, job)
		if err != nil {
			return nil, fmt.Errorf("similarity for candidate %d: %w", i+1, err)
		}
		category := clamp01(categoryScores[i])
		final := clamp01(s.weights.Category*category + s.weights.Similarity*similarity)

		batch.Scores[i] = CandidateScore{
			CandidateID:     i + 1,
			CategoryScore:   category,
			SimilarityScore: similarity,
			FinalScore:      final,
			MeetsThreshold:  final >= req.MinScore,
		}
	}

	return batch, nil
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x) || x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
