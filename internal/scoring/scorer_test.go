package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/corpus"
	"github.com/spigell/cv-screener/internal/model"
	"github.com/spigell/cv-screener/internal/textrep"
)

// stubModel maps every text to the same unit vector and returns fixed category scores.
type stubModel struct {
	category   float64
	known      bool
	transforms int
}

func (s *stubModel) Transform(texts []string) []textrep.Vector {
	s.transforms++
	out := make([]textrep.Vector, len(texts))
	for i := range texts {
		v, _ := textrep.NewVector(1, []int{0}, []float64{1})
		out[i] = v
	}
	return out
}

func (s *stubModel) CategoryProbabilities(vectors []textrep.Vector, label string) ([]float64, error) {
	if !s.known {
		return nil, apperrors.UnknownCategory("stub", label)
	}
	return s.fill(len(vectors), s.category), nil
}

func (s *stubModel) MaxProbabilities(vectors []textrep.Vector) []float64 {
	return s.fill(len(vectors), 0.9)
}

func (s *stubModel) fill(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func trainedModel(t *testing.T) *model.Model {
	t.Helper()

	docs := []corpus.Document{
		{Category: "HR", Text: "recruitment onboarding payroll administration employee relations"},
		{Category: "HR", Text: "talent acquisition interviews hiring onboarding benefits"},
		{Category: "HR", Text: "payroll benefits compensation employee engagement policies"},
		{Category: "HR", Text: "employee relations performance reviews recruitment training"},
		{Category: "HR", Text: "hiring coordinator interviews onboarding compliance payroll"},
		{Category: "Data Science", Text: "python machine learning statistics pandas modeling"},
		{Category: "Data Science", Text: "deep learning tensorflow python neural networks"},
		{Category: "Data Science", Text: "statistics regression analysis python sql"},
		{Category: "Data Science", Text: "machine learning feature engineering scikit python"},
		{Category: "Data Science", Text: "data visualization pandas statistics sql dashboards"},
	}
	m, err := model.Train(context.Background(), docs, model.DefaultConfig())
	require.NoError(t, err)
	return m
}

func validRequest() JobRequest {
	return JobRequest{
		TargetCategory: "Data Science",
		Description:    "python machine learning engineer with statistics and pandas",
		ShortlistSize:  3,
		MinScore:       0.3,
	}
}

func TestJobRequestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*JobRequest)
	}{
		{name: "zero shortlist", mutate: func(r *JobRequest) { r.ShortlistSize = 0 }},
		{name: "negative shortlist", mutate: func(r *JobRequest) { r.ShortlistSize = -2 }},
		{name: "min score above one", mutate: func(r *JobRequest) { r.MinScore = 1.5 }},
		{name: "negative min score", mutate: func(r *JobRequest) { r.MinScore = -0.1 }},
		{name: "empty description", mutate: func(r *JobRequest) { r.Description = "" }},
		{name: "blank description", mutate: func(r *JobRequest) { r.Description = " \n\t" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := validRequest()
			tt.mutate(&req)

			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	assert.NoError(t, validRequest().Validate())
}

func TestScoreValidatesBeforeScoring(t *testing.T) {
	stub := &stubModel{known: true}
	s, err := New(stub)
	require.NoError(t, err)

	req := validRequest()
	req.ShortlistSize = 0
	_, err = s.Score(req, []string{"python"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	req = validRequest()
	req.MinScore = 1.5
	_, err = s.Score(req, []string{"python"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Zero(t, stub.transforms)
}

func TestScoreEmptyBatchDoesNotTouchModel(t *testing.T) {
	stub := &stubModel{known: true}
	s, err := New(stub)
	require.NoError(t, err)

	scores, err := s.Score(validRequest(), nil)
	require.NoError(t, err)
	assert.NotNil(t, scores)
	assert.Empty(t, scores)
	assert.Zero(t, stub.transforms)
}

func TestScoreThresholdIsInclusive(t *testing.T) {
	stub := &stubModel{known: true, category: 0}
	s, err := New(stub, WithWeights(Weights{Category: 0.5, Similarity: 0.5}))
	require.NoError(t, err)

	req := validRequest()
	req.MinScore = 0.5
	scores, err := s.Score(req, []string{"anything"})
	require.NoError(t, err)
	require.Len(t, scores, 1)

	assert.Equal(t, 0.5, scores[0].FinalScore)
	assert.True(t, scores[0].MeetsThreshold)
}

func TestScoreUnknownCategoryFallback(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s, err := New(trainedModel(t), WithLogger(zap.New(core)))
	require.NoError(t, err)

	req := validRequest()
	req.TargetCategory = "Chef"
	batch, err := s.ScoreBatch(req, []string{"python statistics", "payroll onboarding"})
	require.NoError(t, err)

	assert.True(t, batch.CategoryFallback)
	require.Len(t, batch.Scores, 2)
	for _, sc := range batch.Scores {
		assert.GreaterOrEqual(t, sc.CategoryScore, 0.5, "max probability of two classes is at least 0.5")
		assert.LessOrEqual(t, sc.CategoryScore, 1.0)
	}

	warnings := logs.FilterMessage("target category is unknown, using max class probability").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Chef", warnings[0].ContextMap()["category"])
}

func TestScoreUnknownCategoryReject(t *testing.T) {
	s, err := New(trainedModel(t), WithFallback(FallbackReject))
	require.NoError(t, err)

	req := validRequest()
	req.TargetCategory = "Chef"
	_, err = s.Score(req, []string{"python"})
	assert.ErrorIs(t, err, apperrors.ErrUnknownCategory)
}

func TestScoreEndToEnd(t *testing.T) {
	s, err := New(trainedModel(t))
	require.NoError(t, err)

	texts := []string{
		"payroll administration and employee onboarding specialist",
		"python developer with machine learning statistics and pandas experience",
		"chef with ten years of restaurant cooking",
	}
	scores, err := s.Score(validRequest(), texts)
	require.NoError(t, err)
	require.Len(t, scores, len(texts))

	for i, sc := range scores {
		assert.Equal(t, i+1, sc.CandidateID)
		for _, v := range []float64{sc.CategoryScore, sc.SimilarityScore, sc.FinalScore} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
		assert.InDelta(t, 0.4*sc.CategoryScore+0.6*sc.SimilarityScore, sc.FinalScore, 1e-12)
		assert.Equal(t, sc.FinalScore >= 0.3, sc.MeetsThreshold)
	}

	match := scores[1]
	for _, other := range []CandidateScore{scores[0], scores[2]} {
		assert.Greater(t, match.CategoryScore, other.CategoryScore)
		assert.Greater(t, match.SimilarityScore, other.SimilarityScore)
		assert.Greater(t, match.FinalScore, other.FinalScore)
	}

	again, err := s.Score(validRequest(), texts)
	require.NoError(t, err)
	assert.Equal(t, scores, again)
}

func TestScoreIsIdenticalAcrossIndependentFits(t *testing.T) {
	texts := []string{
		"payroll administration and employee onboarding specialist",
		"python developer with machine learning statistics and pandas experience",
		"chef with ten years of restaurant cooking",
	}

	first, err := New(trainedModel(t))
	require.NoError(t, err)
	second, err := New(trainedModel(t))
	require.NoError(t, err)

	a, err := first.Score(validRequest(), texts)
	require.NoError(t, err)
	b, err := second.Score(validRequest(), texts)
	require.NoError(t, err)
	require.Equal(t, a, b)

	unknown := validRequest()
	unknown.TargetCategory = "Chef"
	a, err = first.Score(unknown, texts)
	require.NoError(t, err)
	b, err = second.Score(unknown, texts)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&stubModel{}, WithWeights(Weights{Category: 0.7, Similarity: 0.7}))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = New(&stubModel{}, WithWeights(Weights{Category: -0.5, Similarity: 1.5}))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = New(&stubModel{}, WithFallback("guess"))
	assert.Error(t, err)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackMaxProbability, p)

	p, err = ParseFallbackPolicy("reject")
	require.NoError(t, err)
	assert.Equal(t, FallbackReject, p)

	_, err = ParseFallbackPolicy("nope")
	assert.Error(t, err)
}
