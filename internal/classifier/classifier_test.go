package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-screener/internal/textrep"
)

func trainingSet(t *testing.T) ([]textrep.Vector, []int, *textrep.Vectorizer) {
	t.Helper()

	texts := []string{
		"python machine learning statistics",
		"deep learning python tensorflow",
		"data analysis statistics pandas",
		"recruitment onboarding payroll",
		"employee relations payroll benefits",
		"recruitment interviews hiring policies",
	}
	vec, err := textrep.Fit(texts, textrep.Config{MaxFeatures: 100, NgramMin: 1, NgramMax: 1})
	require.NoError(t, err)

	return vec.Transform(texts), []int{0, 0, 0, 1, 1, 1}, vec
}

func TestLabelSpace(t *testing.T) {
	space, err := NewLabelSpace([]string{"HR", "Data Science", "HR", "Advocate"})
	require.NoError(t, err)

	assert.Equal(t, 3, space.Len())
	assert.Equal(t, []string{"Advocate", "Data Science", "HR"}, space.Labels())

	idx, ok := space.Index("HR")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	label, ok := space.Label(1)
	require.True(t, ok)
	assert.Equal(t, "Data Science", label)

	_, ok = space.Index("Chef")
	assert.False(t, ok)
	_, ok = space.Label(3)
	assert.False(t, ok)

	encoded, err := space.Encode([]string{"HR", "Advocate"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0}, encoded)

	_, err = space.Encode([]string{"Chef"})
	assert.Error(t, err)
}

func TestLabelSpaceRejectsEmpty(t *testing.T) {
	_, err := NewLabelSpace(nil)
	assert.Error(t, err)

	_, err = NewLabelSpace([]string{"HR", "  "})
	assert.Error(t, err)
}

func TestTrainersProduceDistributions(t *testing.T) {
	t.Parallel()

	for _, kind := range []string{KindLogistic, KindNaiveBayes} {
		t.Run(kind, func(t *testing.T) {
			t.Parallel()

			x, y, vec := trainingSet(t)
			opts := DefaultOptions()
			opts.Kind = kind
			trainer, err := NewTrainer(opts)
			require.NoError(t, err)

			model, err := trainer.Fit(x, y, 2)
			require.NoError(t, err)
			assert.Equal(t, 2, model.NumLabels())

			queries := vec.Transform([]string{"python statistics", "payroll recruitment", "nothing known"})
			proba := model.PredictProba(queries)
			require.Len(t, proba, 3)
			for _, row := range proba {
				require.Len(t, row, 2)
				assert.InDelta(t, 1.0, row[0]+row[1], 1e-9)
				for _, p := range row {
					assert.GreaterOrEqual(t, p, 0.0)
					assert.LessOrEqual(t, p, 1.0)
				}
			}

			assert.Greater(t, proba[0][0], 0.5)
			assert.Greater(t, proba[1][1], 0.5)
			assert.Equal(t, []int{0, 1}, Predict(model, queries[:2]))
		})
	}
}

func TestLogisticIsDeterministicForSeed(t *testing.T) {
	x, y, vec := trainingSet(t)
	trainer, err := NewTrainer(DefaultOptions())
	require.NoError(t, err)

	first, err := trainer.Fit(x, y, 2)
	require.NoError(t, err)
	second, err := trainer.Fit(x, y, 2)
	require.NoError(t, err)

	queries := vec.Transform([]string{"python payroll statistics"})
	assert.Equal(t, first.PredictProba(queries), second.PredictProba(queries))
}

func TestFitRejectsBadTrainingSet(t *testing.T) {
	t.Parallel()

	x, y, _ := trainingSet(t)
	trainer, err := NewTrainer(DefaultOptions())
	require.NoError(t, err)

	tests := []struct {
		name      string
		x         []textrep.Vector
		y         []int
		numLabels int
	}{
		{name: "no vectors", x: nil, y: nil, numLabels: 2},
		{name: "length mismatch", x: x, y: y[:2], numLabels: 2},
		{name: "label out of range", x: x, y: []int{0, 0, 0, 1, 1, 5}, numLabels: 2},
		{name: "no labels", x: x, y: y, numLabels: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := trainer.Fit(tt.x, tt.y, tt.numLabels)
			assert.Error(t, err)
		})
	}
}

func TestTrainersRejectZeroHyperparameters(t *testing.T) {
	t.Parallel()

	x, y, _ := trainingSet(t)
	tests := []struct {
		name    string
		trainer Trainer
	}{
		{name: "zero batch size", trainer: &LogisticTrainer{Epochs: 5, LearningRate: 0.5}},
		{name: "zero epochs", trainer: &LogisticTrainer{BatchSize: 4, LearningRate: 0.5}},
		{name: "zero learning rate", trainer: &LogisticTrainer{Epochs: 5, BatchSize: 4}},
		{name: "zero value logistic", trainer: &LogisticTrainer{}},
		{name: "zero alpha", trainer: &NaiveBayesTrainer{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := tt.trainer.Fit(x, y, 2)
			assert.Error(t, err)
		})
	}
}

func TestNewTrainerRejectsUnknownKind(t *testing.T) {
	_, err := NewTrainer(Options{Kind: "random-forest"})
	assert.Error(t, err)
}
