// Package classifier provides multi-class probabilistic classifiers over textrep vectors.
package classifier

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/textrep"
)

const (
	KindLogistic   = "logistic"
	KindNaiveBayes = "naive-bayes"
)

// Trainer fits a Classifier from labeled vectors. Labels are dense indices in [0, numLabels).
type Trainer interface {
	Fit(x []textrep.Vector, y []int, numLabels int) (Classifier, error)
}

// Classifier returns per-class probabilities. Every row sums to 1.
// A fitted Classifier is read-only and safe for concurrent use.
type Classifier interface {
	NumLabels() int
	PredictProba(x []textrep.Vector) [][]float64
}

// Options configures the available trainers.
type Options struct {
	Kind         string
	Epochs       int
	LearningRate float64
	L2           float64
	BatchSize    int
	Seed         uint64
	// Alpha is the additive smoothing of naive Bayes.
	Alpha float64
}

// DefaultOptions returns the logistic trainer with a fixed seed.
func DefaultOptions() Options {
	return Options{
		Kind:         KindLogistic,
		Epochs:       30,
		LearningRate: 0.5,
		L2:           1e-4,
		BatchSize:    16,
		Seed:         42,
		Alpha:        0.1,
	}
}

// NewTrainer returns the trainer selected by opts.Kind.
func NewTrainer(opts Options) (Trainer, error) {
	defaults := DefaultOptions()
	if opts.Epochs <= 0 {
		opts.Epochs = defaults.Epochs
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = defaults.LearningRate
	}
	if opts.L2 < 0 {
		opts.L2 = 0
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.Alpha <= 0 {
		opts.Alpha = defaults.Alpha
	}

	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case "", KindLogistic:
		return &LogisticTrainer{
			Epochs:       opts.Epochs,
			LearningRate: opts.LearningRate,
			L2:           opts.L2,
			BatchSize:    opts.BatchSize,
			Seed:         opts.Seed,
		}, nil
	case KindNaiveBayes:
		return &NaiveBayesTrainer{Alpha: opts.Alpha}, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind: %s", opts.Kind)
	}
}

// Predict returns the most probable class index per row.
func Predict(c Classifier, x []textrep.Vector) []int {
	proba := c.PredictProba(x)
	out := make([]int, len(proba))
	for i, row := range proba {
		out[i] = floats.MaxIdx(row)
	}
	return out
}

func checkTrainingSet(x []textrep.Vector, y []int, numLabels int) error {
	if len(x) == 0 {
		return fmt.Errorf("no training vectors")
	}
	if len(x) != len(y) {
		return fmt.Errorf("vectors and labels length mismatch: %d != %d", len(x), len(y))
	}
	if numLabels <= 0 {
		return fmt.Errorf("number of labels must be positive")
	}
	dim := x[0].Dim()
	for i, v := range x {
		if v.Dim() != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, v.Dim(), dim)
		}
		if y[i] < 0 || y[i] >= numLabels {
			return fmt.Errorf("label %d at row %d is out of range [0, %d)", y[i], i, numLabels)
		}
	}
	return nil
}

// softmaxInPlace turns log-scores into probabilities.
func softmaxInPlace(scores []float64) {
	lse := floats.LogSumExp(scores)
	for k := range scores {
		scores[k] = math.Exp(scores[k] - lse)
	}
}
