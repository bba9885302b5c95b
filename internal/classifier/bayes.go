package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/textrep"
)

// NaiveBayesTrainer fits multinomial naive Bayes on term weights.
type NaiveBayesTrainer struct {
	Alpha float64
}

// NaiveBayes is a fitted multinomial naive Bayes model.
type NaiveBayes struct {
	logPrior []float64
	logProb  [][]float64
}

func (t *NaiveBayesTrainer) Fit(x []textrep.Vector, y []int, numLabels int) (Classifier, error) {
	if err := checkTrainingSet(x, y, numLabels); err != nil {
		return nil, err
	}
	if t.Alpha <= 0 {
		return nil, fmt.Errorf("smoothing alpha must be positive, got %v", t.Alpha)
	}

	dim := x[0].Dim()
	featureSums := make([][]float64, numLabels)
	for k := range featureSums {
		featureSums[k] = make([]float64, dim)
	}
	classCounts := make([]float64, numLabels)

	for i, v := range x {
		k := y[i]
		classCounts[k]++
		for j, idx := range v.Indices {
			featureSums[k][idx] += v.Values[j]
		}
	}

	m := &NaiveBayes{
		logPrior: make([]float64, numLabels),
		logProb:  make([][]float64, numLabels),
	}
	total := float64(len(x))
	for k := 0; k < numLabels; k++ {
		// Unseen classes keep a tiny prior instead of log(0).
		m.logPrior[k] = math.Log(math.Max(classCounts[k], 1e-9) / total)

		row := make([]float64, dim)
		denom := floats.Sum(featureSums[k]) + t.Alpha*float64(dim)
		for j := range row {
			row[j] = math.Log((featureSums[k][j] + t.Alpha) / denom)
		}
		m.logProb[k] = row
	}

	return m, nil
}

func (m *NaiveBayes) NumLabels() int { return len(m.logPrior) }

func (m *NaiveBayes) PredictProba(x []textrep.Vector) [][]float64 {
	out := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.logPrior))
		for k := range row {
			row[k] = m.logPrior[k] + v.Dot(m.logProb[k])
		}
		softmaxInPlace(row)
		out[i] = row
	}
	return out
}
