package classifier

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/textrep"
)

// LogisticTrainer fits multinomial logistic regression with seeded mini-batch SGD.
type LogisticTrainer struct {
	Epochs       int
	LearningRate float64
	L2           float64
	BatchSize    int
	Seed         uint64
}

// Logistic is a fitted softmax regression model.
type Logistic struct {
	weights [][]float64
	bias    []float64
}

// Fit trains the model. Identical input and seed always produce identical weights.
func (t *LogisticTrainer) Fit(x []textrep.Vector, y []int, numLabels int) (Classifier, error) {
	if err := checkTrainingSet(x, y, numLabels); err != nil {
		return nil, err
	}
	if t.Epochs <= 0 || t.BatchSize <= 0 {
		return nil, fmt.Errorf("epochs and batch size must be positive, got %d and %d", t.Epochs, t.BatchSize)
	}
	if t.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %v", t.LearningRate)
	}

	dim := x[0].Dim()
	m := &Logistic{
		weights: make([][]float64, numLabels),
		bias:    make([]float64, numLabels),
	}
	for k := range m.weights {
		m.weights[k] = make([]float64, dim)
	}

	rng := rand.New(rand.NewPCG(t.Seed, t.Seed^0x9e3779b97f4a7c15))
	batchSize := t.BatchSize
	probs := make([][]float64, batchSize)
	for i := range probs {
		probs[i] = make([]float64, numLabels)
	}

	for epoch := 0; epoch < t.Epochs; epoch++ {
		lr := t.LearningRate / (1 + 0.1*float64(epoch))
		order := rng.Perm(len(x))

		for start := 0; start < len(order); start += batchSize {
			end := min(start+batchSize, len(order))
			batch := order[start:end]

			for i, row := range batch {
				m.scores(x[row], probs[i])
				softmaxInPlace(probs[i])
			}

			step := lr / float64(len(batch))
			if t.L2 > 0 {
				decay := 1 - lr*t.L2
				for k := range m.weights {
					floats.Scale(decay, m.weights[k])
				}
			}

			for i, row := range batch {
				v := x[row]
				for k := 0; k < numLabels; k++ {
					grad := probs[i][k]
					if y[row] == k {
						grad -= 1
					}
					if grad == 0 {
						continue
					}
					w := m.weights[k]
					for j, idx := range v.Indices {
						w[idx] -= step * grad * v.Values[j]
					}
					m.bias[k] -= step * grad
				}
			}
		}
	}

	return m, nil
}

// NumLabels returns the number of classes.
func (m *Logistic) NumLabels() int { return len(m.bias) }

// PredictProba returns softmax probabilities per row.
func (m *Logistic) PredictProba(x []textrep.Vector) [][]float64 {
	out := make([][]float64, len(x))
	for i, v := range x {
		row := make([]float64, len(m.bias))
		m.scores(v, row)
		softmaxInPlace(row)
		out[i] = row
	}
	return out
}

func (m *Logistic) scores(v textrep.Vector, dst []float64) {
	for k, w := range m.weights {
		dst[k] = v.Dot(w) + m.bias[k]
	}
}
