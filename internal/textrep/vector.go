package textrep

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Vector is a sparse feature vector in the vocabulary space of one fitted Vectorizer.
// Indices are strictly ascending.
type Vector struct {
	Indices []int
	Values  []float64

	dim   int
	owner uint64
}

// NewVector builds a vector that is not tied to a fitted Vectorizer.
func NewVector(dim int, indices []int, values []float64) (Vector, error) {
	if len(indices) != len(values) {
		return Vector{}, fmt.Errorf("indices and values length mismatch: %d != %d", len(indices), len(values))
	}
	for i, idx := range indices {
		if idx < 0 || idx >= dim {
			return Vector{}, fmt.Errorf("index %d out of range [0, %d)", idx, dim)
		}
		if i > 0 && indices[i-1] >= idx {
			return Vector{}, fmt.Errorf("indices must be strictly ascending")
		}
	}
	return Vector{Indices: indices, Values: values, dim: dim}, nil
}

// Dim returns the vocabulary size the vector lives in.
func (v Vector) Dim() int { return v.dim }

// Dot returns the inner product of v with a dense slice of length Dim.
func (v Vector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * dense[idx]
	}
	return sum
}

// Norm returns the Euclidean norm.
func (v Vector) Norm() float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return floats.Norm(v.Values, 2)
}

// Comparable reports whether a and b were produced by the same fitted model.
func Comparable(a, b Vector) bool {
	return a.owner == b.owner && a.dim == b.dim
}

// CosineSimilarity returns the cosine of the angle between a and b clamped to [0,1].
// A zero vector on either side scores 0.
func CosineSimilarity(a, b Vector) (float64, error) {
	if !Comparable(a, b) {
		return 0, fmt.Errorf("vectors come from different fitted models")
	}

	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0, nil
	}

	var dot float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			dot += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}

	return clamp01(dot / (na * nb)), nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
