// Package ranking orders scored candidates into a shortlist.
package ranking

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/scoring"
)

// Rank returns at most n candidates ordered by final score descending, ties by
// candidate id ascending. The input slice is left untouched. Candidates below the
// threshold are kept; use Qualified to drop them.
func Rank(scores []scoring.CandidateScore, n int) ([]scoring.CandidateScore, error) {
	if n <= 0 {
		return nil, apperrors.Validation("rank", "shortlist size must be greater than 0, got %d", n)
	}

	out := make([]scoring.CandidateScore, len(scores))
	copy(out, scores)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].FinalScore != out[j].FinalScore {
			return out[i].FinalScore > out[j].FinalScore
		}
		return out[i].CandidateID < out[j].CandidateID
	})

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Qualified keeps only the candidates that meet the threshold, preserving order.
func Qualified(scores []scoring.CandidateScore) []scoring.CandidateScore {
	out := make([]scoring.CandidateScore, 0, len(scores))
	for _, s := range scores {
		if s.MeetsThreshold {
			out = append(out, s)
		}
	}
	return out
}

// Summary describes a scored batch.
type Summary struct {
	Count     int     `json:"count"`
	Qualified int     `json:"qualified"`
	MeanFinal float64 `json:"mean_final_score"`
	MaxFinal  float64 `json:"max_final_score"`
}

// Summarize aggregates the final scores of a batch. An empty batch yields zeros.
func Summarize(scores []scoring.CandidateScore) Summary {
	if len(scores) == 0 {
		return Summary{}
	}

	finals := make([]float64, len(scores))
	summary := Summary{Count: len(scores)}
	for i, s := range scores {
		finals[i] = s.FinalScore
		if s.MeetsThreshold {
			summary.Qualified++
		}
	}
	summary.MeanFinal = floats.Sum(finals) / float64(len(finals))
	summary.MaxFinal = floats.Max(finals)
	return summary
}
