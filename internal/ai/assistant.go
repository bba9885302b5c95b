package ai

import (
	"context"
)

// Assessment is an LLM opinion about one shortlisted candidate. It never changes
// the deterministic scores.
type Assessment struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Raw    string  `json:"-"`
}

// Job is the posting a candidate is reviewed against.
type Job struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Resume is the candidate material sent for review.
type Resume struct {
	CandidateID int    `json:"candidate_id"`
	FileName    string `json:"file_name"`
	Text        string `json:"text"`
}

// Reviewer assesses a shortlisted candidate.
type Reviewer interface {
	Review(ctx context.Context, job Job, resume Resume) (*Assessment, error)
}
