package screening

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spigell/cv-screener/internal/ranking"
	"github.com/spigell/cv-screener/internal/scoring"
)

// Report is the JSON document written for one screening run.
type Report struct {
	RunID    string    `json:"run_id"`
	Job      JobEcho   `json:"job"`
	Results  []Result  `json:"results"`
	Skipped  []Skipped `json:"skipped"`
	Metadata Metadata  `json:"metadata"`
}

// JobEcho repeats the effective request parameters.
type JobEcho struct {
	Category      string  `json:"category"`
	Description   string  `json:"description"`
	ShortlistSize int     `json:"nb_postes"`
	MinScore      float64 `json:"min_score"`
}

// Result is one shortlisted candidate.
type Result struct {
	scoring.CandidateScore
	FilePath        string   `json:"file_path"`
	FileName        string   `json:"file_name"`
	CVPreview       string   `json:"cv_preview"`
	Skills          []string `json:"skills"`
	ExperienceYears int      `json:"experience_years"`
	HasEmail        bool     `json:"has_email"`
	Review          *Review  `json:"review,omitempty"`
}

// Review is the optional AI opinion of a shortlisted candidate.
type Review struct {
	Fit    bool    `json:"fit"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Skipped is a résumé that never reached scoring.
type Skipped struct {
	FilePath string `json:"file_path"`
	FileName string `json:"file_name"`
	Stage    string `json:"stage"`
	Reason   string `json:"reason"`
}

// Metadata summarises the run.
type Metadata struct {
	TotalProcessed   int        `json:"total_processed"`
	TotalSelected    int        `json:"total_selected"`
	Qualified        int        `json:"qualified"`
	MeanFinalScore   float64    `json:"mean_final_score"`
	MaxFinalScore    float64    `json:"max_final_score"`
	CategoryFallback bool       `json:"category_fallback"`
	ModelID          string     `json:"model_id,omitempty"`
	ModelTrainedAt   *time.Time `json:"model_trained_at,omitempty"`
	ProcessedAt      time.Time  `json:"processed_at"`
}

// MultiReport is written for a request with a jobs list: one section per position
// and a per-position summary of the shortlist.
type MultiReport struct {
	RunID       string            `json:"run_id"`
	Positions   []*Report         `json:"positions"`
	Summary     []PositionSummary `json:"summary"`
	ProcessedAt time.Time         `json:"processed_at"`
}

// PositionSummary aggregates the final scores of the candidates selected for one position.
type PositionSummary struct {
	Category       string  `json:"category"`
	Selected       int     `json:"selected"`
	MeanFinalScore float64 `json:"mean_final_score"`
	BestFinalScore float64 `json:"best_final_score"`
}

func summarizePosition(r *Report) PositionSummary {
	scores := make([]scoring.CandidateScore, len(r.Results))
	for i, res := range r.Results {
		scores[i] = res.CandidateScore
	}
	s := ranking.Summarize(scores)
	return PositionSummary{Category: r.Job.Category, Selected: s.Count, MeanFinalScore: s.MeanFinal, BestFinalScore: s.MaxFinal}
}

// Write encodes the report as indented JSON.
func (r *Report) Write(w io.Writer) error {
	return writeJSON(w, r)
}

// Write encodes the report as indented JSON.
func (r *MultiReport) Write(w io.Writer) error {
	return writeJSON(w, r)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
