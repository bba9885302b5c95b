package screening

import (
	"fmt"
	"strings"

	"github.com/spigell/cv-screener/internal/scoring"
)

// Job is the posting of a screening request.
type Job struct {
	Category    string   `mapstructure:"category" json:"category"`
	Description string   `mapstructure:"description" json:"description"`
	NbPostes    *int     `mapstructure:"nb_postes" json:"nb_postes,omitempty"`
	MinScore    *float64 `mapstructure:"min_score" json:"min_score,omitempty"`
	Degree      string   `mapstructure:"degree" json:"degree,omitempty"`
	Major       string   `mapstructure:"major" json:"major,omitempty"`
	Skills      []string `mapstructure:"skills" json:"skills,omitempty"`
	SoftSkills  []string `mapstructure:"softSkills" json:"softSkills,omitempty"`
	Experience  float64  `mapstructure:"experience" json:"experience,omitempty"`
}

// Defaults fill the optional numeric fields of a Job.
type Defaults struct {
	ShortlistSize int
	MinScore      float64
}

// DefaultDefaults shortlists up to 10 candidates and keeps every score.
func DefaultDefaults() Defaults {
	return Defaults{ShortlistSize: 10, MinScore: 0}
}

// FullDescription appends the structured requirements to the free-text description.
func (j Job) FullDescription() string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(j.Description))
	b.WriteString("\n\n")

	if degree := strings.TrimSpace(j.Degree); degree != "" {
		fmt.Fprintf(&b, "Required Degree: %s\n", degree)
	}
	if major := strings.TrimSpace(j.Major); major != "" {
		fmt.Fprintf(&b, "Preferred Major: %s\n", major)
	}
	if skills := joinNonEmpty(j.Skills); skills != "" {
		fmt.Fprintf(&b, "Technical Skills Required: %s\n", skills)
	}
	if soft := joinNonEmpty(j.SoftSkills); soft != "" {
		fmt.Fprintf(&b, "Soft Skills Desired: %s\n", soft)
	}
	if j.Experience > 0 {
		fmt.Fprintf(&b, "Minimum Experience: %g year(s)\n", j.Experience)
	}

	return strings.TrimSpace(b.String())
}

// JobRequest converts the job into a scoring request.
func (j Job) JobRequest(d Defaults) scoring.JobRequest {
	req := scoring.JobRequest{
		TargetCategory: strings.TrimSpace(j.Category),
		Description:    j.FullDescription(),
		ShortlistSize:  d.ShortlistSize,
		MinScore:       d.MinScore,
	}
	if j.NbPostes != nil {
		req.ShortlistSize = *j.NbPostes
	}
	if j.MinScore != nil {
		req.MinScore = *j.MinScore
	}
	return req
}

func joinNonEmpty(items []string) string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return strings.Join(out, ", ")
}
