package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength     = 200
	maxUserInstructionRunes = 500
	maxResumeRunes          = 20000
)

// Criteria are operator supplied hints rendered into the system prompt.
type Criteria struct {
	ExtraCriteria    string
	DealBreakers     string
	Keywords         string
	UserInstructions string
}

// Reviewer asks Gemini for a fit assessment of one candidate.
type Reviewer struct {
	generator contentGenerator
	minScore  float64
	logger    *zap.Logger
	maxLogLen int
	system    string
}

var _ ai.Reviewer = (*Reviewer)(nil)

// NewReviewer builds a reviewer. Assessments scoring below minScore are marked unfit.
func NewReviewer(generator contentGenerator, log *zap.Logger, minScore float64, maxLogLength int, criteria Criteria) *Reviewer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Reviewer{
		generator: generator,
		minScore:  minScore,
		logger:    logger.WithCommonFields(log, "gemini", generator.Model()),
		maxLogLen: maxLogLength,
		system:    buildSystemPrompt(criteria),
	}
}

func (r *Reviewer) Review(ctx context.Context, job ai.Job, resume ai.Resume) (*ai.Assessment, error) {
	if strings.TrimSpace(resume.Text) == "" {
		return nil, fmt.Errorf("resume text is required")
	}
	if strings.TrimSpace(job.Description) == "" {
		return nil, fmt.Errorf("job description is required")
	}

	resume.Text = utils.Preview(resume.Text, maxResumeRunes)
	payload, err := json.MarshalIndent(map[string]any{"job": job, "resume": resume}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal review payload: %w", err)
	}
	message := string(payload)

	fields := logger.CandidateFields(resume.CandidateID, resume.FileName)
	r.logger.Debug("gemini review request", append(fields,
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, r.maxLogLen)),
	)...)

	raw, err := r.generator.GenerateContent(ctx, r.system, message)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("gemini review response", append(fields,
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, r.maxLogLen)),
	)...)

	assessment, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	if r.minScore > 0 && assessment.Score < r.minScore {
		r.logger.Debug("set fit to false by score threshold", append(fields,
			zap.Float64("score", assessment.Score),
			zap.Float64("threshold", r.minScore),
		)...)
		assessment.Fit = false
	}

	assessment.Raw = raw
	return assessment, nil
}

func buildSystemPrompt(c Criteria) string {
	replacer := strings.NewReplacer(
		"{{EXTRA_CRITERIA}}", singleLine(c.ExtraCriteria),
		"{{DEAL_BREAKERS}}", singleLine(c.DealBreakers),
		"{{KEYWORDS}}", keywords(c.Keywords),
		"{{USER_INSTRUCTIONS}}", userInstructions(c.UserInstructions),
	)
	return replacer.Replace(promptTemplate)
}

// neutralize keeps user text from imitating the prompt's [Section] markers.
func neutralize(s string) string {
	return strings.NewReplacer("[", "(", "]", ")").Replace(s)
}

func singleLine(s string) string {
	s = strings.Join(strings.Fields(neutralize(s)), " ")
	if s == "" {
		return "none"
	}
	return s
}

func keywords(s string) string {
	var out []string
	for _, k := range strings.Split(s, ",") {
		if k = singleLine(k); k != "none" {
			out = append(out, k)
		}
	}
	if len(out) == 0 {
		return "none"
	}
	return strings.Join(out, ", ")
}

func userInstructions(s string) string {
	s = strings.TrimSpace(neutralize(s))
	if runes := []rune(s); len(runes) > maxUserInstructionRunes {
		s = string(runes[:maxUserInstructionRunes])
	}

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, "  - "+line)
		}
	}
	if len(lines) == 0 {
		return "  - none"
	}
	return strings.Join(lines, "\n")
}

func parseResponse(raw string) (*ai.Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(0, math.Min(1, score))

	return &ai.Assessment{
		Fit:    coerceBool(data["fit"]),
		Score:  score,
		Reason: coerceString(data["reason"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
