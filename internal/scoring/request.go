// Package scoring computes per-candidate relevance scores against a job request.
package scoring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spigell/cv-screener/internal/apperrors"
)

// JobRequest describes one screening query.
type JobRequest struct {
	TargetCategory string  `json:"target_category"`
	Description    string  `json:"description" validate:"required,notblank"`
	ShortlistSize  int     `json:"shortlist_size" validate:"gt=0"`
	MinScore       float64 `json:"min_score" validate:"gte=0,lte=1"`
}

// CandidateScore is the scored result for one candidate. CandidateID is the 1-based
// position of the candidate in the scored batch.
type CandidateScore struct {
	CandidateID     int     `json:"candidate_id"`
	CategoryScore   float64 `json:"category_score"`
	SimilarityScore float64 `json:"similarity_score"`
	FinalScore      float64 `json:"final_score"`
	MeetsThreshold  bool    `json:"meets_threshold"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// Validate reports the first malformed field as a ValidationError.
func (r JobRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.Validation("validate job request", "%v", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return apperrors.Validation("validate job request", "%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be within [0, 1], got %v", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}
