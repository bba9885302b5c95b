package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
	// FieldRunID identifies one screening run.
	FieldRunID = "run_id"
	// FieldCategory is the target job category of a run.
	FieldCategory = "category"
	// FieldCandidate is the 1-based candidate id within a run.
	FieldCandidate = "candidate_id"
	// FieldFile is the résumé file name.
	FieldFile = "file"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts key/value pairs into zap fields, trimming whitespace and
// omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields describe the AI provider and model. Empty values are dropped.
func CommonFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithCommonFields attaches the AI provider fields to the logger.
func WithCommonFields(logger *zap.Logger, provider, model string) *zap.Logger {
	return WithFields(logger, CommonFields(provider, model)...)
}

// RunFields describe a screening run.
func RunFields(runID, category string) []zap.Field {
	return StringFields(
		StringField{Key: FieldRunID, Value: runID},
		StringField{Key: FieldCategory, Value: category},
	)
}

// WithRun attaches the run fields to the logger.
func WithRun(logger *zap.Logger, runID, category string) *zap.Logger {
	return WithFields(logger, RunFields(runID, category)...)
}

// CandidateFields describe one candidate of a run.
func CandidateFields(candidateID int, file string) []zap.Field {
	fields := []zap.Field{zap.Int(FieldCandidate, candidateID)}
	return append(fields, StringFields(StringField{Key: FieldFile, Value: file})...)
}
