package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/ai/gemini"
	"github.com/spigell/cv-screener/internal/classifier"
	"github.com/spigell/cv-screener/internal/corpus"
	"github.com/spigell/cv-screener/internal/model"
	"github.com/spigell/cv-screener/internal/screening"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/secrets"
	"github.com/spigell/cv-screener/internal/textrep"
)

const geminiKeyEnv = "GEMINI_API_KEY"

func (c *Config) csvOptions() corpus.CSVOptions {
	opts := corpus.DefaultCSVOptions()
	if c.Corpus == nil {
		return opts
	}
	if c.Corpus.Encoding != "" {
		opts.Encoding = c.Corpus.Encoding
	}
	if len(c.Corpus.TextColumns) > 0 {
		opts.TextColumns = c.Corpus.TextColumns
	}
	if c.Corpus.CategoryColumn != "" {
		opts.CategoryColumn = c.Corpus.CategoryColumn
	}
	return opts
}

func (c *Config) modelConfig() model.Config {
	cfg := model.DefaultConfig()
	if r := c.Representation; r != nil {
		cfg.Representation = textrep.Config{MaxFeatures: r.MaxFeatures, NgramMin: r.NgramMin, NgramMax: r.NgramMax}
	}
	if k := c.Classifier; k != nil {
		cfg.Classifier = classifier.Options{
			Kind:         k.Kind,
			Epochs:       k.Epochs,
			LearningRate: k.LearningRate,
			L2:           k.L2,
			BatchSize:    k.BatchSize,
			Seed:         k.Seed,
			Alpha:        k.Alpha,
		}
	}
	return cfg
}

func (c *Config) screeningConfig() (screening.Config, error) {
	cfg := screening.DefaultConfig()

	if s := c.Scoring; s != nil {
		cfg.Weights = scoring.Weights{Category: s.CategoryWeight, Similarity: s.SimilarityWeight}
		policy, err := scoring.ParseFallbackPolicy(strings.TrimSpace(s.Fallback))
		if err != nil {
			return cfg, err
		}
		cfg.Fallback = policy
		cfg.QualifiedOnly = s.QualifiedOnly
	}
	if d := c.Defaults; d != nil {
		cfg.Defaults = screening.Defaults{ShortlistSize: d.ShortlistSize, MinScore: d.MinScore}
	}
	if e := c.Extraction; e != nil {
		if e.Workers > 0 {
			cfg.Workers = e.Workers
		}
		if e.PreviewLength > 0 {
			cfg.PreviewLength = e.PreviewLength
		}
		cfg.ExcludeFile = strings.TrimSpace(e.ExcludeFile)
	}
	if f := c.Filters; f != nil {
		cfg.Criteria = screening.Criteria{MinSkills: f.MinSkills, MinExperience: f.MinExperience, EmailRequired: f.EmailRequired}
		cfg.DropDuplicates = f.DropDuplicates
	}

	if err := cfg.Weights.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) loadCorpus() (*corpus.Corpus, error) {
	if c.Corpus == nil || strings.TrimSpace(c.Corpus.Path) == "" {
		return nil, errors.New("corpus path is not configured (set corpus.path or --corpus)")
	}
	return corpus.LoadCSV(c.Corpus.Path, c.csvOptions())
}

// newAIReviewer returns nil when the review is disabled.
func newAIReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: gcfg.APIKeyFile,
		Env:  geminiKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiKeyEnv)
	}

	genLogger := logger.With(zap.Int("ai_retry_attempts", gcfg.MaxRetries))
	generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	minScore := cfg.MinimumFitScore
	if minScore < 0 {
		minScore = 0
	}

	var criteria gemini.Criteria
	if cfg.Criteria != nil {
		criteria = gemini.Criteria{
			ExtraCriteria:    cfg.Criteria.ExtraCriteria,
			DealBreakers:     cfg.Criteria.DealBreakers,
			Keywords:         cfg.Criteria.Keywords,
			UserInstructions: cfg.Criteria.UserInstructions,
		}
	}

	reviewerLogger := logger.With(zap.Float64("minimum_fit_score", minScore))
	return gemini.NewReviewer(generator, reviewerLogger, minScore, gcfg.MaxLogLength, criteria), nil
}
