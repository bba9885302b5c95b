// Package screening runs a complete screening request: extraction, filtering,
// scoring, ranking and the optional AI review of the shortlist.
package screening

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/cv-screener/internal/ai"
	"github.com/spigell/cv-screener/internal/apperrors"
	"github.com/spigell/cv-screener/internal/extract"
	"github.com/spigell/cv-screener/internal/filtering"
	"github.com/spigell/cv-screener/internal/logger"
	"github.com/spigell/cv-screener/internal/metrics"
	"github.com/spigell/cv-screener/internal/model"
	"github.com/spigell/cv-screener/internal/profile"
	"github.com/spigell/cv-screener/internal/ranking"
	"github.com/spigell/cv-screener/internal/scoring"
	"github.com/spigell/cv-screener/internal/utils"
)

const (
	DefaultPreviewLength = 200
	reviewWorkers        = 2
)

// Config holds the knobs of a Service.
type Config struct {
	Weights        scoring.Weights
	Fallback       scoring.FallbackPolicy
	Defaults       Defaults
	Criteria       Criteria
	Workers        int
	PreviewLength  int
	ExcludeFile    string
	// DropDuplicates removes résumés whose text repeats an earlier one.
	DropDuplicates bool
	// QualifiedOnly drops shortlisted candidates below the minimum score.
	QualifiedOnly  bool
}

// Criteria are the profile checks a résumé must pass before scoring. Zero values
// disable the matching check.
type Criteria struct {
	MinSkills     int
	MinExperience float64
	EmailRequired bool
}

// DefaultConfig returns the default weights, fallback and request defaults.
func DefaultConfig() Config {
	return Config{
		Weights:        scoring.DefaultWeights(),
		Fallback:       scoring.FallbackMaxProbability,
		Defaults:       DefaultDefaults(),
		Workers:        extract.DefaultWorkers,
		PreviewLength:  DefaultPreviewLength,
		DropDuplicates: true,
	}
}

// Service screens requests against the model published in a Holder.
type Service struct {
	models    *model.Holder
	extractor extract.Extractor
	reviewer  ai.Reviewer
	metrics   *metrics.Recorder
	logger    *zap.Logger
	cfg       Config
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithReviewer enables the AI review of shortlisted candidates.
func WithReviewer(r ai.Reviewer) Option {
	return func(s *Service) { s.reviewer = r }
}

func WithExtractor(e extract.Extractor) Option {
	return func(s *Service) { s.extractor = e }
}

func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a Service. The holder must be non-nil; it may be empty until the first Retrain.
func New(models *model.Holder, cfg Config, opts ...Option) (*Service, error) {
	if models == nil {
		return nil, errors.New("screening service requires a model holder")
	}
	if err := cfg.Weights.Validate(); err != nil {
		return nil, err
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = DefaultPreviewLength
	}

	s := &Service{
		models:    models,
		extractor: extract.NewPlainText(),
		metrics:   metrics.New(),
		logger:    zap.NewNop(),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Screen runs a single-position request and returns its report. A request with no
// usable résumé yields a report with an empty result list.
func (s *Service) Screen(ctx context.Context, req *Request) (*Report, error) {
	var report *Report
	err := s.record(func() error {
		if req != nil && len(req.Positions()) != 1 {
			return apperrors.Validation("screen", "request must carry exactly one job, use ScreenAll for a jobs list")
		}
		reports, _, err := s.screen(ctx, req)
		if err != nil {
			return err
		}
		report = reports[0]
		return nil
	})
	return report, err
}

// ScreenAll screens every position of req against the same résumés and the same
// model, one report section per position.
func (s *Service) ScreenAll(ctx context.Context, req *Request) (*MultiReport, error) {
	var multi *MultiReport
	err := s.record(func() error {
		reports, runID, err := s.screen(ctx, req)
		if err != nil {
			return err
		}
		multi = &MultiReport{RunID: runID, Positions: reports, Summary: make([]PositionSummary, 0, len(reports)), ProcessedAt: s.now().UTC()}
		for _, r := range reports {
			multi.Summary = append(multi.Summary, summarizePosition(r))
		}
		return nil
	})
	return multi, err
}

func (s *Service) record(fn func() error) error {
	err := fn()
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.KindOf(err))
	}
	s.metrics.Run(outcome)
	return err
}

func (s *Service) screen(ctx context.Context, req *Request) ([]*Report, string, error) {
	if req == nil {
		return nil, "", apperrors.Validation("screen", "request is required")
	}
	positions := req.Positions()
	if len(positions) == 0 {
		return nil, "", apperrors.Validation("job", "at least one job is required")
	}

	jobReqs := make([]scoring.JobRequest, len(positions))
	for i, job := range positions {
		jobReqs[i] = job.JobRequest(s.cfg.Defaults)
		if err := jobReqs[i].Validate(); err != nil {
			return nil, "", err
		}
	}

	runID := uuid.NewString()
	log := logger.WithRun(s.logger, runID, jobReqs[0].TargetCategory)

	start := time.Now()
	docs, err := extract.Batch(ctx, s.extractor, req.ResumePaths, s.cfg.Workers, log)
	if err != nil {
		return nil, "", err
	}
	s.metrics.ObserveStage("extract", start)

	reports := make([]*Report, len(positions))
	for i, job := range positions {
		posLog := logger.WithRun(s.logger, runID, jobReqs[i].TargetCategory)
		reports[i], err = s.screenPosition(ctx, posLog, runID, job, jobReqs[i], docs)
		if err != nil {
			return nil, "", err
		}
	}
	return reports, runID, nil
}

// screenPosition filters, scores and ranks the extracted documents for one job.
func (s *Service) screenPosition(ctx context.Context, log *zap.Logger, runID string, job Job, jobReq scoring.JobRequest, docs []extract.Document) (*Report, error) {
	report := &Report{
		RunID:   runID,
		Job:     JobEcho{Category: jobReq.TargetCategory, Description: jobReq.Description, ShortlistSize: jobReq.ShortlistSize, MinScore: jobReq.MinScore},
		Results: []Result{},
		Skipped: []Skipped{},
	}

	candidates := &filtering.Candidates{}
	for _, doc := range docs {
		if doc.Err != nil {
			report.Skipped = append(report.Skipped, Skipped{FilePath: doc.Path, FileName: doc.Name, Stage: "extraction", Reason: doc.Err.Error()})
			continue
		}
		candidates.Items = append(candidates.Items, &filtering.Candidate{
			Path:    doc.Path,
			Name:    doc.Name,
			Text:    doc.Text,
			Profile: profile.Extract(doc.Text, job.Skills),
		})
	}
	s.metrics.Skipped("extraction", len(report.Skipped))

	candidates, removed, err := filtering.Run(ctx, log, s.filters(job), candidates)
	if err != nil {
		return nil, fmt.Errorf("filter candidates: %w", err)
	}
	for _, r := range removed {
		report.Skipped = append(report.Skipped, Skipped{FilePath: r.Candidate.Path, FileName: r.Candidate.Name, Stage: r.Filter, Reason: r.Reason})
	}
	s.metrics.Skipped("filter", len(removed))

	report.Metadata.ProcessedAt = s.now().UTC()
	if candidates.Len() == 0 {
		log.Warn("no valid résumés found", zap.Int("requested", len(docs)))
		return report, nil
	}

	m := s.models.Load()
	if m == nil {
		return nil, errors.New("no trained model is loaded")
	}
	report.Metadata.ModelID = m.ID()
	trainedAt := m.TrainedAt().UTC()
	report.Metadata.ModelTrainedAt = &trainedAt

	scorer, err := scoring.New(m, scoring.WithWeights(s.cfg.Weights), scoring.WithFallback(s.cfg.Fallback), scoring.WithLogger(log))
	if err != nil {
		return nil, err
	}

	texts := make([]string, candidates.Len())
	for i, c := range candidates.Items {
		texts[i] = c.Text
	}

	start := time.Now()
	batch, err := scorer.ScoreBatch(jobReq, texts)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage("score", start)
	if batch.CategoryFallback {
		s.metrics.CategoryFallback()
	}
	for _, sc := range batch.Scores {
		s.metrics.Scored(sc.FinalScore, sc.MeetsThreshold)
		log.Debug("candidate scored", append(logger.CandidateFields(sc.CandidateID, candidates.Items[sc.CandidateID-1].Name),
			zap.Float64("category_score", sc.CategoryScore),
			zap.Float64("similarity_score", sc.SimilarityScore),
			zap.Float64("final_score", sc.FinalScore),
		)...)
	}

	ranked, err := ranking.Rank(batch.Scores, jobReq.ShortlistSize)
	if err != nil {
		return nil, err
	}
	if s.cfg.QualifiedOnly {
		ranked = ranking.Qualified(ranked)
	}

	for _, sc := range ranked {
		c := candidates.Items[sc.CandidateID-1]
		skills := c.Profile.Skills
		if skills == nil {
			skills = []string{}
		}
		report.Results = append(report.Results, Result{
			CandidateScore:  sc,
			FilePath:        c.Path,
			FileName:        c.Name,
			CVPreview:       utils.Preview(c.Text, s.cfg.PreviewLength),
			Skills:          skills,
			ExperienceYears: c.Profile.ExperienceYears,
			HasEmail:        c.Profile.HasEmail(),
		})
	}

	if s.reviewer != nil && len(report.Results) > 0 {
		start = time.Now()
		if err := s.review(ctx, log, jobReq, candidates, report.Results); err != nil {
			return nil, err
		}
		s.metrics.ObserveStage("review", start)
	}

	summary := ranking.Summarize(batch.Scores)
	report.Metadata.TotalProcessed = summary.Count
	report.Metadata.TotalSelected = len(report.Results)
	report.Metadata.Qualified = summary.Qualified
	report.Metadata.MeanFinalScore = summary.MeanFinal
	report.Metadata.MaxFinalScore = summary.MaxFinal
	report.Metadata.CategoryFallback = batch.CategoryFallback

	log.Info("screening complete",
		zap.Int("processed", summary.Count),
		zap.Int("selected", len(report.Results)),
		zap.Int("qualified", summary.Qualified),
		zap.Int("skipped", len(report.Skipped)),
	)
	return report, nil
}

// filters builds the pre-scoring steps for job. Steps that do not apply stay in
// the list, disabled, so the run log shows them.
func (s *Service) filters(job Job) []filtering.Filter {
	requested := 0
	for _, skill := range job.Skills {
		if strings.TrimSpace(skill) != "" {
			requested++
		}
	}

	steps := []filtering.Filter{
		filtering.NewEmptyText(),
		filtering.NewDuplicateText(),
		filtering.NewExcludeFile(s.cfg.ExcludeFile),
		filtering.NewMinSkills(s.cfg.Criteria.MinSkills, requested),
		filtering.NewMinExperience(s.cfg.Criteria.MinExperience),
		filtering.NewEmailRequired(s.cfg.Criteria.EmailRequired),
	}
	if !s.cfg.DropDuplicates {
		filtering.DisableByName(steps, "duplicate_text", "duplicates allowed by configuration")
	}
	if s.cfg.ExcludeFile == "" {
		filtering.DisableByName(steps, "exclude_file", "no exclude file configured")
	}
	return steps
}

// review annotates results in place. Reviewer failures are recorded on the result
// and never fail the run; only cancellation does.
func (s *Service) review(ctx context.Context, log *zap.Logger, jobReq scoring.JobRequest, candidates *filtering.Candidates, results []Result) error {
	job := ai.Job{Category: jobReq.TargetCategory, Description: jobReq.Description}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reviewWorkers)
	for i := range results {
		g.Go(func() error {
			res := &results[i]
			c := candidates.Items[res.CandidateID-1]

			assessment, err := s.reviewer.Review(gctx, job, ai.Resume{CandidateID: res.CandidateID, FileName: c.Name, Text: c.Text})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("review failed", append(logger.CandidateFields(res.CandidateID, c.Name), zap.Error(err))...)
				res.Review = &Review{Error: err.Error()}
				s.metrics.Review("error")
				return nil
			}

			res.Review = &Review{Fit: assessment.Fit, Score: assessment.Score, Reason: assessment.Reason}
			outcome := "unfit"
			if assessment.Fit {
				outcome = "fit"
			}
			s.metrics.Review(outcome)
			return nil
		})
	}
	return g.Wait()
}
