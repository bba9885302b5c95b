// Package metrics records screening counters in a private Prometheus registry that
// the CLI can dump in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cv_screener"

// Recorder owns the registry and the collectors of one process.
type Recorder struct {
	registry *prometheus.Registry

	runs             *prometheus.CounterVec
	candidates       *prometheus.CounterVec
	skipped          *prometheus.CounterVec
	categoryFallback prometheus.Counter
	reviews          *prometheus.CounterVec
	finalScore       prometheus.Histogram
	stageDuration    *prometheus.HistogramVec
	modelInfo        *prometheus.GaugeVec
}

// New registers all collectors in a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runs: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Screening runs by outcome",
			},
			[]string{"outcome"},
		),
		candidates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_scored_total",
				Help:      "Scored candidates by threshold result",
			},
			[]string{"qualified"},
		),
		skipped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "candidates_skipped_total",
				Help:      "Résumés dropped before scoring by stage",
			},
			[]string{"stage"},
		),
		categoryFallback: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "category_fallback_total",
				Help:      "Runs scored with the max-probability fallback",
			},
		),
		reviews: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reviews_total",
				Help:      "AI reviews of shortlisted candidates by outcome",
			},
			[]string{"outcome"},
		),
		finalScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "final_score",
				Help:      "Distribution of final candidate scores",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		stageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of pipeline stages",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		modelInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "model_info",
				Help:      "Size of the trained model by dimension",
			},
			[]string{"dimension"},
		),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Run counts one finished run.
func (r *Recorder) Run(outcome string) { r.runs.WithLabelValues(outcome).Inc() }

// Scored records one candidate score.
func (r *Recorder) Scored(final float64, qualified bool) {
	label := "false"
	if qualified {
		label = "true"
	}
	r.candidates.WithLabelValues(label).Inc()
	r.finalScore.Observe(final)
}

// Skipped counts résumés dropped at stage.
func (r *Recorder) Skipped(stage string, n int) {
	if n > 0 {
		r.skipped.WithLabelValues(stage).Add(float64(n))
	}
}

// CategoryFallback counts a run that used the fallback.
func (r *Recorder) CategoryFallback() { r.categoryFallback.Inc() }

// Review counts one AI review.
func (r *Recorder) Review(outcome string) { r.reviews.WithLabelValues(outcome).Inc() }

// ObserveStage records how long a stage took since start.
func (r *Recorder) ObserveStage(stage string, start time.Time) {
	r.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Model publishes the shape of the live model.
func (r *Recorder) Model(documents, vocabulary, categories int) {
	r.modelInfo.WithLabelValues("documents").Set(float64(documents))
	r.modelInfo.WithLabelValues("vocabulary").Set(float64(vocabulary))
	r.modelInfo.WithLabelValues("categories").Set(float64(categories))
}

// WriteTextfile writes the current values to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
