package model

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/spigell/cv-screener/internal/corpus"
)

// Holder publishes the live model. Readers keep the instance they loaded while a
// retrain builds and swaps in a replacement.
type Holder struct {
	current atomic.Pointer[Model]
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewHolder wraps an initial model, which may be nil.
func NewHolder(initial *Model, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Holder{logger: logger}
	if initial != nil {
		h.current.Store(initial)
	}
	return h
}

// Load returns the current model or nil.
func (h *Holder) Load() *Model {
	return h.current.Load()
}

// Retrain fits a new model and publishes it. On failure the current model stays live.
func (h *Holder) Retrain(ctx context.Context, docs []corpus.Document, cfg Config) (*Model, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	next, err := Train(ctx, docs, cfg)
	if err != nil {
		h.logger.Warn("retrain failed, keeping current model", zap.Error(err))
		return nil, err
	}

	prev := h.current.Swap(next)
	fields := []zap.Field{
		zap.String("model_id", next.ID()),
		zap.Int("documents", next.Documents()),
		zap.Int("vocabulary", next.Dim()),
		zap.Int("categories", len(next.Labels())),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_model_id", prev.ID()))
	}
	h.logger.Info("model published", fields...)

	return next, nil
}
