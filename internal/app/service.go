// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/attrition/internal/adapters/repository"
	"github.com/okian/attrition/internal/adapters/retention"
	"github.com/okian/attrition/internal/domain/features"
	"github.com/okian/attrition/internal/domain/scoring"
	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/internal/domain/validation"
	"github.com/okian/attrition/pkg/logger"
	"github.com/okian/attrition/pkg/metrics"
)

// Prediction is the result of one accepted request.
type Prediction = types.Prediction

// Service validates, scores and persists prediction requests.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	scorer    scoring.Scorer
	validator *validation.Validator

	// Background components, optional
	scheduler *retention.Scheduler
	watcher   *scoring.Watcher

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the prediction store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithScorer sets the scorer.
func WithScorer(scorer scoring.Scorer) Option {
	return func(s *Service) {
		if scorer != nil {
			s.scorer = scorer
		}
	}
}

// WithValidator sets the feature validator.
func WithValidator(v *validation.Validator) Option {
	return func(s *Service) {
		if v != nil {
			s.validator = v
		}
	}
}

// WithRetention runs the given scheduler between Start and Stop.
func WithRetention(scheduler *retention.Scheduler) Option {
	return func(s *Service) {
		s.scheduler = scheduler
	}
}

// WithModelWatcher runs the given model watcher between Start and Stop.
func WithModelWatcher(w *scoring.Watcher) Option {
	return func(s *Service) {
		s.watcher = w
	}
}

// New constructs a Service. The validator and scorer default to the built-in
// rule table and the embedded model; the store has no default.
func New(opts ...Option) *Service {
	s := &Service{}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = validation.New()
	}
	if s.scorer == nil {
		s.scorer = scoring.NewLogisticScorer()
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Start starts the background components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting attrition service...")

	if s.watcher != nil {
		if err := s.watcher.Start(ctx); err != nil {
			return fmt.Errorf("start model watcher: %w", err)
		}
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(ctx); err != nil {
			if s.watcher != nil {
				s.watcher.Stop()
			}
			return fmt.Errorf("start retention: %w", err)
		}
	}

	s.started = true
	s.logger.Info(ctx, "attrition service started",
		logger.Bool("modelWatcher", s.watcher != nil && s.watcher.IsRunning()),
		logger.Bool("retention", s.scheduler != nil && s.scheduler.IsRunning()),
	)
	return nil
}

// Stop gracefully shuts down the background components and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping attrition service...")

	if s.watcher != nil {
		s.watcher.Stop()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn(ctx, "close store failed", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "attrition service stopped")
}

// Predict checks the feature mapping against the contract and the rules,
// scores it and stores the input with its output.
//
// Client errors come back unwrapped as *features.MissingFeatureError or
// *validation.ValidationError. Collaborator failures wrap ErrInternal.
func (s *Service) Predict(ctx context.Context, input map[string]any) (Prediction, error) {
	vec, err := s.validator.ValidateMap(input)
	if err != nil {
		s.recordRejection(ctx, err)
		return Prediction{}, err
	}

	start := time.Now()
	res, err := s.scorer.Score(ctx, vec)
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordScoringError()
		s.logger.Error(ctx, "scoring failed", logger.Error(err))
		return Prediction{}, fmt.Errorf("score: %w: %w", ErrInternal, err)
	}

	if s.store == nil {
		return Prediction{}, fmt.Errorf("persist: %w: %w", ErrInternal, ErrNoStore)
	}
	prob := res.Probability
	saved, err := s.store.SavePrediction(ctx, vec.Map(), repository.Output{
		Prediction:  res.Prediction,
		Probability: &prob,
	})
	if err != nil {
		metrics.RecordErrorByComponent("service", "persist")
		s.logger.Error(ctx, "persist prediction failed", logger.Error(err))
		return Prediction{}, fmt.Errorf("persist: %w: %w", ErrInternal, err)
	}

	metrics.RecordPrediction(res.Prediction, res.Probability)
	s.logger.Debug(ctx, "prediction stored",
		logger.Int64("inputID", saved.InputID),
		logger.Int("prediction", res.Prediction),
		logger.Float64("probability", res.Probability),
		logger.String("modelVersion", res.ModelVersion),
	)

	return Prediction{
		Prediction:   res.Prediction,
		Probability:  res.Probability,
		InputID:      saved.InputID,
		ModelVersion: res.ModelVersion,
	}, nil
}

func (s *Service) recordRejection(ctx context.Context, err error) {
	var (
		missing *features.MissingFeatureError
		invalid *validation.ValidationError
	)
	switch {
	case errors.As(err, &missing):
		metrics.RecordMissingFeature(missing.Feature)
		s.logger.Info(ctx, "prediction rejected", logger.String("missingFeature", missing.Feature))
	case errors.As(err, &invalid):
		metrics.RecordValidationRejection(invalid.Group, invalid.Rule)
		s.logger.Info(ctx, "prediction rejected",
			logger.String("group", invalid.Group),
			logger.String("rule", invalid.Rule),
			logger.String("reason", invalid.Message),
		)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"features": features.Len(),
		"rules":    len(s.validator.Rules()),
	}

	if h, ok := s.scorer.(interface{ Holder() *scoring.ModelHolder }); ok {
		if m := h.Holder().Load(); m != nil {
			stats["modelName"] = m.Name
			stats["modelVersion"] = m.Version
		}
	}

	if s.store != nil {
		c, err := s.store.Count(ctx)
		if err != nil {
			s.logger.Warn(ctx, "count stored predictions failed", logger.Error(err))
		} else {
			stats["storedInputs"] = c.Inputs
			stats["storedOutputs"] = c.Outputs
			metrics.UpdateStoredInputs(c.Inputs)
		}
	}

	if s.scheduler != nil {
		if next := s.scheduler.NextRun(); next != nil {
			stats["nextRetentionRun"] = next.Format(time.RFC3339)
		}
	}

	return stats
}
