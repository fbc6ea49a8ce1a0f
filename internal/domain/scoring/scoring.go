// Package scoring turns an accepted feature vector into an attrition
// prediction. The classifier is a logistic model loaded from a YAML artifact
// and swapped atomically when the artifact changes.
package scoring

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/okian/attrition/internal/domain/features"
)

// Result is the classifier output for one vector.
type Result struct {
	Prediction   int
	Probability  float64
	ModelVersion string
}

// Scorer scores an accepted feature vector.
type Scorer interface {
	// Score computes a prediction, honoring ctx for cancellation.
	Score(ctx context.Context, v *features.Vector) (Result, error)
}

// ModelHolder keeps the current model. Reads and swaps are lock free.
type ModelHolder struct {
	current atomic.Pointer[Model]
}

// NewModelHolder returns a holder serving m.
func NewModelHolder(m *Model) *ModelHolder {
	h := &ModelHolder{}
	h.current.Store(m)
	return h
}

// Load returns the current model, possibly nil.
func (h *ModelHolder) Load() *Model { return h.current.Load() }

// Swap validates m and makes it current.
func (h *ModelHolder) Swap(m *Model) error {
	if m == nil {
		return ErrNoModel
	}
	if err := m.Validate(); err != nil {
		return err
	}
	h.current.Store(m)
	return nil
}

// Option applies a configuration option to the LogisticScorer.
type Option func(*LogisticScorer)

// WithModel serves a fixed model.
func WithModel(m *Model) Option {
	return func(s *LogisticScorer) {
		if m != nil {
			s.holder = NewModelHolder(m)
		}
	}
}

// WithHolder shares a holder, typically one updated by a Watcher.
func WithHolder(h *ModelHolder) Option {
	return func(s *LogisticScorer) {
		if h != nil {
			s.holder = h
		}
	}
}

// LogisticScorer computes sigmoid(intercept + w·x).
type LogisticScorer struct {
	holder *ModelHolder
}

// NewLogisticScorer creates a scorer. Without options it serves the embedded
// default model.
func NewLogisticScorer(opts ...Option) *LogisticScorer {
	s := &LogisticScorer{}
	for _, opt := range opts {
		opt(s)
	}
	if s.holder == nil {
		s.holder = NewModelHolder(DefaultModel())
	}
	return s
}

// Holder exposes the model holder.
func (s *LogisticScorer) Holder() *ModelHolder { return s.holder }

// Score aligns v to the model columns and classifies it.
func (s *LogisticScorer) Score(ctx context.Context, v *features.Vector) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("context cancelled: %w", err)
	}
	m := s.holder.Load()
	x, err := Align(m, v)
	if err != nil {
		return Result{}, err
	}

	z := m.Intercept
	for i, c := range m.Columns {
		z += c.Weight * x[i]
	}
	p := sigmoid(z)

	pred := 0
	if p >= m.Threshold {
		pred = 1
	}
	return Result{Prediction: pred, Probability: p, ModelVersion: m.Version}, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
