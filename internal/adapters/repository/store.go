// Package repository persists prediction requests and their results.
package repository

import (
	"context"
	"time"
)

// Output is the classifier result to store next to its input.
type Output struct {
	Prediction  int
	Probability *float64
}

// InputRecord is a stored feature vector.
type InputRecord struct {
	ID        int64
	Features  map[string]any
	CreatedAt time.Time
}

// OutputRecord is a stored prediction linked to its input.
type OutputRecord struct {
	ID          int64
	InputID     int64
	Prediction  int
	Probability *float64
	CreatedAt   time.Time
}

// Saved identifies the rows written by SavePrediction.
type Saved struct {
	InputID   int64
	OutputID  int64
	CreatedAt time.Time
}

// Counts reports stored row totals.
type Counts struct {
	Inputs  int64
	Outputs int64
}

// Store provides durable access to prediction records.
type Store interface {
	// SavePrediction writes the input and its output atomically. Both rows
	// are committed or neither is.
	SavePrediction(ctx context.Context, features map[string]any, out Output) (Saved, error)

	// Input returns the input record with id, or ErrNotFound.
	Input(ctx context.Context, id int64) (InputRecord, error)

	// Outputs returns the outputs of an input, oldest first.
	Outputs(ctx context.Context, inputID int64) ([]OutputRecord, error)

	// DeleteInput removes an input and, by cascade, its outputs.
	DeleteInput(ctx context.Context, id int64) error

	// PruneOlderThan deletes inputs created before cutoff and returns how
	// many were removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Count returns row totals.
	Count(ctx context.Context) (Counts, error)

	// Close releases the store.
	Close() error
}
