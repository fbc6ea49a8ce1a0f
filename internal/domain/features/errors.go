package features

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Both are client-input errors.
var (
	ErrMissingFeature = errors.New("missing feature")
	ErrInvalidFeature = errors.New("invalid feature")
)

// MissingFeatureError reports the first canonical feature absent from the
// input mapping.
type MissingFeatureError struct {
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("feature manquante: %s", e.Feature)
}

// Is lets callers match with errors.Is(err, ErrMissingFeature).
func (e *MissingFeatureError) Is(target error) bool { return target == ErrMissingFeature }

// ValidationError is a semantic rule violation. Message is the human readable
// reason surfaced to API clients; Rule and Group identify the failing check.
type ValidationError struct {
	Rule    string
	Group   string
	Feature string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Is lets callers match with errors.Is(err, ErrInvalidFeature).
func (e *ValidationError) Is(target error) bool { return target == ErrInvalidFeature }
