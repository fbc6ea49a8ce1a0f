package scoring

import "errors"

// Error kinds. Each is a collaborator failure, never a client error.
var (
	// ErrShapeMismatch means the vector cannot be aligned to the model columns.
	ErrShapeMismatch = errors.New("feature vector does not match model columns")
	// ErrInvalidModel means a model artifact failed to parse or validate.
	ErrInvalidModel = errors.New("invalid model")
	// ErrNoModel means the scorer has no model to score with.
	ErrNoModel = errors.New("no model loaded")
)
