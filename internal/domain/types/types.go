// Package types contains common types used across the application
package types

// Prediction is the answer to an accepted prediction request.
type Prediction struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	InputID     int64   `json:"input_id"`

	// ModelVersion is sent as a response header, not in the body.
	ModelVersion string `json:"-"`
}

// Left reports whether the employee is predicted to leave.
func (p Prediction) Left() bool { return p.Prediction == 1 }
