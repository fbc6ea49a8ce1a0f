// Package loadtest drives POST /predict with generated employees and checks
// that every accepted request was stored.
package loadtest

import "time"

// Config holds configuration for a load test run.
type Config struct {
	BaseURL      string        // Base URL of the service
	NumRequests  int           // Number of prediction requests to send
	InvalidRatio float64       // Share of requests deliberately rejected by a rule
	Workers      int           // Number of concurrent workers
	Timeout      time.Duration // HTTP request timeout
	OutputFile   string        // Output file for generated requests
	Verbose      bool          // Enable per-request logging
	Seed         uint64        // Generator seed; runs with the same seed send the same requests
}

// Request is one generated prediction request.
type Request struct {
	ID       string         `json:"id"`
	Kind     string         `json:"kind"`
	Features map[string]any `json:"features"`
}

// PredictResponse mirrors the 200 body of POST /predict.
type PredictResponse struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
	InputID     int64   `json:"input_id"`
}

// ErrorResponse mirrors the error body of POST /predict.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Rule   string `json:"rule,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated   int
	Submitted   int
	Accepted    int
	Rejected    int
	RateLimited int
	Failed      int
	Leaving     int
	Unexpected  int
	StoredDelta int64
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
}
