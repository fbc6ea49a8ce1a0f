// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/attrition/internal/domain/types"
	"github.com/okian/attrition/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict validates, scores and stores one feature mapping.
	Predict(ctx context.Context, input map[string]any) (types.Prediction, error)
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit throttles POST /predict to rps requests per second with the
// given burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithMaxBodyBytes caps the request body read by POST /predict.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

const defaultMaxBodyBytes = 1 << 20

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	predictHandler *PredictHandler

	rateLimitRPS   float64
	rateLimitBurst int
	maxBodyBytes   int64
	log            logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes, s.log)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	predict := RateLimitMiddleware(s.predictHandler.HandlePredict, "predict", s.rateLimitRPS, s.rateLimitBurst)

	mux.HandleFunc("/health", s.route("health", s.healthHandler.HandleHealth))
	mux.HandleFunc("/metrics", s.route("metrics", s.healthHandler.HandleMetrics))
	mux.HandleFunc("/stats", s.route("stats", s.statsHandler.HandleStats))
	mux.HandleFunc("/predict", s.route("predict", predict))
}

// route applies the middleware every endpoint shares.
func (s *Server) route(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
	Rule   string `json:"rule,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Detail: msg, Code: code})
}
