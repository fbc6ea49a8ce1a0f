// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/attrition/internal/domain/features"
	"github.com/okian/attrition/pkg/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// predictRequest mirrors the OpenAPI schema for POST /predict.
type predictRequest struct {
	Features map[string]any `json:"features" validate:"required"`
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         Dependencies
	maxBodyBytes int64
	log          logger.Logger
}

// NewPredictHandler creates a new predict handler.
func NewPredictHandler(deps Dependencies, maxBodyBytes int64, log logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes, log: log}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	dec.UseNumber()
	var req predictRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request",
			WrapKind(op, ErrBadRequest, errors.New("features: required object")))
		return
	}

	pred, err := h.deps.Predict(r.Context(), req.Features)
	if err != nil {
		h.writePredictError(w, r, err)
		return
	}

	if pred.ModelVersion != "" {
		w.Header().Set("X-Model-Version", pred.ModelVersion)
	}
	writeJSON(w, http.StatusOK, pred)
}

// writePredictError maps client errors to 400 with their message and every
// other failure to an opaque 500.
func (h *PredictHandler) writePredictError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing *features.MissingFeatureError
		invalid *features.ValidationError
	)
	switch {
	case errors.As(err, &missing):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: missing.Error(),
			Code:   "missing_feature",
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Detail: invalid.Message,
			Code:   "validation_error",
			Rule:   invalid.Rule,
		})
	default:
		h.log.Error(r.Context(), "predict failed", logger.Error(WrapKind("api.predict", ErrInternal, err)))
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: ErrInternal.Error(),
			Code:   "internal_error",
		})
	}
}
