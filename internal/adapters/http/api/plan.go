package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/okian/practiceplan/internal/domain/assessment"
	"github.com/okian/practiceplan/pkg/logger"
)

// PlanGenerator produces a practice plan. Errors are reported to the caller
// as a 500 carrying the error text.
type PlanGenerator interface {
	GeneratePlan(ctx context.Context, payload assessment.Payload) (string, error)
}

// PlanHandler handles plan generation requests.
type PlanHandler struct {
	deps         PlanGenerator
	maxBodyBytes int64
	log          logger.Logger
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps PlanGenerator, maxBodyBytes int64, log logger.Logger) *PlanHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &PlanHandler{deps: deps, maxBodyBytes: maxBodyBytes, log: log}
}

type planResponse struct {
	Plan string `json:"plan"`
}

// HandleGeneratePlan handles POST /api/generate-plan requests.
func (h *PlanHandler) HandleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_plan"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	ctx := r.Context()

	payload, err := assessment.Decode(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, NewKind(op, ErrPayloadTooLarge))
			return
		}
		writeError(w, http.StatusBadRequest, WrapKind(op, ErrBadRequest, err))
		return
	}

	out, err := h.deps.GeneratePlan(ctx, payload)
	if err != nil {
		err = WrapKind(op, ErrGeneration, err)
		h.log.Error(ctx, "generate plan failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Plan: out})
}
