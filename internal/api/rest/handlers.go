package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/clintrovert/gorkon/internal/leader"
	"github.com/clintrovert/gorkon/internal/temporal"
	"github.com/clintrovert/gorkon/internal/trigger"
)

// Handler handles REST API requests
type Handler struct {
	leader *leader.Leader
	logger *zap.Logger
}

// NewHandler creates a new REST handler
func NewHandler(l *leader.Leader, logger *zap.Logger) *Handler {
	return &Handler{
		leader: l,
		logger: logger,
	}
}

// TriggerResponse acknowledges an accepted trigger. Acceptance means a run
// was started, not that the pipeline finished.
type TriggerResponse struct {
	WorkflowID string `json:"workflow_id"`
	Status     string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleTrigger handles POST /triggers
func (h *Handler) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	var ev trigger.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed trigger payload: " + err.Error()})
		return
	}

	workflowID, err := h.leader.HandleTrigger(r.Context(), ev)
	if err != nil {
		var verr *trigger.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
		case errors.Is(err, temporal.ErrConcurrentRun):
			writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		default:
			h.logger.Error("failed to start run", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusAccepted, TriggerResponse{
		WorkflowID: workflowID,
		Status:     "accepted",
	})
}

// GetRun handles GET /runs/{ticketID}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	run, err := h.leader.RunStatus(r.Context(), ticketID)
	if err != nil {
		if errors.Is(err, temporal.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to query run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// CancelRun handles DELETE /runs/{ticketID}
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	if err := h.leader.CancelRun(r.Context(), ticketID); err != nil {
		if errors.Is(err, temporal.ErrRunNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
			return
		}
		h.logger.Error("failed to cancel run", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// RegisterRoutes registers REST API routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/triggers", h.HandleTrigger)
	r.Get("/runs/{ticketID}", h.GetRun)
	r.Delete("/runs/{ticketID}", h.CancelRun)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
