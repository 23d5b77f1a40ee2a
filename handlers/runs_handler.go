package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/serillon/docqa/pipeline"
)

// RunsResponse is the payload served by the run-history endpoint.
type RunsResponse struct {
	Runs  []pipeline.RunRecord `json:"runs"`
	Count int                  `json:"count"`
}

// RunsHandler serves the recent run history kept by the run store.
type RunsHandler struct {
	runs   *pipeline.RunStore
	logger *slog.Logger
}

func NewRunsHandler(runs *pipeline.RunStore, logger *slog.Logger) *RunsHandler {
	return &RunsHandler{
		runs:   runs,
		logger: logger,
	}
}

func (h *RunsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	records := h.runs.List()
	response := RunsResponse{
		Runs:  records,
		Count: len(records),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.logger.Error("Failed to encode runs response",
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// HealthCheck is a liveness probe.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
