package runs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/knowbase/faqprov/pkg/actor"
)

// CreateRunHandler handles POST /api/runs/v1alpha1/detections
func CreateRunHandler(store *RunStore) http.HandlerFunc {
	type createRequest struct {
		SourceName     string  `json:"sourceName"`
		Domain         *string `json:"domain,omitempty"`
		Service        *string `json:"service,omitempty"`
		IdempotencyKey string  `json:"idempotencyKey,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		if req.SourceName == "" {
			writeError(w, http.StatusBadRequest, "sourceName is required")
			return
		}

		run := &DetectionRun{
			ID:             uuid.NewString(),
			SourceName:     req.SourceName,
			Domain:         req.Domain,
			Service:        req.Service,
			RequestedBy:    actor.FromRequest(r),
			RequestedAt:    time.Now().UTC(),
			IdempotencyKey: optionalKey(req.IdempotencyKey),
		}

		created, err := store.Enqueue(run)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to enqueue run: %v", err))
			return
		}

		status := http.StatusCreated
		if created.ID != run.ID {
			// Idempotency key matched an existing non-terminal run.
			status = http.StatusOK
		}
		writeJSON(w, status, runToResponse(created))
	}
}

// GetRunHandler handles GET /api/runs/v1alpha1/detections/{runId}
func GetRunHandler(store *RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runId")
		if runID == "" {
			writeError(w, http.StatusBadRequest, "missing run ID")
			return
		}

		run, err := store.Get(runID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get run: %v", err))
			return
		}
		if run == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("run %q not found", runID))
			return
		}

		writeJSON(w, http.StatusOK, runToResponse(run))
	}
}

// ListRunsHandler handles GET /api/runs/v1alpha1/detections
// Query params: sourceName, state, requestedBy, domain, pageSize, pageToken
func ListRunsHandler(store *RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := RunListFilter{
			SourceName:  r.URL.Query().Get("sourceName"),
			State:       r.URL.Query().Get("state"),
			RequestedBy: r.URL.Query().Get("requestedBy"),
			Domain:      r.URL.Query().Get("domain"),
		}

		pageSize := 20
		if ps := r.URL.Query().Get("pageSize"); ps != "" {
			if v, err := strconv.Atoi(ps); err == nil && v > 0 {
				pageSize = v
			}
		}
		pageToken := r.URL.Query().Get("pageToken")

		records, nextToken, total, err := store.List(filter, pageSize, pageToken)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
			return
		}

		items := make([]runResponse, len(records))
		for i := range records {
			items[i] = runToResponse(&records[i])
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"runs":          items,
			"nextPageToken": nextToken,
			"totalSize":     total,
		})
	}
}

// CancelRunHandler handles POST /api/runs/v1alpha1/detections/{runId}:cancel
func CancelRunHandler(store *RunStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runId")
		if runID == "" {
			writeError(w, http.StatusBadRequest, "missing run ID")
			return
		}

		if err := store.Cancel(runID); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to cancel run: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status": "canceled",
			"runId":  runID,
		})
	}
}

func optionalKey(key string) *string {
	if key == "" {
		return nil
	}
	return &key
}

// runResponse is the API response for a detection run.
type runResponse struct {
	ID              string `json:"id"`
	SourceName      string `json:"sourceName"`
	Domain          string `json:"domain,omitempty"`
	Service         string `json:"service,omitempty"`
	RequestedBy     string `json:"requestedBy"`
	RequestedAt     string `json:"requestedAt"`
	State           string `json:"state"`
	Message         string `json:"message,omitempty"`
	StartedAt       string `json:"startedAt,omitempty"`
	FinishedAt      string `json:"finishedAt,omitempty"`
	AttemptCount    int    `json:"attemptCount"`
	LastError       string `json:"lastError,omitempty"`
	ChangesDetected int    `json:"changesDetected,omitempty"`
	FAQsInvalidated int    `json:"faqsInvalidated,omitempty"`
	DurationMs      int64  `json:"durationMs,omitempty"`
}

func runToResponse(run *DetectionRun) runResponse {
	resp := runResponse{
		ID:              run.ID,
		SourceName:      run.SourceName,
		RequestedBy:     run.RequestedBy,
		RequestedAt:     run.RequestedAt.Format(time.RFC3339),
		State:           string(run.State),
		Message:         run.Message,
		AttemptCount:    run.AttemptCount,
		LastError:       run.LastError,
		ChangesDetected: run.ChangesDetected,
		FAQsInvalidated: run.FAQsInvalidated,
		DurationMs:      run.DurationMs,
	}
	if run.Domain != nil {
		resp.Domain = *run.Domain
	}
	if run.Service != nil {
		resp.Service = *run.Service
	}
	if run.StartedAt != nil {
		resp.StartedAt = run.StartedAt.Format(time.RFC3339)
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
