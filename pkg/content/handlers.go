package content

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/actor"
	"github.com/knowbase/faqprov/pkg/audit"
	"github.com/knowbase/faqprov/pkg/faqerrors"
)

// RegisterChecksumHandler handles POST /api/content/v1alpha1/checksums
// Registering an already-known digest is a no-op success.
func RegisterChecksumHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type registerRequest struct {
		Checksum    string  `json:"checksum"`
		FileName    *string `json:"fileName,omitempty"`
		PageNumber  *int64  `json:"pageNumber,omitempty"`
		SectionName *string `json:"sectionName,omitempty"`
		Title       *string `json:"title,omitempty"`
		URL         *string `json:"url,omitempty"`
		Domain      *string `json:"domain,omitempty"`
		Service     *string `json:"service,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		rec, err := NewRecord(req.Checksum)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		rec.FileName = req.FileName
		rec.PageNumber = req.PageNumber
		rec.SectionName = req.SectionName
		rec.Title = req.Title
		rec.URL = req.URL
		rec.Domain = req.Domain
		rec.Service = req.Service

		created, err := store.Create(rec)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to register checksum: %v", err))
			return
		}

		if created {
			appendAudit(audits, rec.Checksum, audit.ActionInsert, actor.FromRequest(r), nil, rec.Projection())
			writeJSON(w, http.StatusCreated, rec.Projection())
			return
		}

		existing, err := store.Get(req.Checksum)
		if err != nil || existing == nil {
			writeError(w, http.StatusInternalServerError, "failed to load existing checksum")
			return
		}
		writeJSON(w, http.StatusOK, existing.Projection())
	}
}

// GetChecksumHandler handles GET /api/content/v1alpha1/checksums/{checksum}
func GetChecksumHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checksum := chi.URLParam(r, "checksum")

		rec, err := store.Get(checksum)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get checksum: %v", err))
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("checksum %q not found", checksum))
			return
		}
		writeJSON(w, http.StatusOK, rec.Projection())
	}
}

// ListChecksumsHandler handles GET /api/content/v1alpha1/checksums
// Query params: status, limit
func ListChecksumsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		statusTag := r.URL.Query().Get("status")
		if statusTag == "" {
			statusTag = string(StatusActive)
		}
		status, ok := ParseStatus(statusTag)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", statusTag))
			return
		}

		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v
			}
		}

		records, err := store.ListByStatus(status, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list checksums: %v", err))
			return
		}

		items := make([]map[string]any, len(records))
		for i := range records {
			items[i] = records[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"checksums": items, "size": len(items)})
	}
}

// SetStatusHandler handles POST /api/content/v1alpha1/checksums/{checksum}:setStatus
func SetStatusHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type statusRequest struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		checksum := chi.URLParam(r, "checksum")

		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}
		status, ok := ParseStatus(req.Status)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
			return
		}

		before, err := store.Get(checksum)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load checksum: %v", err))
			return
		}
		if before == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("checksum %q not found", checksum))
			return
		}

		if err := store.SetStatus(checksum, status); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to set status: %v", err))
			return
		}

		appendAudit(audits, checksum, audit.ActionUpdate, actor.FromRequest(r),
			map[string]any{"status": string(before.Status)},
			map[string]any{"status": string(status)})
		writeJSON(w, http.StatusOK, map[string]string{"checksum": checksum, "status": string(status)})
	}
}

func appendAudit(audits *audit.Store, recordID string, action audit.Action,
	actorName string, oldValues, newValues map[string]any) {
	if audits == nil {
		return
	}
	entry, err := audit.NewEntry(Record{}.TableName(), recordID, action, actorName)
	if err != nil {
		return
	}
	entry.OldValues = oldValues
	entry.NewValues = newValues
	_ = audits.Append(entry)
}

func writeValidationError(w http.ResponseWriter, err error) {
	if verr, ok := err.(*faqerrors.ValidationError); ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": verr.Message,
			"field": verr.Field,
		})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
