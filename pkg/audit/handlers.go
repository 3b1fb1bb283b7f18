package audit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ListEntriesHandler handles GET /api/audit/v1alpha1/entries
// Query params: action, limit
func ListEntriesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			if v, err := strconv.Atoi(l); err == nil && v > 0 {
				limit = v
			}
		}

		entries, err := store.ListRecent(limit, r.URL.Query().Get("action"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list audit entries: %v", err))
			return
		}
		writeEntryList(w, entries)
	}
}

// GetEntryHandler handles GET /api/audit/v1alpha1/entries/{auditId}
func GetEntryHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auditID := chi.URLParam(r, "auditId")
		if auditID == "" {
			writeError(w, http.StatusBadRequest, "missing audit ID")
			return
		}

		entry, err := store.Get(auditID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get audit entry: %v", err))
			return
		}
		if entry == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("audit entry %q not found", auditID))
			return
		}

		writeJSON(w, http.StatusOK, entry.Projection())
	}
}

// ListByRecordHandler handles GET /api/audit/v1alpha1/records/{table}/{recordId}
func ListByRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := chi.URLParam(r, "table")
		recordID := chi.URLParam(r, "recordId")
		if table == "" || recordID == "" {
			writeError(w, http.StatusBadRequest, "missing table or record ID")
			return
		}

		entries, err := store.ListByRecord(table, recordID, queryLimit(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list audit entries: %v", err))
			return
		}
		writeEntryList(w, entries)
	}
}

// ListByRunHandler handles GET /api/audit/v1alpha1/runs/{runId}
func ListByRunHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runId")
		if runID == "" {
			writeError(w, http.StatusBadRequest, "missing run ID")
			return
		}

		entries, err := store.ListByRun(runID, queryLimit(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list audit entries: %v", err))
			return
		}
		writeEntryList(w, entries)
	}
}

func queryLimit(r *http.Request) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			return v
		}
	}
	return 100
}

func writeEntryList(w http.ResponseWriter, entries []Entry) {
	items := make([]map[string]any, len(entries))
	for i := range entries {
		items[i] = entries[i].Projection()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": items,
		"size":    len(items),
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
