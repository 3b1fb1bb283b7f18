package impact

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/actor"
)

// AnalyzeChangeHandler handles POST /api/impact/v1alpha1/changes/{changeId}:analyze
func AnalyzeChangeHandler(analyzer *Analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changeID, ok := pathID(w, r, "changeId")
		if !ok {
			return
		}

		result, err := analyzer.AnalyzeChange(r.Context(), changeID, actor.FromRequest(r))
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("analysis failed: %v", err))
			return
		}

		records := make([]map[string]any, len(result.Records))
		for i := range result.Records {
			records[i] = result.Records[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"changeId":          result.ChangeID,
			"totalAtRisk":       result.TotalAtRisk,
			"affectedQuestions": result.AffectedQuestions,
			"affectedAnswers":   result.AffectedAnswers,
			"records":           records,
		})
	}
}

// ListByChangeHandler handles GET /api/impact/v1alpha1/changes/{changeId}/records
// Query params: affectedOnly
func ListByChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changeID, ok := pathID(w, r, "changeId")
		if !ok {
			return
		}

		var records []Record
		var err error
		if r.URL.Query().Get("affectedOnly") == "true" {
			records, err = store.ListAffectedByChange(changeID)
		} else {
			records, err = store.ListByChange(changeID)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list impact records: %v", err))
			return
		}

		items := make([]map[string]any, len(records))
		for i := range records {
			items[i] = records[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"records": items, "size": len(items)})
	}
}

// GetRecordHandler handles GET /api/impact/v1alpha1/records/{impactId}
func GetRecordHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "impactId")
		if !ok {
			return
		}
		rec, err := store.Get(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get impact record: %v", err))
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("impact record %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, rec.Projection())
	}
}

// GetByPairHandler handles GET /api/impact/v1alpha1/pair
// Query params: changeId (required), questionId, answerId
func GetByPairHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changeID, err := strconv.ParseInt(r.URL.Query().Get("changeId"), 10, 64)
		if err != nil || changeID <= 0 {
			writeError(w, http.StatusBadRequest, "changeId query parameter is required")
			return
		}
		questionID := queryID(r, "questionId")
		answerID := queryID(r, "answerId")

		rec, err := store.GetByPair(changeID, questionID, answerID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get impact record: %v", err))
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, "no verdict for this pairing")
			return
		}
		writeJSON(w, http.StatusOK, rec.Projection())
	}
}

func queryID(r *http.Request, param string) int64 {
	if v := r.URL.Query().Get(param); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return 0
}

func pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s %q", param, raw))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
