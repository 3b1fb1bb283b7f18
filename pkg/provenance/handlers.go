package provenance

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

type createLinkRequest struct {
	QuestionID      int64    `json:"questionId,omitempty"`
	AnswerID        int64    `json:"answerId,omitempty"`
	Checksum        string   `json:"checksum"`
	IsPrimarySource bool     `json:"isPrimarySource,omitempty"`
	Weight          *float64 `json:"weight,omitempty"`
	ContextEmployed *string  `json:"contextEmployed,omitempty"`
}

type closeRequest struct {
	Reason   string `json:"reason"`
	ChangeID *int64 `json:"changeId,omitempty"`
}

// CreateQuestionSourceHandler handles POST /api/provenance/v1alpha1/question-sources
func CreateQuestionSourceHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		link, err := NewQuestionSource(req.QuestionID, req.Checksum, req.Weight)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		link.IsPrimarySource = req.IsPrimarySource

		if err := store.CreateQuestionSource(link); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create link: %v", err))
			return
		}

		appendAudit(audits, QuestionSource{}.TableName(), strconv.FormatInt(link.ID, 10),
			audit.ActionInsert, actor.FromRequest(r), nil, link.Projection())
		writeJSON(w, http.StatusCreated, link.Projection())
	}
}

// CreateAnswerSourceHandler handles POST /api/provenance/v1alpha1/answer-sources
func CreateAnswerSourceHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createLinkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		link, err := NewAnswerSource(req.AnswerID, req.Checksum, req.Weight)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		link.IsPrimarySource = req.IsPrimarySource
		link.ContextEmployed = req.ContextEmployed

		if err := store.CreateAnswerSource(link); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create link: %v", err))
			return
		}

		appendAudit(audits, AnswerSource{}.TableName(), strconv.FormatInt(link.ID, 10),
			audit.ActionInsert, actor.FromRequest(r), nil, link.Projection())
		writeJSON(w, http.StatusCreated, link.Projection())
	}
}

// GetQuestionSourceHandler handles GET /api/provenance/v1alpha1/question-sources/{sourceId}
func GetQuestionSourceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "sourceId")
		if !ok {
			return
		}
		link, err := store.GetQuestionSource(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get link: %v", err))
			return
		}
		if link == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question source %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, link.Projection())
	}
}

// GetAnswerSourceHandler handles GET /api/provenance/v1alpha1/answer-sources/{sourceId}
func GetAnswerSourceHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "sourceId")
		if !ok {
			return
		}
		link, err := store.GetAnswerSource(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get link: %v", err))
			return
		}
		if link == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("answer source %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, link.Projection())
	}
}

// ListQuestionSourcesHandler handles GET /api/provenance/v1alpha1/question-sources
// Query params: checksum (required), validOnly
func ListQuestionSourcesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checksum := r.URL.Query().Get("checksum")
		if checksum == "" {
			writeError(w, http.StatusBadRequest, "checksum query parameter is required")
			return
		}
		validOnly := r.URL.Query().Get("validOnly") == "true"

		links, err := store.ListQuestionSourcesByChecksum(checksum, validOnly)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list links: %v", err))
			return
		}
		items := make([]map[string]any, len(links))
		for i := range links {
			items[i] = links[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"sources": items, "size": len(items)})
	}
}

// ListAnswerSourcesHandler handles GET /api/provenance/v1alpha1/answer-sources
// Query params: checksum (required), validOnly
func ListAnswerSourcesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checksum := r.URL.Query().Get("checksum")
		if checksum == "" {
			writeError(w, http.StatusBadRequest, "checksum query parameter is required")
			return
		}
		validOnly := r.URL.Query().Get("validOnly") == "true"

		links, err := store.ListAnswerSourcesByChecksum(checksum, validOnly)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list links: %v", err))
			return
		}
		items := make([]map[string]any, len(links))
		for i := range links {
			items[i] = links[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"sources": items, "size": len(items)})
	}
}

// CloseQuestionSourceHandler handles POST /api/provenance/v1alpha1/question-sources/{sourceId}:close
// Closing an already-closed window is a no-op success: the response reports
// closed=false and no audit entry is written.
func CloseQuestionSourceHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "sourceId")
		if !ok {
			return
		}
		closure, ok := decodeClosure(w, r)
		if !ok {
			return
		}

		link, err := store.GetQuestionSource(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load link: %v", err))
			return
		}
		if link == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question source %d not found", id))
			return
		}

		closed, err := store.CloseQuestionSource(id, closure)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if closed {
			appendAudit(audits, QuestionSource{}.TableName(), strconv.FormatInt(id, 10),
				closeAction(closure.Reason), actor.FromRequest(r),
				link.Projection(), closeNewValues(closure))
		}
		writeJSON(w, http.StatusOK, map[string]any{"sourceId": id, "closed": closed})
	}
}

// CloseAnswerSourceHandler handles POST /api/provenance/v1alpha1/answer-sources/{sourceId}:close
func CloseAnswerSourceHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "sourceId")
		if !ok {
			return
		}
		closure, ok := decodeClosure(w, r)
		if !ok {
			return
		}

		link, err := store.GetAnswerSource(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load link: %v", err))
			return
		}
		if link == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("answer source %d not found", id))
			return
		}

		closed, err := store.CloseAnswerSource(id, closure)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if closed {
			appendAudit(audits, AnswerSource{}.TableName(), strconv.FormatInt(id, 10),
				closeAction(closure.Reason), actor.FromRequest(r),
				link.Projection(), closeNewValues(closure))
		}
		writeJSON(w, http.StatusOK, map[string]any{"sourceId": id, "closed": closed})
	}
}

func decodeClosure(w http.ResponseWriter, r *http.Request) (Closure, bool) {
	var req closeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return Closure{}, false
	}
	reason, ok := ParseInvalidationReason(req.Reason)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown invalidation reason %q", req.Reason))
		return Closure{}, false
	}
	return Closure{Reason: reason, ChangeID: req.ChangeID}, true
}

func closeAction(reason InvalidationReason) audit.Action {
	if reason == ReasonSelectiveImpact {
		return audit.ActionSelectiveInvalidate
	}
	return audit.ActionInvalidate
}

func closeNewValues(c Closure) map[string]any {
	m := map[string]any{
		"is_valid":            false,
		"invalidation_reason": string(c.Reason),
	}
	if c.ChangeID != nil {
		m["invalidated_by_change_id"] = *c.ChangeID
	}
	return m
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

func appendAudit(audits *audit.Store, table, recordID string, action audit.Action,
	actorName string, oldValues, newValues map[string]any) {
	if audits == nil {
		return
	}
	entry, err := audit.NewEntry(table, recordID, action, actorName)
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
