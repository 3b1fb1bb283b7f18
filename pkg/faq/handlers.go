package faq

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

// CreateQuestionHandler handles POST /api/faq/v1alpha1/questions
func CreateQuestionHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type createRequest struct {
		Text             string  `json:"text"`
		SourceType       *string `json:"sourceType,omitempty"`
		GenerationMethod *string `json:"generationMethod,omitempty"`
		Domain           *string `json:"domain,omitempty"`
		Service          *string `json:"service,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		q, err := NewQuestion(req.Text, actor.FromRequest(r))
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if req.SourceType != nil {
			st, ok := ParseSourceType(*req.SourceType)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown source type %q", *req.SourceType))
				return
			}
			q.SourceType = &st
		}
		if req.GenerationMethod != nil {
			gm, ok := ParseGenerationMethod(*req.GenerationMethod)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown generation method %q", *req.GenerationMethod))
				return
			}
			q.GenerationMethod = &gm
		}
		q.Domain = req.Domain
		q.Service = req.Service

		if err := store.CreateQuestion(q); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to create question: %v", err))
			return
		}

		appendAudit(audits, Question{}.TableName(), strconv.FormatInt(q.ID, 10),
			audit.ActionInsert, q.CreatedBy, nil, q.Projection())
		writeJSON(w, http.StatusCreated, q.Projection())
	}
}

// GetQuestionHandler handles GET /api/faq/v1alpha1/questions/{questionId}
func GetQuestionHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "questionId")
		if !ok {
			return
		}
		q, err := store.GetQuestion(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get question: %v", err))
			return
		}
		if q == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, q.Projection())
	}
}

// ListQuestionsHandler handles GET /api/faq/v1alpha1/questions
// Query params: status, limit
func ListQuestionsHandler(store *Store) http.HandlerFunc {
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

		questions, err := store.ListQuestionsByStatus(status, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list questions: %v", err))
			return
		}

		items := make([]map[string]any, len(questions))
		for i := range questions {
			items[i] = questions[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"questions": items, "size": len(items)})
	}
}

// CreateAnswerHandler handles POST /api/faq/v1alpha1/questions/{questionId}/answer
func CreateAnswerHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type createRequest struct {
		Text       string   `json:"text"`
		Format     string   `json:"format,omitempty"`
		Confidence *float64 `json:"confidence,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, ok := pathID(w, r, "questionId")
		if !ok {
			return
		}

		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		format := FormatHTML
		if req.Format != "" {
			f, ok := ParseAnswerFormat(req.Format)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown answer format %q", req.Format))
				return
			}
			format = f
		}

		q, err := store.GetQuestion(questionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load question: %v", err))
			return
		}
		if q == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question %d not found", questionID))
			return
		}

		a, err := NewAnswer(questionID, req.Text, format, req.Confidence, actor.FromRequest(r))
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if err := store.CreateAnswer(a); err != nil {
			writeError(w, http.StatusConflict, fmt.Sprintf("failed to create answer: %v", err))
			return
		}

		appendAudit(audits, Answer{}.TableName(), strconv.FormatInt(a.ID, 10),
			audit.ActionInsert, a.CreatedBy, nil, a.Projection())
		writeJSON(w, http.StatusCreated, a.Projection())
	}
}

// GetAnswerForQuestionHandler handles GET /api/faq/v1alpha1/questions/{questionId}/answer
func GetAnswerForQuestionHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		questionID, ok := pathID(w, r, "questionId")
		if !ok {
			return
		}
		a, err := store.GetAnswerForQuestion(questionID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get answer: %v", err))
			return
		}
		if a == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question %d has no answer", questionID))
			return
		}
		writeJSON(w, http.StatusOK, a.Projection())
	}
}

// GetAnswerHandler handles GET /api/faq/v1alpha1/answers/{answerId}
func GetAnswerHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "answerId")
		if !ok {
			return
		}
		a, err := store.GetAnswer(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get answer: %v", err))
			return
		}
		if a == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("answer %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, a.Projection())
	}
}

// SetQuestionStatusHandler handles POST /api/faq/v1alpha1/questions/{questionId}:setStatus
func SetQuestionStatusHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "questionId")
		if !ok {
			return
		}
		status, ok := decodeStatus(w, r)
		if !ok {
			return
		}

		q, err := store.GetQuestion(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load question: %v", err))
			return
		}
		if q == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("question %d not found", id))
			return
		}

		actorName := actor.FromRequest(r)
		if err := store.SetQuestionStatus(id, status, actorName); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to set status: %v", err))
			return
		}

		appendAudit(audits, Question{}.TableName(), strconv.FormatInt(id, 10),
			audit.ActionUpdate, actorName,
			map[string]any{"status": string(q.Status)},
			map[string]any{"status": string(status)})
		writeJSON(w, http.StatusOK, map[string]any{"questionId": id, "status": string(status)})
	}
}

// SetAnswerStatusHandler handles POST /api/faq/v1alpha1/answers/{answerId}:setStatus
func SetAnswerStatusHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "answerId")
		if !ok {
			return
		}
		status, ok := decodeStatus(w, r)
		if !ok {
			return
		}

		a, err := store.GetAnswer(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load answer: %v", err))
			return
		}
		if a == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("answer %d not found", id))
			return
		}

		actorName := actor.FromRequest(r)
		if err := store.SetAnswerStatus(id, status, actorName); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to set status: %v", err))
			return
		}

		appendAudit(audits, Answer{}.TableName(), strconv.FormatInt(id, 10),
			audit.ActionUpdate, actorName,
			map[string]any{"status": string(a.Status)},
			map[string]any{"status": string(status)})
		writeJSON(w, http.StatusOK, map[string]any{"answerId": id, "status": string(status)})
	}
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

func decodeStatus(w http.ResponseWriter, r *http.Request) (Status, bool) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return "", false
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", req.Status))
		return "", false
	}
	return status, true
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
