package change

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

// RecordChangeHandler handles POST /api/changes/v1alpha1/changes
// The change type is classified from the observation at intake; when the
// modified/unchanged split depends on a diff that has not been computed
// yet, classification is deferred to diff attachment.
func RecordChangeHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type recordRequest struct {
		Checksum         string   `json:"checksum"`
		PreviousChecksum *string  `json:"previousChecksum,omitempty"`
		Deleted          bool     `json:"deleted,omitempty"`
		LocationOnly     bool     `json:"locationOnly,omitempty"`
		DetectionRunID   string   `json:"detectionRunId"`
		FileName         string   `json:"fileName,omitempty"`
		PageNumber       *int64   `json:"pageNumber,omitempty"`
		SectionName      *string  `json:"sectionName,omitempty"`
		SimilarityScore  *float64 `json:"similarityScore,omitempty"`
		SimilarityMethod *string  `json:"similarityMethod,omitempty"`
		Domain           *string  `json:"domain,omitempty"`
		Service          *string  `json:"service,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		rec, err := NewRecord(req.Checksum, req.PreviousChecksum, req.DetectionRunID, req.SimilarityScore)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		rec.FileName = req.FileName
		rec.PageNumber = req.PageNumber
		rec.SectionName = req.SectionName
		rec.SimilarityMethod = req.SimilarityMethod
		rec.Domain = req.Domain
		rec.Service = req.Service

		obs := Observation{
			PreviousChecksum: req.PreviousChecksum,
			LocationOnly:     req.LocationOnly,
		}
		if !req.Deleted {
			checksum := req.Checksum
			obs.NewChecksum = &checksum
		}

		// Modified vs unchanged needs the diff; every other case is
		// decidable at intake.
		resolved := ResolveType(obs)
		if resolved != TypeModifiedContent && resolved != TypeUnchangedContent {
			rec.ChangeType = &resolved
			rec.RequiresFAQRegen = resolved == TypeDeletedContent
		}

		if err := store.Create(rec); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to record change: %v", err))
			return
		}

		appendAudit(audits, Record{}.TableName(), strconv.FormatInt(rec.ID, 10),
			audit.ActionInsert, actor.FromRequest(r), rec.DetectionRunID, nil, rec.Projection())
		writeJSON(w, http.StatusCreated, rec.Projection())
	}
}

// GetChangeHandler handles GET /api/changes/v1alpha1/changes/{changeId}
func GetChangeHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "changeId")
		if !ok {
			return
		}
		rec, err := store.Get(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get change: %v", err))
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("change %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, rec.Projection())
	}
}

// ListChangesByRunHandler handles GET /api/changes/v1alpha1/changes
// Query params: runId (required)
func ListChangesByRunHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("runId")
		if runID == "" {
			writeError(w, http.StatusBadRequest, "runId query parameter is required")
			return
		}

		records, err := store.ListByRun(runID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list changes: %v", err))
			return
		}
		items := make([]map[string]any, len(records))
		for i := range records {
			items[i] = records[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"changes": items, "size": len(items)})
	}
}

// AttachDiffHandler handles POST /api/changes/v1alpha1/changes/{changeId}/diffs
// Attaching a diff also settles the modified/unchanged classification when
// it was deferred at intake.
func AttachDiffHandler(store *Store, audits *audit.Store) http.HandlerFunc {
	type diffRequest struct {
		OldChecksum        string         `json:"oldChecksum"`
		NewChecksum        string         `json:"newChecksum"`
		DiffType           *string        `json:"diffType,omitempty"`
		DiffAlgorithm      *string        `json:"diffAlgorithm,omitempty"`
		AdditionsCount     *int64         `json:"additionsCount,omitempty"`
		DeletionsCount     *int64         `json:"deletionsCount,omitempty"`
		ModificationsCount *int64         `json:"modificationsCount,omitempty"`
		TotalChanges       *int64         `json:"totalChanges,omitempty"`
		ChangePercentage   *float64       `json:"changePercentage,omitempty"`
		DiffData           map[string]any `json:"diffData,omitempty"`
		ContainsNumeric    *bool          `json:"containsNumericChanges,omitempty"`
		ContainsDate       *bool          `json:"containsDateChanges,omitempty"`
		ContainsPolicy     *bool          `json:"containsPolicyChanges,omitempty"`
		ContainsEligibility *bool         `json:"containsEligibilityChanges,omitempty"`
		ChangedPhrases     []string       `json:"changedPhrases,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		changeID, ok := pathID(w, r, "changeId")
		if !ok {
			return
		}

		rec, err := store.Get(changeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load change: %v", err))
			return
		}
		if rec == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("change %d not found", changeID))
			return
		}

		var req diffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
			return
		}

		d, err := NewDiff(changeID, req.OldChecksum, req.NewChecksum, req.ChangePercentage)
		if err != nil {
			writeValidationError(w, err)
			return
		}
		if req.DiffType != nil {
			dt, ok := ParseDiffType(*req.DiffType)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown diff type %q", *req.DiffType))
				return
			}
			d.DiffType = &dt
		}
		if req.DiffAlgorithm != nil {
			da, ok := ParseDiffAlgorithm(*req.DiffAlgorithm)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown diff algorithm %q", *req.DiffAlgorithm))
				return
			}
			d.DiffAlgorithm = &da
		}
		d.AdditionsCount = req.AdditionsCount
		d.DeletionsCount = req.DeletionsCount
		d.ModificationsCount = req.ModificationsCount
		d.TotalChanges = req.TotalChanges
		d.DiffData = req.DiffData
		d.ContainsNumericChanges = req.ContainsNumeric
		d.ContainsDateChanges = req.ContainsDate
		d.ContainsPolicyChanges = req.ContainsPolicy
		d.ContainsEligibilityChanges = req.ContainsEligibility
		d.ChangedPhrases = req.ChangedPhrases

		if err := store.CreateDiff(d); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to attach diff: %v", err))
			return
		}

		if rec.ChangeType == nil {
			resolved := TypeUnchangedContent
			requiresRegen := false
			if d.HasRecordedChanges() {
				resolved = TypeModifiedContent
				requiresRegen = true
			}
			if err := store.SetChangeType(changeID, resolved, requiresRegen); err != nil {
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to classify change: %v", err))
				return
			}
		}

		appendAudit(audits, Diff{}.TableName(), strconv.FormatInt(d.ID, 10),
			audit.ActionInsert, actor.FromRequest(r), rec.DetectionRunID, nil, d.Projection())
		writeJSON(w, http.StatusCreated, d.Projection())
	}
}

// ListDiffsHandler handles GET /api/changes/v1alpha1/changes/{changeId}/diffs
func ListDiffsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changeID, ok := pathID(w, r, "changeId")
		if !ok {
			return
		}
		diffs, err := store.ListDiffsForChange(changeID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list diffs: %v", err))
			return
		}
		items := make([]map[string]any, len(diffs))
		for i := range diffs {
			items[i] = diffs[i].Projection()
		}
		writeJSON(w, http.StatusOK, map[string]any{"diffs": items, "size": len(items)})
	}
}

// GetDiffHandler handles GET /api/changes/v1alpha1/diffs/{diffId}
func GetDiffHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "diffId")
		if !ok {
			return
		}
		d, err := store.GetDiff(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get diff: %v", err))
			return
		}
		if d == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("diff %d not found", id))
			return
		}
		writeJSON(w, http.StatusOK, d.Projection())
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

func appendAudit(audits *audit.Store, table, recordID string, action audit.Action,
	actorName, runID string, oldValues, newValues map[string]any) {
	if audits == nil {
		return
	}
	entry, err := audit.NewEntry(table, recordID, action, actorName)
	if err != nil {
		return
	}
	entry.OldValues = oldValues
	entry.NewValues = newValues
	if runID != "" {
		entry.DetectionRunID = &runID
	}
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
