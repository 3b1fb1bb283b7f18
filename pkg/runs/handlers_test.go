package runs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbase/faqprov/pkg/actor"
)

func setupRunRouter(t *testing.T) (*RunStore, chi.Router) {
	t.Helper()
	store := NewRunStore(setupTestDB(t))
	r := chi.NewRouter()
	r.Use(actor.Middleware(actor.Config{Default: "test-user"}))
	r.Mount("/", Router(store))
	return store, r
}

func postJSON(t *testing.T, router chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateRunHandler(t *testing.T) {
	_, router := setupRunRouter(t)

	rec := postJSON(t, router, "/detections", map[string]any{
		"sourceName": "confluence-hr",
		"domain":     "hr",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["id"])
	assert.Equal(t, "confluence-hr", resp["sourceName"])
	assert.Equal(t, "hr", resp["domain"])
	assert.Equal(t, "queued", resp["state"])
	assert.Equal(t, "test-user", resp["requestedBy"])
}

func TestCreateRunHandlerRequiresSource(t *testing.T) {
	_, router := setupRunRouter(t)

	rec := postJSON(t, router, "/detections", map[string]any{"domain": "hr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRunHandlerIdempotency(t *testing.T) {
	_, router := setupRunRouter(t)

	body := map[string]any{"sourceName": "confluence-hr", "idempotencyKey": "key-1"}
	first := postJSON(t, router, "/detections", body)
	require.Equal(t, http.StatusCreated, first.Code)
	second := postJSON(t, router, "/detections", body)
	require.Equal(t, http.StatusOK, second.Code)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.Equal(t, a["id"], b["id"])
}

func TestGetRunHandler(t *testing.T) {
	store, router := setupRunRouter(t)

	run, err := store.Enqueue(newTestRun("confluence-hr", ""))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/detections/"+run.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, run.ID, resp["id"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/detections/no-such-run", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRunsHandlerFilters(t *testing.T) {
	store, router := setupRunRouter(t)

	_, err := store.Enqueue(newTestRun("confluence-hr", ""))
	require.NoError(t, err)
	_, err = store.Enqueue(newTestRun("sharepoint-it", ""))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/detections?sourceName=confluence-hr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Runs          []runResponse `json:"runs"`
		NextPageToken string        `json:"nextPageToken"`
		TotalSize     int           `json:"totalSize"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Runs, 1)
	assert.Equal(t, "confluence-hr", resp.Runs[0].SourceName)
	assert.Equal(t, 1, resp.TotalSize)
	assert.Empty(t, resp.NextPageToken)
}

func TestCancelRunHandler(t *testing.T) {
	store, router := setupRunRouter(t)

	run, err := store.Enqueue(newTestRun("confluence-hr", ""))
	require.NoError(t, err)

	rec := postJSON(t, router, "/detections/"+run.ID+":cancel", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Get(run.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCanceled, got.State)

	// Canceling a terminal run is rejected.
	rec = postJSON(t, router, "/detections/"+run.ID+":cancel", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
