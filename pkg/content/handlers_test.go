package content

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
	"github.com/knowbase/faqprov/pkg/audit"
)

func setupContentRouter(t *testing.T) (*Store, *audit.Store, chi.Router) {
	t.Helper()
	db := setupTestDB(t)
	require.NoError(t, db.AutoMigrate(&audit.Entry{}))
	store := NewStore(db)
	audits := audit.NewStore(db)

	r := chi.NewRouter()
	r.Use(actor.Middleware(actor.Config{Default: "test-user"}))
	r.Mount("/", Router(store, audits))
	return store, audits, r
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

func TestRegisterChecksumHandler(t *testing.T) {
	_, audits, router := setupContentRouter(t)
	checksum := testChecksum("a")

	rec := postJSON(t, router, "/checksums", map[string]any{
		"checksum": checksum,
		"fileName": "handbook.pdf",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, checksum, resp["content_checksum"])
	assert.Equal(t, "handbook.pdf", resp["file_name"])

	// Re-registering the same digest is a no-op success with the original
	// metadata intact.
	rec = postJSON(t, router, "/checksums", map[string]any{
		"checksum": checksum,
		"fileName": "renamed.pdf",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "handbook.pdf", resp["file_name"])

	entries, err := audits.ListByRecord(Record{}.TableName(), checksum, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionInsert, entries[0].Action)
	assert.Equal(t, "test-user", entries[0].ChangedBy)
}

func TestRegisterChecksumHandlerRejectsBadDigest(t *testing.T) {
	_, _, router := setupContentRouter(t)

	rec := postJSON(t, router, "/checksums", map[string]any{"checksum": "not-a-digest"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "content_checksum", resp["field"])
}

func TestGetChecksumHandlerNotFound(t *testing.T) {
	_, _, router := setupContentRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/checksums/"+testChecksum("f"), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListChecksumsHandler(t *testing.T) {
	store, _, router := setupContentRouter(t)

	for _, fill := range []string{"a", "b"} {
		record, err := NewRecord(testChecksum(fill))
		require.NoError(t, err)
		_, err = store.Create(record)
		require.NoError(t, err)
	}
	require.NoError(t, store.SetStatus(testChecksum("b"), StatusDeleted))

	req := httptest.NewRequest(http.MethodGet, "/checksums", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Checksums []map[string]any `json:"checksums"`
		Size      int              `json:"size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Size)
	assert.Equal(t, testChecksum("a"), resp.Checksums[0]["content_checksum"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/checksums?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetStatusHandlerAudits(t *testing.T) {
	store, audits, router := setupContentRouter(t)
	checksum := testChecksum("a")

	record, err := NewRecord(checksum)
	require.NoError(t, err)
	_, err = store.Create(record)
	require.NoError(t, err)

	rec := postJSON(t, router, "/checksums/"+checksum+":setStatus", map[string]any{"status": "deleted"})
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Get(checksum)
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, got.Status)

	entries, err := audits.ListByRecord(Record{}.TableName(), checksum, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, audit.ActionUpdate, entries[0].Action)
	assert.Equal(t, "active", entries[0].OldValues["status"])
	assert.Equal(t, "deleted", entries[0].NewValues["status"])
}
