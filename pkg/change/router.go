package change

import (
	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/audit"
)

// Router creates a chi.Router for the change intake API.
func Router(store *Store, audits *audit.Store) chi.Router {
	r := chi.NewRouter()

	r.Post("/changes", RecordChangeHandler(store, audits))
	r.Get("/changes", ListChangesByRunHandler(store))
	r.Get("/changes/{changeId}", GetChangeHandler(store))
	r.Post("/changes/{changeId}/diffs", AttachDiffHandler(store, audits))
	r.Get("/changes/{changeId}/diffs", ListDiffsHandler(store))
	r.Get("/diffs/{diffId}", GetDiffHandler(store))

	return r
}
