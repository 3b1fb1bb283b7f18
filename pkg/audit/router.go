package audit

import (
	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router for the read-only audit API. The trail has
// no write endpoints: entries are produced by the stores and the analyzer,
// never by API clients.
func Router(store *Store) chi.Router {
	r := chi.NewRouter()

	r.Get("/entries", ListEntriesHandler(store))
	r.Get("/entries/{auditId}", GetEntryHandler(store))
	r.Get("/records/{table}/{recordId}", ListByRecordHandler(store))
	r.Get("/runs/{runId}", ListByRunHandler(store))

	return r
}
