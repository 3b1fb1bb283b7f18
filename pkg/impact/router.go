package impact

import (
	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router for the impact analysis API.
func Router(store *Store, analyzer *Analyzer) chi.Router {
	r := chi.NewRouter()

	r.Post("/changes/{changeId}:analyze", AnalyzeChangeHandler(analyzer))
	r.Get("/changes/{changeId}/records", ListByChangeHandler(store))
	r.Get("/records/{impactId}", GetRecordHandler(store))
	r.Get("/pair", GetByPairHandler(store))

	return r
}
