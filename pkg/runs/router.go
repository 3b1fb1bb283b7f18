package runs

import (
	"github.com/go-chi/chi/v5"
)

// Router creates a chi.Router for the detection run API.
func Router(store *RunStore) chi.Router {
	r := chi.NewRouter()

	r.Post("/detections", CreateRunHandler(store))
	r.Get("/detections", ListRunsHandler(store))
	r.Get("/detections/{runId}", GetRunHandler(store))
	r.Post("/detections/{runId}:cancel", CancelRunHandler(store))

	return r
}
