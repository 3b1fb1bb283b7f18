package content

import (
	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/audit"
)

// Router creates a chi.Router for the content identity API.
func Router(store *Store, audits *audit.Store) chi.Router {
	r := chi.NewRouter()

	r.Post("/checksums", RegisterChecksumHandler(store, audits))
	r.Get("/checksums", ListChecksumsHandler(store))
	r.Get("/checksums/{checksum}", GetChecksumHandler(store))
	r.Post("/checksums/{checksum}:setStatus", SetStatusHandler(store, audits))

	return r
}
