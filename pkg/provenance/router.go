package provenance

import (
	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/audit"
)

// Router creates a chi.Router for the provenance link API.
func Router(store *Store, audits *audit.Store) chi.Router {
	r := chi.NewRouter()

	r.Post("/question-sources", CreateQuestionSourceHandler(store, audits))
	r.Get("/question-sources", ListQuestionSourcesHandler(store))
	r.Get("/question-sources/{sourceId}", GetQuestionSourceHandler(store))
	r.Post("/question-sources/{sourceId}:close", CloseQuestionSourceHandler(store, audits))

	r.Post("/answer-sources", CreateAnswerSourceHandler(store, audits))
	r.Get("/answer-sources", ListAnswerSourcesHandler(store))
	r.Get("/answer-sources/{sourceId}", GetAnswerSourceHandler(store))
	r.Post("/answer-sources/{sourceId}:close", CloseAnswerSourceHandler(store, audits))

	return r
}
