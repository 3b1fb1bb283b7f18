package faq

import (
	"github.com/go-chi/chi/v5"

	"github.com/knowbase/faqprov/pkg/audit"
)

// Router creates a chi.Router for the FAQ component API.
func Router(store *Store, audits *audit.Store) chi.Router {
	r := chi.NewRouter()

	r.Post("/questions", CreateQuestionHandler(store, audits))
	r.Get("/questions", ListQuestionsHandler(store))
	r.Get("/questions/{questionId}", GetQuestionHandler(store))
	r.Post("/questions/{questionId}:setStatus", SetQuestionStatusHandler(store, audits))
	r.Post("/questions/{questionId}/answer", CreateAnswerHandler(store, audits))
	r.Get("/questions/{questionId}/answer", GetAnswerForQuestionHandler(store))
	r.Get("/answers/{answerId}", GetAnswerHandler(store))
	r.Post("/answers/{answerId}:setStatus", SetAnswerStatusHandler(store, audits))

	return r
}
