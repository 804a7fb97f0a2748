package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(userMiddleware)

		r.Get("/due", s.handleDue)
		r.Get("/due/count", s.handleDueCount)
		r.Get("/cards", s.handleCards)
		r.Get("/stats", s.handleStats)

		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/rate", s.handleRate)
		r.Delete("/sessions/{id}", s.handleAbandonSession)

		r.Post("/topics/{id}/import", s.handleImportTopic)
		r.Post("/import", s.handleImportAll)
	})
	return r
}
