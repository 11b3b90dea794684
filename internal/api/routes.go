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

	r.Get("/", s.handleHome)
	r.Get("/scoreboard", s.handleScoreboardPage)
	r.Route("/quiz/{id}", func(r chi.Router) {
		r.Get("/", s.handleQuiz)
		r.Post("/name", s.handleWidgetName)
		r.Post("/select", s.handleWidgetSelect)
		r.Post("/advance", s.handleWidgetAdvance)
		r.Post("/retry", s.handleWidgetRetry)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleCreateSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Post("/sessions/{id}/name", s.handleSubmitName)
		r.Post("/sessions/{id}/select", s.handleSelectAnswer)
		r.Post("/sessions/{id}/advance", s.handleAdvance)
		r.Post("/sessions/{id}/retry", s.handleRetry)
		r.Get("/sessions/{id}/results", s.handleResults)
		r.Get("/scoreboard", s.handleScoreboard)
	})

	return r
}
