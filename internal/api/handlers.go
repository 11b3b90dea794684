package api

import (
	"bytes"
	"context"
	"html/template"
	"net/http"

	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/services"
)

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

type Server struct {
	Sessions   *services.SessionRegistry
	Scoreboard services.ScoreboardService
	DB         ReadinessChecker
	Templates  *template.Template
}

type pageData map[string]any

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if data == nil {
		data = pageData{}
	}

	log := logger.FromContext(r.Context())
	var buf bytes.Buffer
	if err := s.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Error("failed to render template %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
