package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/services"
)

// handleHome starts a new quiz and sends the browser to it.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Create(r.Context(), models.SourceWeb)
	if err != nil {
		handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/quiz/"+view.ID, http.StatusSeeOther)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.renderQuiz(w, r, http.StatusOK, view, "")
}

func (s *Server) renderQuiz(w http.ResponseWriter, r *http.Request, status int, view services.SessionView, notice string) {
	// Only the loading view polls; reloading any other view would wipe the
	// player's input.
	refresh := view.Fetching && view.Phase == quiz.PhaseLoading.String()
	title := "Quiz"
	if view.Name != "" {
		title = view.Name
	}
	s.render(w, r, status, "quiz.html", pageData{
		"title":   title,
		"view":    view,
		"notice":  notice,
		"refresh": refresh,
	})
}

func (s *Server) handleWidgetName(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	s.widgetAction(w, r, func(ctx context.Context, id string) (services.SessionView, error) {
		return s.Sessions.SubmitName(ctx, id, name)
	})
}

func (s *Server) handleWidgetSelect(w http.ResponseWriter, r *http.Request) {
	choice := r.FormValue("choice")
	s.widgetAction(w, r, func(ctx context.Context, id string) (services.SessionView, error) {
		return s.Sessions.Select(ctx, id, choice)
	})
}

func (s *Server) handleWidgetAdvance(w http.ResponseWriter, r *http.Request) {
	s.widgetAction(w, r, s.Sessions.Advance)
}

func (s *Server) handleWidgetRetry(w http.ResponseWriter, r *http.Request) {
	s.widgetAction(w, r, s.Sessions.Retry)
}

// widgetAction runs a form post and redirects back to the quiz page. Rule
// violations re-render the page with a notice and leave the session as it
// was.
func (s *Server) widgetAction(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (services.SessionView, error)) {
	id := chi.URLParam(r, "id")
	view, err := fn(r.Context(), id)
	if err == nil {
		http.Redirect(w, r, "/quiz/"+id, http.StatusSeeOther)
		return
	}

	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr.Code == errors.ErrCodeNotFound || appErr.Code == errors.ErrCodeInternal {
		handleError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).WithField("session_id", id).Warn("quiz action rejected: %v", appErr)
	s.renderQuiz(w, r, appErr.Status, view, appErr.Message)
}

func (s *Server) handleScoreboardPage(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Scoreboard.Top(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "scoreboard.html", pageData{
		"title":   "Scoreboard",
		"entries": entries,
	})
}
