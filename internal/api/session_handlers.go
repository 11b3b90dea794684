package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/services"
)

type nameRequest struct {
	Name string `json:"name"`
}

type selectRequest struct {
	Choice string `json:"choice"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(v); err != nil {
		return errors.NewBadRequestError("invalid JSON body: " + err.Error())
	}
	return nil
}

func (s *Server) respondView(w http.ResponseWriter, r *http.Request, status int, view services.SessionView, err error) {
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, status, view)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Create(r.Context(), models.SourceAPI)
	if err == nil {
		w.Header().Set("Location", "/api/sessions/"+view.ID)
	}
	s.respondView(w, r, http.StatusCreated, view, err)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	s.respondView(w, r, http.StatusOK, view, err)
}

func (s *Server) handleSubmitName(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.Sessions.SubmitName(r.Context(), chi.URLParam(r, "id"), req.Name)
	s.respondView(w, r, http.StatusOK, view, err)
}

func (s *Server) handleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeBody(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.Sessions.Select(r.Context(), chi.URLParam(r, "id"), req.Choice)
	s.respondView(w, r, http.StatusOK, view, err)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Advance(r.Context(), chi.URLParam(r, "id"))
	s.respondView(w, r, http.StatusOK, view, err)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	view, err := s.Sessions.Retry(r.Context(), chi.URLParam(r, "id"))
	s.respondView(w, r, http.StatusAccepted, view, err)
}

// handleResults serves a live session's results, falling back to the stored
// copy once the session has been pruned.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	results, err := s.Sessions.Results(r.Context(), id)
	if err == nil {
		writeJSON(w, r, http.StatusOK, results)
		return
	}

	var appErr *errors.AppError
	if s.Scoreboard != nil && stderrors.As(err, &appErr) && appErr.Code == errors.ErrCodeNotFound {
		stored, storedErr := s.Scoreboard.ForSession(r.Context(), id)
		if storedErr == nil {
			writeJSON(w, r, http.StatusOK, stored.Results())
			return
		}
		err = storedErr
	}
	handleError(w, r, err)
}

func (s *Server) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Scoreboard.Top(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"entries": entries})
}
