package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

type startSessionRequest struct {
	AsOf string `json:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// rateRequest accepts quality as a number or as a name ("again", "good", ...).
type rateRequest struct {
	CardID  string          `json:"card_id" validate:"required"`
	Quality json.RawMessage `json:"quality" validate:"required"`
}

func (req rateRequest) quality() (models.Quality, error) {
	q, err := models.ParseQuality(strings.Trim(string(req.Quality), `"`))
	if err != nil {
		return 0, errors.NewValidationError("quality", "must be 0, 2, 3, 5 or again, hard, good, easy")
	}
	return q, nil
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := userFromContext(r.Context())

	var req startSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	asOf := s.today()
	if req.AsOf != "" {
		asOf = models.MustParseDate(req.AsOf)
	}
	log.Debug("starting session: as_of=%s", asOf)

	view, err := s.ReviewService.StartSession(r.Context(), userID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	view, err := s.ReviewService.Session(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleRate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := userFromContext(r.Context())
	sessionID := chi.URLParam(r, "id")

	var req rateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	quality, err := req.quality()
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("rating card: session_id=%s, card_id=%s, quality=%d", sessionID, req.CardID, quality)

	res, err := s.ReviewService.Rate(r.Context(), sessionID, userID, req.CardID, quality)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	sum, err := s.ReviewService.Abandon(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"summary": sum})
}
