package api

import (
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
)

func (s *Server) handleImportTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := userFromContext(r.Context())
	topicID := chi.URLParam(r, "id")

	created, err := s.ImportService.ImportTopic(r.Context(), userID, topicID, s.today())
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("topic %s imported: created=%d", topicID, created)
	writeJSON(w, r, http.StatusOK, map[string]any{"created": created})
}

func (s *Server) handleImportAll(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())

	if s.JobQueue == nil {
		handleError(w, r, errors.NewInternalError(stderrors.New("import queue not configured")))
		return
	}

	queued, err := s.ImportService.ImportAll(r.Context(), s.JobQueue, userID, s.today())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusAccepted, map[string]any{"queued": queued})
}
