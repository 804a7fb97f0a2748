package api

import (
	"encoding/json"
	"net/http"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
)

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		// Wrap unknown errors as internal errors
		appErr = errors.NewInternalError(err)
	}

	// Nothing due is an answer, not a failure.
	if appErr.Code == errors.ErrCodeEmptyQueue {
		log.Debug("empty queue: %v", appErr)
		writeJSON(w, r, http.StatusOK, map[string]any{"caught_up": true})
		return
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	writeJSONError(w, appErr)
}

func writeJSONError(w http.ResponseWriter, appErr *errors.AppError) {
	status := appErr.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := map[string]any{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	// identifiers a client needs to retry; causes stay in the logs
	if status < 500 || appErr.Code == errors.ErrCodeStoreUnavailable || appErr.Code == errors.ErrCodeQueueFull {
		if len(appErr.Context) > 0 {
			body["context"] = appErr.Context
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": body})
}
