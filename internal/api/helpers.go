package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// decodeJSON reads the body into v and runs its validate tags. An empty body
// is allowed when the struct has no required fields.
func decodeJSON(r *http.Request, v any) error {
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			return errors.NewBadRequestError("invalid JSON body: " + err.Error())
		}
	}

	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return errors.NewValidationError(fe.Field(), "failed "+fe.Tag())
		}
		return errors.NewBadRequestError(err.Error())
	}
	return nil
}

// today is the learner's calendar date in the server's configured zone.
func (s *Server) today() models.Date {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	return models.DateOf(now().In(loc))
}

// asOf reads the as_of query parameter, defaulting to today.
func (s *Server) asOf(r *http.Request) (models.Date, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return s.today(), nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, errors.NewValidationError("as_of", "must be YYYY-MM-DD")
	}
	return d, nil
}
