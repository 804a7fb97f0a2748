package api

import (
	"context"
	"net/http"
	"time"

	"github.com/samber/lo"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/services"
)

type Server struct {
	DueService    services.DueService
	ReviewService services.ReviewService
	ImportService services.ImportService
	StatsService  services.StatsService
	JobQueue      jobs.JobQueue

	// Ready backs /readyz. Nil means always ready.
	Ready func(context.Context) error

	// Location decides which calendar day "today" is. Defaults to UTC.
	Location *time.Location
	Now      func() time.Time
}

// cardView is the JSON shape of a card in listings.
type cardView struct {
	ID             string      `json:"id"`
	TopicID        string      `json:"topic_id"`
	Front          string      `json:"front"`
	Back           string      `json:"back"`
	EaseFactor     float64     `json:"ease_factor"`
	IntervalDays   int         `json:"interval_days"`
	Repetitions    int         `json:"repetitions"`
	NextReviewDate models.Date `json:"next_review_date"`
	DaysOverdue    int         `json:"days_overdue"`
}

func toCardViews(cards []models.ReviewCard, asOf models.Date) []cardView {
	return lo.Map(cards, func(c models.ReviewCard, _ int) cardView {
		return cardView{
			ID:             c.ID,
			TopicID:        c.TopicID,
			Front:          c.Front,
			Back:           c.Back,
			EaseFactor:     c.EaseFactor,
			IntervalDays:   c.IntervalDays,
			Repetitions:    c.Repetitions,
			NextReviewDate: c.NextReviewDate,
			DaysOverdue:    max(0, c.NextReviewDate.DaysUntil(asOf)),
		}
	})
}

func (s *Server) handleDue(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := userFromContext(r.Context())

	asOf, err := s.asOf(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("listing due cards: as_of=%s", asOf)

	cards, err := s.DueService.GetDueCards(r.Context(), userID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"as_of": asOf,
		"count": len(cards),
		"cards": toCardViews(cards, asOf),
	})
}

func (s *Server) handleDueCount(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())
	asOf, err := s.asOf(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	count, err := s.DueService.CountDue(r.Context(), userID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"as_of": asOf, "count": count})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())
	topicID := r.URL.Query().Get("topic_id")

	cards, err := s.DueService.ListCards(r.Context(), userID, topicID)
	if err != nil {
		handleError(w, r, err)
		return
	}

	today := s.today()
	writeJSON(w, r, http.StatusOK, map[string]any{
		"count": len(cards),
		"cards": toCardViews(cards, today),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID := userFromContext(r.Context())
	asOf, err := s.asOf(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.StatsService.GetDeckStats(r.Context(), userID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}
	topics, err := s.StatsService.GetTopicStats(r.Context(), userID, asOf)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"as_of":  asOf,
		"deck":   deck,
		"topics": topics,
	})
}
