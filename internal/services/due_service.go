package services

import (
	"context"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// DueService selects the cards a learner should review
type DueService interface {
	GetDueCards(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error)
	CountDue(ctx context.Context, userID string, asOf models.Date) (int, error)
	ListCards(ctx context.Context, userID, topicID string) ([]models.ReviewCard, error)
}

type dueService struct {
	cardRepo repository.CardRepository
}

// NewDueService creates a new DueService
func NewDueService(cardRepo repository.CardRepository) DueService {
	return &dueService{cardRepo: cardRepo}
}

// GetDueCards returns every card of userID due on or before asOf, most
// overdue first. Calling it has no side effects.
func (s *dueService) GetDueCards(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting due cards: user_id=%s, as_of=%s", userID, asOf)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}

	cards, err := s.cardRepo.Due(ctx, userID, asOf)
	if err != nil {
		log.Error("failed to get due cards: %v", err)
		return nil, errors.NewStoreUnavailableError("due", err).With("user_id", userID)
	}
	if cards == nil {
		cards = []models.ReviewCard{}
	}
	return cards, nil
}

func (s *dueService) CountDue(ctx context.Context, userID string, asOf models.Date) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("counting due cards: user_id=%s, as_of=%s", userID, asOf)

	count, err := s.cardRepo.CountDue(ctx, userID, asOf)
	if err != nil {
		log.Error("failed to count due cards: %v", err)
		return 0, errors.NewStoreUnavailableError("count_due", err).With("user_id", userID)
	}
	return count, nil
}

func (s *dueService) ListCards(ctx context.Context, userID, topicID string) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing cards: user_id=%s, topic_id=%s", userID, topicID)

	var (
		cards []models.ReviewCard
		err   error
	)
	if topicID == "" {
		cards, err = s.cardRepo.ByUser(ctx, userID)
	} else {
		cards, err = s.cardRepo.ByTopic(ctx, userID, topicID)
	}
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewStoreUnavailableError("list", err).With("user_id", userID)
	}
	if cards == nil {
		cards = []models.ReviewCard{}
	}
	return cards, nil
}
