package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/jobs"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// ImportService turns a topic's flashcards into review cards for a learner
type ImportService interface {
	ImportCards(ctx context.Context, userID, topicID string, flashcards []models.Flashcard, asOf models.Date) (int, error)
	ImportTopic(ctx context.Context, userID, topicID string, asOf models.Date) (int, error)
	ImportAll(ctx context.Context, queue jobs.JobQueue, userID string, asOf models.Date) (int, error)
}

type importService struct {
	cardRepo repository.CardRepository
	source   repository.FlashcardSource
}

// NewImportService creates a new ImportService
func NewImportService(cardRepo repository.CardRepository, source repository.FlashcardSource) ImportService {
	return &importService{cardRepo: cardRepo, source: source}
}

// ImportCards creates one card per front text that userID does not already
// have in topicID. Within flashcards the first occurrence of a front wins.
// Running it twice with the same input creates nothing the second time.
func (s *importService) ImportCards(ctx context.Context, userID, topicID string, flashcards []models.Flashcard, asOf models.Date) (int, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":  userID,
		"topic_id": topicID,
	})
	log.Debug("reconciling %d flashcards", len(flashcards))

	if userID == "" {
		return 0, errors.NewValidationError("user_id", "is required")
	}
	if topicID == "" {
		return 0, errors.NewValidationError("topic_id", "is required")
	}

	existing, err := s.cardRepo.ByTopic(ctx, userID, topicID)
	if err != nil {
		log.Error("failed to load existing cards: %v", err)
		return 0, errors.NewStoreUnavailableError("by_topic", err).With("user_id", userID).With("topic_id", topicID)
	}

	known := lo.Associate(existing, func(c models.ReviewCard) (string, struct{}) {
		return c.Front, struct{}{}
	})
	fresh := lo.Filter(flashcards, func(f models.Flashcard, _ int) bool {
		_, ok := known[f.Front]
		return !ok && f.Front != ""
	})
	fresh = lo.UniqBy(fresh, func(f models.Flashcard) string { return f.Front })

	if len(fresh) == 0 {
		log.Debug("nothing new to import")
		return 0, nil
	}

	cards := lo.Map(fresh, func(f models.Flashcard, _ int) models.ReviewCard {
		return models.ReviewCard{
			ID:             uuid.NewString(),
			UserID:         userID,
			TopicID:        topicID,
			Front:          f.Front,
			Back:           f.Back,
			EaseFactor:     models.DefaultEaseFactor,
			IntervalDays:   0,
			Repetitions:    0,
			NextReviewDate: asOf,
		}
	})

	if err := s.cardRepo.InsertMany(ctx, cards); err != nil {
		log.Error("failed to insert %d cards: %v", len(cards), err)
		return 0, errors.NewStoreUnavailableError("insert_many", err).With("user_id", userID).With("topic_id", topicID)
	}

	log.Info("imported %d new cards (%d skipped)", len(cards), len(flashcards)-len(cards))
	return len(cards), nil
}

func (s *importService) ImportTopic(ctx context.Context, userID, topicID string, asOf models.Date) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("importing topic: user_id=%s, topic_id=%s", userID, topicID)

	flashcards, err := s.source.Flashcards(ctx, topicID)
	if err != nil {
		log.Error("failed to read flashcard source: %v", err)
		return 0, errors.NewStoreUnavailableError("flashcards", err).With("topic_id", topicID)
	}
	return s.ImportCards(ctx, userID, topicID, flashcards, asOf)
}

// ImportAll queues one import job per known topic and returns how many were
// queued. It stops at the first job the queue refuses.
func (s *importService) ImportAll(ctx context.Context, queue jobs.JobQueue, userID string, asOf models.Date) (int, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Info("queueing import of every topic")

	if userID == "" {
		return 0, errors.NewValidationError("user_id", "is required")
	}

	topics, err := s.source.Topics(ctx)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return 0, errors.NewStoreUnavailableError("topics", err)
	}

	queued := 0
	for _, topicID := range topics {
		if err := queue.EnqueueImport(userID, topicID, asOf); err != nil {
			log.Warn("queued %d of %d topics: %v", queued, len(topics), err)
			if _, ok := errors.As(err); ok {
				return queued, err
			}
			return queued, errors.NewInternalError(err)
		}
		queued++
	}
	log.Debug("queued %d topic imports", queued)
	return queued, nil
}
