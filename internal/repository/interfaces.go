package repository

import (
	"context"

	"github.com/vytor/studyflash/internal/models"
)

// CardRepository handles review card data access
type CardRepository interface {
	Get(ctx context.Context, id string) (*models.ReviewCard, error)
	ByUser(ctx context.Context, userID string) ([]models.ReviewCard, error)
	ByTopic(ctx context.Context, userID, topicID string) ([]models.ReviewCard, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.ReviewCard, error)
	// Due returns the cards of userID scheduled on or before asOf, oldest
	// first, ties in insertion order.
	Due(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error)
	CountDue(ctx context.Context, userID string, asOf models.Date) (int, error)
	// InsertMany stores all cards or none.
	InsertMany(ctx context.Context, cards []models.ReviewCard) error
	Update(ctx context.Context, id string, patch models.CardPatch) error
	InsertReviewHistory(ctx context.Context, entry models.ReviewHistory) error
}

// FlashcardSource exposes the canonical flashcards of each topic
type FlashcardSource interface {
	Flashcards(ctx context.Context, topicID string) ([]models.Flashcard, error)
	Topics(ctx context.Context) ([]string, error)
	Replace(ctx context.Context, topicID string, flashcards []models.Flashcard) error
}

// StatsRepository handles statistics data access
type StatsRepository interface {
	DeckStats(ctx context.Context, userID string, asOf models.Date) (*models.DeckStat, error)
	TopicStats(ctx context.Context, userID string, asOf models.Date) ([]models.TopicStat, error)
}
