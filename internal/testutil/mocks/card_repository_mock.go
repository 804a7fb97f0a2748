package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyflash/internal/models"
)

// MockCardRepository is a mock implementation of repository.CardRepository
type MockCardRepository struct {
	mock.Mock
}

func (m *MockCardRepository) Get(ctx context.Context, id string) (*models.ReviewCard, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReviewCard), args.Error(1)
}

func (m *MockCardRepository) ByUser(ctx context.Context, userID string) ([]models.ReviewCard, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewCard), args.Error(1)
}

func (m *MockCardRepository) ByTopic(ctx context.Context, userID, topicID string) ([]models.ReviewCard, error) {
	args := m.Called(ctx, userID, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewCard), args.Error(1)
}

func (m *MockCardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.ReviewCard, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewCard), args.Error(1)
}

func (m *MockCardRepository) Due(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error) {
	args := m.Called(ctx, userID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewCard), args.Error(1)
}

func (m *MockCardRepository) CountDue(ctx context.Context, userID string, asOf models.Date) (int, error) {
	args := m.Called(ctx, userID, asOf)
	return args.Int(0), args.Error(1)
}

func (m *MockCardRepository) InsertMany(ctx context.Context, cards []models.ReviewCard) error {
	args := m.Called(ctx, cards)
	return args.Error(0)
}

func (m *MockCardRepository) Update(ctx context.Context, id string, patch models.CardPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockCardRepository) InsertReviewHistory(ctx context.Context, entry models.ReviewHistory) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
