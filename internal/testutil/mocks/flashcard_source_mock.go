package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyflash/internal/models"
)

// MockFlashcardSource is a mock implementation of repository.FlashcardSource
type MockFlashcardSource struct {
	mock.Mock
}

func (m *MockFlashcardSource) Flashcards(ctx context.Context, topicID string) ([]models.Flashcard, error) {
	args := m.Called(ctx, topicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flashcard), args.Error(1)
}

func (m *MockFlashcardSource) Topics(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlashcardSource) Replace(ctx context.Context, topicID string, flashcards []models.Flashcard) error {
	args := m.Called(ctx, topicID, flashcards)
	return args.Error(0)
}
