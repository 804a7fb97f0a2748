package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyflash/internal/models"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueImport(userID, topicID string, asOf models.Date) error {
	args := m.Called(userID, topicID, asOf)
	return args.Error(0)
}
