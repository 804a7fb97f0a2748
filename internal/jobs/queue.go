package jobs

import "github.com/vytor/studyflash/internal/models"

// JobQueue provides an abstraction for enqueueing background jobs
type JobQueue interface {
	EnqueueImport(userID, topicID string, asOf models.Date) error
}
