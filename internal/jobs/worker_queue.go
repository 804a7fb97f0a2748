package jobs

import (
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/worker"
)

// WorkerQueue implements JobQueue using worker pools
type WorkerQueue struct {
	importPool *worker.Pool
	importer   worker.TopicImporter
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(importPool *worker.Pool, importer worker.TopicImporter) JobQueue {
	return &WorkerQueue{
		importPool: importPool,
		importer:   importer,
	}
}

func (q *WorkerQueue) EnqueueImport(userID, topicID string, asOf models.Date) error {
	return q.importPool.Submit(&worker.ImportTopicJob{
		Importer: q.importer,
		UserID:   userID,
		TopicID:  topicID,
		AsOf:     asOf,
	})
}
