package worker

import (
	"context"

	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

// TopicImporter is the part of the import service a job needs.
// Declared here so this package does not import services.
type TopicImporter interface {
	ImportTopic(ctx context.Context, userID, topicID string, asOf models.Date) (int, error)
}

// ImportTopicJob reconciles one topic's flashcards into a learner's cards.
type ImportTopicJob struct {
	Importer TopicImporter
	UserID   string
	TopicID  string
	AsOf     models.Date
}

func (j *ImportTopicJob) Name() string { return "import_topic" }

func (j *ImportTopicJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":  j.UserID,
		"topic_id": j.TopicID,
	})

	created, err := j.Importer.ImportTopic(ctx, j.UserID, j.TopicID, j.AsOf)
	if err != nil {
		return err
	}
	log.Info("background import created %d cards", created)
	return nil
}
