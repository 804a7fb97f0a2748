package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

type flashcardSource struct {
	db *sql.DB
}

// NewFlashcardSource creates a FlashcardSource backed by the topic_flashcards table
func NewFlashcardSource(db *sql.DB) repository.FlashcardSource {
	return &flashcardSource{db: db}
}

func (r *flashcardSource) Flashcards(ctx context.Context, topicID string) ([]models.Flashcard, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_source")
	log.Debug("fetching flashcards: topic_id=%s", topicID)

	stmt, args, err := sqlBuilder.Select("topic_id", "front", "back").
		From("topic_flashcards").
		Where(squirrel.Eq{"topic_id": topicID}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query flashcards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Flashcard
	for rows.Next() {
		var f models.Flashcard
		if err := rows.Scan(&f.TopicID, &f.Front, &f.Back); err != nil {
			log.Error("failed to scan flashcard row: %v", err)
			return nil, err
		}
		cards = append(cards, f)
	}
	log.Debug("found %d flashcards", len(cards))
	return cards, rows.Err()
}

func (r *flashcardSource) Topics(ctx context.Context) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_source")
	log.Debug("listing topics")

	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT topic_id FROM topic_flashcards ORDER BY topic_id`)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		topics = append(topics, id)
	}
	return topics, rows.Err()
}

// Replace swaps the flashcards of topicID for the given set atomically.
func (r *flashcardSource) Replace(ctx context.Context, topicID string, flashcards []models.Flashcard) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_source")
	log.Debug("replacing flashcards: topic_id=%s, count=%d", topicID, len(flashcards))

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM topic_flashcards WHERE topic_id = ?`, topicID); err != nil {
			log.Error("failed to clear topic: %v", err)
			return err
		}
		if len(flashcards) == 0 {
			return nil
		}

		insert := sqlBuilder.Insert("topic_flashcards").Columns("topic_id", "position", "front", "back")
		for i, f := range flashcards {
			insert = insert.Values(topicID, i, f.Front, f.Back)
		}
		stmt, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			log.Error("failed to insert flashcards: %v", err)
			return err
		}
		return nil
	})
}
