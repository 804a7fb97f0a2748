package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

var cardColumns = []string{
	"id", "user_id", "topic_id", "front", "back", "ease_factor", "interval_days",
	"repetitions", "next_review_date", "last_reviewed_at", "created_at",
}

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func scanCard(row rowScanner) (models.ReviewCard, error) {
	var c models.ReviewCard
	var lastReviewed sql.NullTime
	var createdAt sql.NullTime
	err := row.Scan(&c.ID, &c.UserID, &c.TopicID, &c.Front, &c.Back, &c.EaseFactor, &c.IntervalDays,
		&c.Repetitions, &c.NextReviewDate, &lastReviewed, &createdAt)
	if err != nil {
		return c, err
	}
	if lastReviewed.Valid {
		t := lastReviewed.Time
		c.LastReviewedAt = &t
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	return c, nil
}

func (r *cardRepository) Get(ctx context.Context, id string) (*models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%s", id)

	query, args, err := sqlBuilder.Select(cardColumns...).From("cards").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	c, err := scanCard(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found: id=%s", id)
		} else {
			log.Error("failed to get card: %v", err)
		}
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) ByUser(ctx context.Context, userID string) ([]models.ReviewCard, error) {
	return r.List(ctx, models.CardFilter{UserID: userID})
}

func (r *cardRepository) ByTopic(ctx context.Context, userID, topicID string) ([]models.ReviewCard, error) {
	return r.List(ctx, models.CardFilter{UserID: userID, TopicID: topicID})
}

func (r *cardRepository) Due(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error) {
	return r.List(ctx, models.CardFilter{UserID: userID, DueBy: asOf})
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards with filter: user_id=%s, topic_id=%s, due_by=%s, limit=%d, offset=%d",
		filter.UserID, filter.TopicID, filter.DueBy, filter.Limit, filter.Offset)

	query := sqlBuilder.Select(cardColumns...).From("cards")
	query = applyCardFilter(query, filter)

	// rowid keeps ties in insertion order
	query = query.OrderBy("next_review_date ASC", "rowid ASC")

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.ReviewCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) CountDue(ctx context.Context, userID string, asOf models.Date) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("counting due cards: user_id=%s, as_of=%s", userID, asOf)

	query := applyCardFilter(sqlBuilder.Select("COUNT(*)").From("cards"), models.CardFilter{UserID: userID, DueBy: asOf})
	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count due cards: %v", err)
		return 0, err
	}
	return count, nil
}

func applyCardFilter(query squirrel.SelectBuilder, filter models.CardFilter) squirrel.SelectBuilder {
	query = query.Where(squirrel.Eq{"user_id": filter.UserID})
	if filter.TopicID != "" {
		query = query.Where(squirrel.Eq{"topic_id": filter.TopicID})
	}
	if !filter.DueBy.IsZero() {
		query = query.Where(squirrel.LtOrEq{"next_review_date": filter.DueBy.String()})
	}
	return query
}

func (r *cardRepository) InsertMany(ctx context.Context, cards []models.ReviewCard) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("batch inserting %d cards", len(cards))

	if len(cards) == 0 {
		return nil
	}

	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO cards (id, user_id, topic_id, front, back, ease_factor, interval_days, repetitions, next_review_date, last_reviewed_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for i := range cards {
			c := &cards[i]
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			var lastReviewed any
			if c.LastReviewedAt != nil {
				lastReviewed = *c.LastReviewedAt
			}
			if _, err := stmt.ExecContext(ctx, c.ID, c.UserID, c.TopicID, c.Front, c.Back, c.EaseFactor,
				c.IntervalDays, c.Repetitions, c.NextReviewDate, lastReviewed); err != nil {
				log.Error("failed to insert card front=%q: %v", c.Front, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Debug("batch insert completed, %d cards inserted", len(cards))
	return nil
}

func (r *cardRepository) Update(ctx context.Context, id string, patch models.CardPatch) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("updating card: id=%s, interval=%d, ease=%.2f, next=%s", id, patch.IntervalDays, patch.EaseFactor, patch.NextReviewDate)

	var lastReviewed any
	if patch.LastReviewedAt != nil {
		lastReviewed = patch.LastReviewedAt.UTC()
	}

	stmt, args, err := sqlBuilder.Update("cards").
		Set("ease_factor", patch.EaseFactor).
		Set("interval_days", patch.IntervalDays).
		Set("repetitions", patch.Repetitions).
		Set("next_review_date", patch.NextReviewDate.String()).
		Set("last_reviewed_at", lastReviewed).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to update card: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		log.Error("failed to read rows affected: %v", err)
		return err
	}
	if n == 0 {
		log.Debug("card not found: id=%s", id)
		return sql.ErrNoRows
	}
	return nil
}

func (r *cardRepository) InsertReviewHistory(ctx context.Context, entry models.ReviewHistory) error {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting review history: card_id=%s, quality=%d", entry.CardID, entry.Quality)

	reviewedAt := entry.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO review_history (card_id, user_id, quality, ease_factor, interval_days, review_date, reviewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, entry.CardID, entry.UserID, int(entry.Quality), entry.EaseFactor, entry.IntervalDays, entry.ReviewDate, reviewedAt.UTC())
	if err != nil {
		log.Error("failed to insert review history: %v", err)
	}
	return err
}
