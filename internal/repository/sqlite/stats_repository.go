package sqlite

import (
	"context"
	"database/sql"
	"math"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// Thresholds for the mastered / struggling buckets.
const (
	masteredEase      = 2.5
	masteredInterval  = 21
	strugglingEase    = 2.0
	dueSoonWindowDays = 7
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) DeckStats(ctx context.Context, userID string, asOf models.Date) (*models.DeckStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching deck stats: user_id=%s, as_of=%s", userID, asOf)

	today := asOf.String()
	soon := asOf.AddDays(dueSoonWindowDays).String()

	var stat models.DeckStat
	err := r.db.QueryRowContext(ctx, `
SELECT
    COUNT(*) AS total_cards,
    COUNT(CASE WHEN last_reviewed_at IS NULL THEN 1 END) AS new_cards,
    COUNT(CASE WHEN ease_factor >= ? AND interval_days > ? THEN 1 END) AS cards_mastered,
    COUNT(CASE WHEN ease_factor < ? AND last_reviewed_at IS NOT NULL THEN 1 END) AS cards_struggling,
    COUNT(CASE WHEN next_review_date <= ? THEN 1 END) AS cards_due,
    COUNT(CASE WHEN next_review_date > ? AND next_review_date <= ? THEN 1 END) AS cards_due_soon,
    COALESCE(AVG(ease_factor), 0) AS avg_ease_factor,
    COALESCE(AVG(interval_days), 0) AS avg_interval_days
FROM cards
WHERE user_id = ?
`, masteredEase, masteredInterval, strugglingEase, today, today, soon, userID).Scan(
		&stat.TotalCards,
		&stat.NewCards,
		&stat.CardsMastered,
		&stat.CardsStruggling,
		&stat.CardsDue,
		&stat.CardsDueSoon,
		&stat.AvgEaseFactor,
		&stat.AvgIntervalDays,
	)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, err
	}

	var passed int
	err = r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COALESCE(SUM(CASE WHEN quality >= 3 THEN 1 ELSE 0 END), 0)
FROM review_history
WHERE user_id = ?
`, userID).Scan(&stat.TotalReviews, &passed)
	if err != nil {
		log.Error("failed to get review totals: %v", err)
		return nil, err
	}
	if stat.TotalReviews > 0 {
		stat.Accuracy = math.Round(1000*float64(passed)/float64(stat.TotalReviews)) / 10
	}
	return &stat, nil
}

func (r *statsRepository) TopicStats(ctx context.Context, userID string, asOf models.Date) ([]models.TopicStat, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("fetching topic stats: user_id=%s", userID)

	stmt, args, err := sqlBuilder.Select("topic_id", "COUNT(*) AS total_cards").
		Column(squirrel.Expr("COUNT(CASE WHEN next_review_date <= ? THEN 1 END) AS cards_due", asOf.String())).
		Column("COALESCE(AVG(ease_factor), 0) AS avg_ease_factor").
		From("cards").
		Where(squirrel.Eq{"user_id": userID}).
		GroupBy("topic_id").
		OrderBy("topic_id").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query topic stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.TopicStat
	for rows.Next() {
		var s models.TopicStat
		if err := rows.Scan(&s.TopicID, &s.TotalCards, &s.CardsDue, &s.AvgEaseFactor); err != nil {
			log.Error("failed to scan topic stat row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
