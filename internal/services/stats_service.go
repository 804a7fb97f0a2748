package services

import (
	"context"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	GetDeckStats(ctx context.Context, userID string, asOf models.Date) (*models.DeckStat, error)
	GetTopicStats(ctx context.Context, userID string, asOf models.Date) ([]models.TopicStat, error)
}

type statsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetDeckStats(ctx context.Context, userID string, asOf models.Date) (*models.DeckStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting deck stats: user_id=%s", userID)

	stat, err := s.statsRepo.DeckStats(ctx, userID, asOf)
	if err != nil {
		log.Error("failed to get deck stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stat, nil
}

func (s *statsService) GetTopicStats(ctx context.Context, userID string, asOf models.Date) ([]models.TopicStat, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting topic stats: user_id=%s", userID)

	stats, err := s.statsRepo.TopicStats(ctx, userID, asOf)
	if err != nil {
		log.Error("failed to get topic stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if stats == nil {
		stats = []models.TopicStat{}
	}
	return stats, nil
}
