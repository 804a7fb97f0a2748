package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/testutil"
)

type StatsRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	cards repository.CardRepository
	repo  repository.StatsRepository
}

func (s *StatsRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cards = sqlite.NewCardRepository(s.db)
	s.repo = sqlite.NewStatsRepository(s.db)
}

func (s *StatsRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *StatsRepositorySuite) TestDeckStats() {
	ctx := context.Background()
	mastered := newCard("m", "u1", "t1", "m", "2024-03-01")
	mastered.EaseFactor = 2.7
	mastered.IntervalDays = 40
	mastered.Repetitions = 5

	s.Require().NoError(s.cards.InsertMany(ctx, []models.ReviewCard{
		newCard("a", "u1", "t1", "a", "2024-01-01"),
		newCard("b", "u1", "t2", "b", "2024-01-05"),
		mastered,
		newCard("x", "u2", "t1", "x", "2024-01-01"),
	}))
	for _, q := range []models.Quality{models.QualityGood, models.QualityAgain, models.QualityEasy, models.QualityEasy} {
		s.Require().NoError(s.cards.InsertReviewHistory(ctx, models.ReviewHistory{
			CardID: "a", UserID: "u1", Quality: q, EaseFactor: 2.5, IntervalDays: 1,
			ReviewDate: models.MustParseDate("2024-01-01"),
		}))
	}

	stat, err := s.repo.DeckStats(ctx, "u1", models.MustParseDate("2024-01-01"))
	s.Require().NoError(err)
	s.Assert().Equal(3, stat.TotalCards)
	s.Assert().Equal(3, stat.NewCards)
	s.Assert().Equal(1, stat.CardsMastered)
	s.Assert().Equal(1, stat.CardsDue)
	s.Assert().Equal(1, stat.CardsDueSoon)
	s.Assert().Equal(4, stat.TotalReviews)
	s.Assert().Equal(75.0, stat.Accuracy)
	s.Assert().InDelta(2.5667, stat.AvgEaseFactor, 0.001)
}

func (s *StatsRepositorySuite) TestDeckStats_EmptyDeck() {
	stat, err := s.repo.DeckStats(context.Background(), "nobody", models.MustParseDate("2024-01-01"))
	s.Require().NoError(err)
	s.Assert().Equal(0, stat.TotalCards)
	s.Assert().Equal(0.0, stat.Accuracy)
}

func (s *StatsRepositorySuite) TestTopicStats() {
	ctx := context.Background()
	s.Require().NoError(s.cards.InsertMany(ctx, []models.ReviewCard{
		newCard("a", "u1", "t1", "a", "2024-01-01"),
		newCard("b", "u1", "t1", "b", "2024-02-01"),
		newCard("c", "u1", "t2", "c", "2024-01-01"),
	}))

	stats, err := s.repo.TopicStats(ctx, "u1", models.MustParseDate("2024-01-10"))
	s.Require().NoError(err)
	s.Require().Len(stats, 2)
	s.Assert().Equal("t1", stats[0].TopicID)
	s.Assert().Equal(2, stats[0].TotalCards)
	s.Assert().Equal(1, stats[0].CardsDue)
	s.Assert().Equal("t2", stats[1].TopicID)
	s.Assert().Equal(1, stats[1].CardsDue)
}

func TestStatsRepositorySuite(t *testing.T) {
	suite.Run(t, new(StatsRepositorySuite))
}
