package services_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil"
	"github.com/vytor/studyflash/internal/testutil/mocks"
)

var asOf = models.MustParseDate("2024-01-10")

func TestImportCards_SkipsKnownAndDuplicateFronts(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	cards.On("ByTopic", mock.Anything, "u1", "bio").Return([]models.ReviewCard{{ID: "old", Front: "Cell"}}, nil)

	var inserted []models.ReviewCard
	cards.On("InsertMany", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		inserted = args.Get(1).([]models.ReviewCard)
	}).Return(nil)

	svc := services.NewImportService(cards, new(mocks.MockFlashcardSource))
	created, err := svc.ImportCards(context.Background(), "u1", "bio", []models.Flashcard{
		{Front: "Cell", Back: "dup of existing"},
		{Front: "DNA", Back: "first"},
		{Front: "RNA", Back: "x"},
		{Front: "DNA", Back: "second"},
	}, asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, created)
	require.Len(t, inserted, 2)
	assert.Equal(t, "DNA", inserted[0].Front)
	assert.Equal(t, "first", inserted[0].Back)
	assert.Equal(t, "RNA", inserted[1].Front)

	for _, c := range inserted {
		assert.NotEmpty(t, c.ID)
		assert.Equal(t, "u1", c.UserID)
		assert.Equal(t, "bio", c.TopicID)
		assert.Equal(t, models.DefaultEaseFactor, c.EaseFactor)
		assert.Equal(t, 0, c.IntervalDays)
		assert.Equal(t, 0, c.Repetitions)
		assert.True(t, c.NextReviewDate.Equal(asOf))
		assert.Nil(t, c.LastReviewedAt)
	}
}

func TestImportCards_NothingNew(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	cards.On("ByTopic", mock.Anything, "u1", "bio").Return([]models.ReviewCard{{Front: "Cell"}}, nil)

	svc := services.NewImportService(cards, new(mocks.MockFlashcardSource))
	created, err := svc.ImportCards(context.Background(), "u1", "bio", []models.Flashcard{{Front: "Cell"}}, asOf)

	require.NoError(t, err)
	assert.Equal(t, 0, created)
	cards.AssertNotCalled(t, "InsertMany", mock.Anything, mock.Anything)
}

func TestImportCards_InsertFailureCreatesNothing(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	cards.On("ByTopic", mock.Anything, "u1", "bio").Return(nil, nil)
	cards.On("InsertMany", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))

	svc := services.NewImportService(cards, new(mocks.MockFlashcardSource))
	created, err := svc.ImportCards(context.Background(), "u1", "bio", []models.Flashcard{{Front: "a"}}, asOf)

	assert.Equal(t, 0, created)
	assert.True(t, stderrors.Is(err, errors.ErrStoreUnavailable))
}

func TestImportCards_RequiresIDs(t *testing.T) {
	svc := services.NewImportService(new(mocks.MockCardRepository), new(mocks.MockFlashcardSource))

	_, err := svc.ImportCards(context.Background(), "", "bio", nil, asOf)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))

	_, err = svc.ImportCards(context.Background(), "u1", "", nil, asOf)
	assert.True(t, stderrors.Is(err, errors.ErrValidation))
}

func TestImportTopic_ReadsSource(t *testing.T) {
	cards := new(mocks.MockCardRepository)
	cards.On("ByTopic", mock.Anything, "u1", "bio").Return(nil, nil)
	cards.On("InsertMany", mock.Anything, mock.Anything).Return(nil)
	source := new(mocks.MockFlashcardSource)
	source.On("Flashcards", mock.Anything, "bio").Return([]models.Flashcard{{TopicID: "bio", Front: "a"}, {TopicID: "bio", Front: "b"}}, nil)

	created, err := services.NewImportService(cards, source).ImportTopic(context.Background(), "u1", "bio", asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, created)
	source.AssertExpectations(t)
}

func TestImportTopic_SourceFailure(t *testing.T) {
	source := new(mocks.MockFlashcardSource)
	source.On("Flashcards", mock.Anything, "bio").Return(nil, stderrors.New("gone"))

	_, err := services.NewImportService(new(mocks.MockCardRepository), source).ImportTopic(context.Background(), "u1", "bio", asOf)

	assert.True(t, stderrors.Is(err, errors.ErrStoreUnavailable))
}

func TestImportAll_QueuesEveryTopic(t *testing.T) {
	source := new(mocks.MockFlashcardSource)
	source.On("Topics", mock.Anything).Return([]string{"bio", "math"}, nil)
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueImport", "u1", "bio", asOf).Return(nil).Once()
	queue.On("EnqueueImport", "u1", "math", asOf).Return(nil).Once()

	queued, err := services.NewImportService(new(mocks.MockCardRepository), source).ImportAll(context.Background(), queue, "u1", asOf)

	require.NoError(t, err)
	assert.Equal(t, 2, queued)
	queue.AssertExpectations(t)
}

func TestImportAll_StopsWhenQueueFull(t *testing.T) {
	source := new(mocks.MockFlashcardSource)
	source.On("Topics", mock.Anything).Return([]string{"a", "b", "c"}, nil)
	queue := new(mocks.MockJobQueue)
	queue.On("EnqueueImport", "u1", "a", asOf).Return(nil)
	queue.On("EnqueueImport", "u1", "b", asOf).Return(errors.NewQueueFullError("import_topic"))

	queued, err := services.NewImportService(new(mocks.MockCardRepository), source).ImportAll(context.Background(), queue, "u1", asOf)

	assert.Equal(t, 1, queued)
	assert.True(t, stderrors.Is(err, errors.ErrQueueFull))
	queue.AssertNotCalled(t, "EnqueueImport", "u1", "c", asOf)
}

// ImportIdempotenceSuite runs the reconciler against a real SQLite store.
type ImportIdempotenceSuite struct {
	suite.Suite
	db    *sql.DB
	cards repository.CardRepository
	svc   services.ImportService
}

func (s *ImportIdempotenceSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.cards = sqlite.NewCardRepository(s.db)
	s.svc = services.NewImportService(s.cards, sqlite.NewFlashcardSource(s.db))
}

func (s *ImportIdempotenceSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ImportIdempotenceSuite) TestSecondImportCreatesNothing() {
	ctx := context.Background()
	input := []models.Flashcard{{Front: "a", Back: "1"}, {Front: "b", Back: "2"}, {Front: "a", Back: "3"}}

	first, err := s.svc.ImportCards(ctx, "u1", "t1", input, asOf)
	s.Require().NoError(err)
	s.Assert().Equal(2, first)

	second, err := s.svc.ImportCards(ctx, "u1", "t1", input, asOf)
	s.Require().NoError(err)
	s.Assert().Equal(0, second)

	all, err := s.cards.ByTopic(ctx, "u1", "t1")
	s.Require().NoError(err)
	s.Assert().Len(all, 2)
}

func (s *ImportIdempotenceSuite) TestSameFrontOtherTopicOrUserIsNew() {
	ctx := context.Background()
	input := []models.Flashcard{{Front: "a", Back: "1"}}

	_, err := s.svc.ImportCards(ctx, "u1", "t1", input, asOf)
	s.Require().NoError(err)

	n, err := s.svc.ImportCards(ctx, "u1", "t2", input, asOf)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)

	n, err = s.svc.ImportCards(ctx, "u2", "t1", input, asOf)
	s.Require().NoError(err)
	s.Assert().Equal(1, n)
}

func (s *ImportIdempotenceSuite) TestImportedCardsAreDueImmediately() {
	ctx := context.Background()
	_, err := s.svc.ImportCards(ctx, "u1", "t1", []models.Flashcard{{Front: "a"}, {Front: "b"}}, asOf)
	s.Require().NoError(err)

	due, err := s.cards.Due(ctx, "u1", asOf)
	s.Require().NoError(err)
	s.Require().Len(due, 2)
	s.Assert().Equal("a", due[0].Front)
	s.Assert().Equal("b", due[1].Front)
}

func TestImportIdempotenceSuite(t *testing.T) {
	suite.Run(t, new(ImportIdempotenceSuite))
}
