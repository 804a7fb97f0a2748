package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/repository/sqlite"
	"github.com/vytor/studyflash/internal/review"
	"github.com/vytor/studyflash/internal/services"
	"github.com/vytor/studyflash/internal/testutil"
	"github.com/vytor/studyflash/internal/testutil/mocks"
)

const testUser = "u1"

type ServerSuite struct {
	suite.Suite
	db      *sql.DB
	source  repository.FlashcardSource
	queue   *mocks.MockJobQueue
	server  *Server
	handler http.Handler
}

func (s *ServerSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	cards := sqlite.NewCardRepository(s.db)
	s.source = sqlite.NewFlashcardSource(s.db)
	s.queue = new(mocks.MockJobQueue)

	reward := func(_ models.ReviewCard, q models.Quality) int {
		if q == models.QualityEasy {
			return 15
		}
		return 10
	}

	s.server = &Server{
		DueService:    services.NewDueService(cards),
		ReviewService: services.NewReviewService(cards, reward),
		ImportService: services.NewImportService(cards, s.source),
		StatsService:  services.NewStatsService(sqlite.NewStatsRepository(s.db)),
		JobQueue:      s.queue,
		Location:      time.UTC,
		Now: func() time.Time {
			return time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
		},
	}
	s.handler = s.server.Routes()
}

func (s *ServerSuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ServerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(userHeader, testUser)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *ServerSuite) decode(rec *httptest.ResponseRecorder, v any) {
	require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func (s *ServerSuite) seedTopic(topicID string, fronts ...string) {
	cards := make([]models.Flashcard, 0, len(fronts))
	for _, f := range fronts {
		cards = append(cards, models.Flashcard{TopicID: topicID, Front: f, Back: f + " answer"})
	}
	require.NoError(s.T(), s.source.Replace(context.Background(), topicID, cards))
}

func (s *ServerSuite) importTopic(topicID string) {
	rec := s.do(http.MethodPost, "/api/topics/"+topicID+"/import", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
}

type errorBody struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Context map[string]any `json:"context"`
	} `json:"error"`
}

func (s *ServerSuite) TestHealthz() {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("OK", rec.Body.String())
}

func (s *ServerSuite) TestReadyz() {
	s.server.Ready = func(context.Context) error { return nil }
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	s.Equal(http.StatusOK, rec.Code)

	s.server.Ready = func(context.Context) error { return stderrors.New("closed") }
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *ServerSuite) TestAPIRequiresUser() {
	req := httptest.NewRequest(http.MethodGet, "/api/due", nil)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestImportTopicThenDue() {
	s.seedTopic("t1", "a", "b", "c")

	rec := s.do(http.MethodPost, "/api/topics/t1/import", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var created struct {
		Created int `json:"created"`
	}
	s.decode(rec, &created)
	s.Equal(3, created.Created)

	// second import creates nothing
	rec = s.do(http.MethodPost, "/api/topics/t1/import", nil)
	s.decode(rec, &created)
	s.Equal(0, created.Created)

	rec = s.do(http.MethodGet, "/api/due", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var due struct {
		AsOf  string `json:"as_of"`
		Count int    `json:"count"`
		Cards []struct {
			ID    string `json:"id"`
			Front string `json:"front"`
		} `json:"cards"`
	}
	s.decode(rec, &due)
	s.Equal("2024-01-10", due.AsOf)
	s.Equal(3, due.Count)
	s.Equal("a", due.Cards[0].Front)
}

func (s *ServerSuite) TestDueCount() {
	s.seedTopic("t1", "a", "b")
	s.importTopic("t1")

	rec := s.do(http.MethodGet, "/api/due/count?as_of=2024-01-09", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"as_of":"2024-01-09","count":0}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/due/count", nil)
	s.JSONEq(`{"as_of":"2024-01-10","count":2}`, rec.Body.String())
}

func (s *ServerSuite) TestCardsFilterByTopic() {
	s.seedTopic("t1", "a", "b")
	s.seedTopic("t2", "c")
	s.importTopic("t1")
	s.importTopic("t2")

	rec := s.do(http.MethodGet, "/api/cards?topic_id=t2", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body struct {
		Count int `json:"count"`
	}
	s.decode(rec, &body)
	s.Equal(1, body.Count)

	rec = s.do(http.MethodGet, "/api/cards", nil)
	s.decode(rec, &body)
	s.Equal(3, body.Count)
}

func (s *ServerSuite) TestDueRejectsBadDate() {
	rec := s.do(http.MethodGet, "/api/due?as_of=10-01-2024", nil)

	s.Equal(http.StatusBadRequest, rec.Code)
	var body errorBody
	s.decode(rec, &body)
	s.Equal("VALIDATION_ERROR", body.Error.Code)
}

func (s *ServerSuite) TestStartSessionWithNothingDue() {
	rec := s.do(http.MethodPost, "/api/sessions", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"caught_up":true}`, rec.Body.String())
}

func (s *ServerSuite) TestFullSession() {
	s.seedTopic("t1", "a", "b")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", nil)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var view services.SessionView
	s.decode(rec, &view)
	s.Require().NotEmpty(view.ID)
	s.Equal("reviewing", view.State)
	s.Equal(2, view.Total)
	s.Require().NotNil(view.Current)

	first := view.Current.ID
	rec = s.do(http.MethodPost, "/api/sessions/"+view.ID+"/rate", map[string]any{"card_id": first, "quality": 5})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var res review.RateResult
	s.decode(rec, &res)
	s.Equal(15, res.XP)
	s.Equal(1, res.Card.IntervalDays)
	s.Equal("2024-01-11", res.Card.NextReviewDate.String())
	s.False(res.Complete)
	s.Require().NotNil(res.Next)

	rec = s.do(http.MethodPost, "/api/sessions/"+view.ID+"/rate", map[string]any{"card_id": res.Next.ID, "quality": "again"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.decode(rec, &res)
	s.True(res.Complete)
	s.Require().NotNil(res.Summary)
	s.Equal(2, res.Summary.Reviewed)
	s.Equal(1, res.Summary.Passed)
	s.Equal(1, res.Summary.Failed)
	s.Equal(25, res.Summary.XP)

	// finished sessions are gone
	rec = s.do(http.MethodGet, "/api/sessions/"+view.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)

	// the failed card is due tomorrow, nothing today
	rec = s.do(http.MethodGet, "/api/due", nil)
	var due struct {
		Count int `json:"count"`
	}
	s.decode(rec, &due)
	s.Equal(0, due.Count)
}

func (s *ServerSuite) TestRateRejectsInvalidQuality() {
	s.seedTopic("t1", "a")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", nil)
	var view services.SessionView
	s.decode(rec, &view)

	for _, q := range []any{4, 1, "perfect"} {
		rec = s.do(http.MethodPost, "/api/sessions/"+view.ID+"/rate", map[string]any{"card_id": view.Current.ID, "quality": q})
		s.Equal(http.StatusBadRequest, rec.Code, "quality %v", q)
	}

	// session still on the same card
	rec = s.do(http.MethodGet, "/api/sessions/"+view.ID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var after services.SessionView
	s.decode(rec, &after)
	s.Equal(0, after.Reviewed)
	s.Equal(view.Current.ID, after.Current.ID)
}

func (s *ServerSuite) TestRateRequiresCardID() {
	rec := s.do(http.MethodPost, "/api/sessions/x/rate", map[string]any{"quality": 3})

	s.Equal(http.StatusBadRequest, rec.Code)
	var body errorBody
	s.decode(rec, &body)
	s.Equal("VALIDATION_ERROR", body.Error.Code)
	s.Contains(body.Error.Message, "card_id")
}

func (s *ServerSuite) TestRateUnknownSession() {
	rec := s.do(http.MethodPost, "/api/sessions/missing/rate", map[string]any{"card_id": "c1", "quality": 3})

	s.Equal(http.StatusConflict, rec.Code)
	var body errorBody
	s.decode(rec, &body)
	s.Equal("INVALID_STATE", body.Error.Code)
	s.Equal("missing", body.Error.Context["session_id"])
}

func (s *ServerSuite) TestRateWrongCard() {
	s.seedTopic("t1", "a", "b")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", nil)
	var view services.SessionView
	s.decode(rec, &view)

	rec = s.do(http.MethodPost, "/api/sessions/"+view.ID+"/rate", map[string]any{"card_id": "not-current", "quality": 3})
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *ServerSuite) TestAbandonSession() {
	s.seedTopic("t1", "a")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", nil)
	var view services.SessionView
	s.decode(rec, &view)

	rec = s.do(http.MethodDelete, "/api/sessions/"+view.ID, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	var body struct {
		Summary review.Summary `json:"summary"`
	}
	s.decode(rec, &body)
	s.True(body.Summary.Abandoned)
	s.Equal(0, body.Summary.Reviewed)

	rec = s.do(http.MethodDelete, "/api/sessions/"+view.ID, nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestSessionsAreScopedToUser() {
	s.seedTopic("t1", "a")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", nil)
	var view services.SessionView
	s.decode(rec, &view)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+view.ID, nil)
	req.Header.Set(userHeader, "someone-else")
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerSuite) TestStartSessionRejectsUnknownFields() {
	rec := s.do(http.MethodPost, "/api/sessions", map[string]any{"limit": 5})

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *ServerSuite) TestStartSessionAsOf() {
	s.seedTopic("t1", "a")
	s.importTopic("t1")

	rec := s.do(http.MethodPost, "/api/sessions", map[string]any{"as_of": "2024-01-09"})

	// imported cards are due on the import day, not before
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"caught_up":true}`, rec.Body.String())
}

func (s *ServerSuite) TestImportAllQueuesTopics() {
	s.seedTopic("t1", "a")
	s.seedTopic("t2", "b")
	asOf := models.MustParseDate("2024-01-10")
	s.queue.On("EnqueueImport", testUser, mock.AnythingOfType("string"), asOf).Return(nil).Twice()

	rec := s.do(http.MethodPost, "/api/import", nil)

	s.Require().Equal(http.StatusAccepted, rec.Code, rec.Body.String())
	s.JSONEq(`{"queued":2}`, rec.Body.String())
	s.queue.AssertExpectations(s.T())
}

func (s *ServerSuite) TestStats() {
	s.seedTopic("t1", "a", "b")
	s.importTopic("t1")

	rec := s.do(http.MethodGet, "/api/stats", nil)

	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Deck   map[string]any   `json:"deck"`
		Topics []map[string]any `json:"topics"`
	}
	s.decode(rec, &body)
	s.Require().NotNil(body.Deck)
	s.Len(body.Topics, 1)
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
