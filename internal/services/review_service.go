package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
	"github.com/vytor/studyflash/internal/repository"
	"github.com/vytor/studyflash/internal/review"
)

// SessionView is what callers see of a running session.
type SessionView struct {
	ID string `json:"session_id"`
	review.Progress
}

// ReviewService keeps the active review session of each learner
type ReviewService interface {
	StartSession(ctx context.Context, userID string, asOf models.Date) (*SessionView, error)
	Rate(ctx context.Context, sessionID, userID, cardID string, quality models.Quality) (*review.RateResult, error)
	Session(ctx context.Context, sessionID, userID string) (*SessionView, error)
	Abandon(ctx context.Context, sessionID, userID string) (*review.Summary, error)
	ActiveSessions() int
}

type reviewService struct {
	cardRepo repository.CardRepository
	reward   review.RewardFunc
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*review.Session
	byUser   map[string]string
}

// NewReviewService creates a new ReviewService. reward may be nil.
func NewReviewService(cardRepo repository.CardRepository, reward review.RewardFunc) ReviewService {
	return &reviewService{
		cardRepo: cardRepo,
		reward:   reward,
		now:      time.Now,
		sessions: make(map[string]*review.Session),
		byUser:   make(map[string]string),
	}
}

// StartSession replaces any session userID already has.
func (s *reviewService) StartSession(ctx context.Context, userID string, asOf models.Date) (*SessionView, error) {
	log := logger.FromContext(ctx).WithField("user_id", userID)
	log.Debug("starting review session: as_of=%s", asOf)

	if userID == "" {
		return nil, errors.NewValidationError("user_id", "is required")
	}

	sess := review.New(s.cardRepo, userID, asOf, review.WithReward(s.reward), review.WithClock(s.now))
	if err := sess.Start(ctx); err != nil {
		return nil, err
	}

	id := uuid.NewString()

	s.mu.Lock()
	if prev, ok := s.byUser[userID]; ok {
		if old := s.sessions[prev]; old != nil {
			old.Abandon(ctx)
		}
		delete(s.sessions, prev)
		log.Debug("replaced session %s", prev)
	}
	s.sessions[id] = sess
	s.byUser[userID] = id
	s.mu.Unlock()

	return &SessionView{ID: id, Progress: sess.Progress()}, nil
}

func (s *reviewService) Rate(ctx context.Context, sessionID, userID, cardID string, quality models.Quality) (*review.RateResult, error) {
	sess, ok := s.lookup(sessionID, userID)
	if !ok {
		return nil, errors.NewInvalidStateError("no active session").With("session_id", sessionID)
	}

	res, err := sess.Rate(ctx, cardID, quality)
	if err != nil {
		if appErr, ok := errors.As(err); ok {
			appErr.With("session_id", sessionID)
		}
		return nil, err
	}

	if res.Complete {
		s.drop(sessionID, userID)
	}
	return res, nil
}

func (s *reviewService) Session(ctx context.Context, sessionID, userID string) (*SessionView, error) {
	sess, ok := s.lookup(sessionID, userID)
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	return &SessionView{ID: sessionID, Progress: sess.Progress()}, nil
}

func (s *reviewService) Abandon(ctx context.Context, sessionID, userID string) (*review.Summary, error) {
	sess, ok := s.lookup(sessionID, userID)
	if !ok {
		return nil, errors.NewNotFoundError("session", sessionID)
	}
	sum := sess.Abandon(ctx)
	s.drop(sessionID, userID)
	return &sum, nil
}

func (s *reviewService) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// lookup hides sessions owned by another user.
func (s *reviewService) lookup(sessionID, userID string) (*review.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID() != userID {
		return nil, false
	}
	return sess, true
}

func (s *reviewService) drop(sessionID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	if s.byUser[userID] == sessionID {
		delete(s.byUser, userID)
	}
}
