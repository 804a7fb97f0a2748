// Package review drives a learner through one pass over their due cards.
package review

import (
	"context"
	"sync"
	"time"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/flashcard"
	"github.com/vytor/studyflash/internal/logger"
	"github.com/vytor/studyflash/internal/models"
)

// State of a Session.
type State int

const (
	StateIdle State = iota
	StateReviewing
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReviewing:
		return "reviewing"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// CardStore is the part of the card repository a session reads and writes.
type CardStore interface {
	Due(ctx context.Context, userID string, asOf models.Date) ([]models.ReviewCard, error)
	Update(ctx context.Context, id string, patch models.CardPatch) error
	InsertReviewHistory(ctx context.Context, entry models.ReviewHistory) error
}

// RewardFunc maps one rating to the XP it earns. The mapping itself belongs to
// the caller.
type RewardFunc func(card models.ReviewCard, quality models.Quality) int

// NoReward is the default RewardFunc.
func NoReward(models.ReviewCard, models.Quality) int { return 0 }

// Summary is emitted when a session ends.
type Summary struct {
	UserID     string    `json:"user_id"`
	TotalCards int       `json:"total_cards"`
	Reviewed   int       `json:"reviewed"`
	Passed     int       `json:"passed"`
	Failed     int       `json:"failed"`
	XP         int       `json:"xp"`
	Abandoned  bool      `json:"abandoned"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Progress is a snapshot of a session.
type Progress struct {
	State    string             `json:"state"`
	Index    int                `json:"index"`
	Total    int                `json:"total"`
	Reviewed int                `json:"reviewed"`
	XP       int                `json:"xp"`
	Current  *models.ReviewCard `json:"current,omitempty"`
}

// RateResult is returned by Rate. Exactly one of Next and Summary is set.
type RateResult struct {
	Card      models.ReviewCard  `json:"card"`
	XP        int                `json:"xp"`
	NextIndex int                `json:"next_index"`
	Next      *models.ReviewCard `json:"next,omitempty"`
	Complete  bool               `json:"complete"`
	Summary   *Summary           `json:"summary,omitempty"`
}

type Option func(*Session)

// WithReward sets the XP policy.
func WithReward(fn RewardFunc) Option {
	return func(s *Session) {
		if fn != nil {
			s.reward = fn
		}
	}
}

// WithClock overrides time.Now for lastReviewedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Session is a state machine Idle -> Reviewing(i) -> Complete over the
// cards due for one learner on one date. Rate calls are serialized; a
// card rated Again is not requeued.
type Session struct {
	mu     sync.Mutex
	store  CardStore
	reward RewardFunc
	now    func() time.Time

	userID string
	asOf   models.Date

	state     State
	queue     []models.ReviewCard
	index     int
	xp        int
	passed    int
	failed    int
	abandoned bool
	startedAt time.Time
	endedAt   time.Time
}

// New creates an idle session for userID reviewing the cards due on asOf.
func New(store CardStore, userID string, asOf models.Date, opts ...Option) *Session {
	s := &Session{
		store:  store,
		reward: NoReward,
		now:    time.Now,
		userID: userID,
		asOf:   asOf,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the due set once. It fails with EmptyQueue when nothing is due
// and leaves the session idle in that case.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("review").WithField("user_id", s.userID)

	if s.state != StateIdle {
		return errors.NewInvalidStateError("session already started").With("state", s.state.String())
	}

	due, err := s.store.Due(ctx, s.userID, s.asOf)
	if err != nil {
		log.Error("failed to load due cards: %v", err)
		return errors.NewStoreUnavailableError("due", err).With("user_id", s.userID)
	}
	if len(due) == 0 {
		log.Debug("nothing due on %s", s.asOf)
		return errors.NewEmptyQueueError(s.userID)
	}

	s.queue = due
	s.index = 0
	s.state = StateReviewing
	s.startedAt = s.now()
	log.Info("session started: %d cards due on %s", len(due), s.asOf)
	return nil
}

// Rate records quality for cardID, which must be the current card.
//
// An invalid quality is rejected before anything else. A store failure
// leaves the session where it was, so the same call can be retried.
func (s *Session) Rate(ctx context.Context, cardID string, quality models.Quality) (*RateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logger.FromContext(ctx).WithPrefix("review").WithFields(map[string]any{
		"user_id": s.userID,
		"card_id": cardID,
	})

	if !quality.IsValid() {
		return nil, errors.NewInvalidQualityError(int(quality)).With("card_id", cardID)
	}
	if s.state != StateReviewing {
		return nil, errors.NewInvalidStateError("session is not reviewing").
			With("state", s.state.String()).
			With("card_id", cardID)
	}

	current := s.queue[s.index]
	if current.ID != cardID {
		return nil, errors.NewInvalidStateError("card is not the current card").
			With("card_id", cardID).
			With("expected_card_id", current.ID).
			With("index", s.index)
	}

	reviewedAt := s.now()
	updated, err := flashcard.ApplyReview(current, quality, s.asOf, reviewedAt)
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, cardID, updated.Patch()); err != nil {
		log.Error("failed to persist review: %v", err)
		return nil, errors.NewStoreUnavailableError("update", err).With("card_id", cardID)
	}

	if err := s.store.InsertReviewHistory(ctx, models.ReviewHistory{
		CardID:       cardID,
		UserID:       s.userID,
		Quality:      quality,
		EaseFactor:   updated.EaseFactor,
		IntervalDays: updated.IntervalDays,
		ReviewDate:   s.asOf,
		ReviewedAt:   reviewedAt,
	}); err != nil {
		// The schedule is already saved; history is best effort.
		log.Warn("failed to record review history: %v", err)
	}

	earned := s.reward(updated, quality)
	s.xp += earned
	if quality.Passed() {
		s.passed++
	} else {
		s.failed++
	}
	s.queue[s.index] = updated
	s.index++

	log.Debug("rated %s: interval=%d ease=%.2f next=%s", quality, updated.IntervalDays, updated.EaseFactor, updated.NextReviewDate)

	res := &RateResult{Card: updated, XP: earned, NextIndex: s.index}
	if s.index == len(s.queue) {
		s.state = StateComplete
		s.endedAt = reviewedAt
		sum := s.summary()
		res.Complete = true
		res.Summary = &sum
		log.Info("session complete: reviewed=%d xp=%d", sum.Reviewed, sum.XP)
		return res, nil
	}

	next := s.queue[s.index]
	res.Next = &next
	return res, nil
}

// Abandon ends the session early. Ratings already made stay persisted.
func (s *Session) Abandon(ctx context.Context) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateComplete {
		s.state = StateComplete
		s.abandoned = true
		s.endedAt = s.now()
		logger.FromContext(ctx).WithPrefix("review").WithField("user_id", s.userID).
			Info("session abandoned after %d of %d cards", s.index, len(s.queue))
	}
	return s.summary()
}

// Current returns the card awaiting a rating, or nil when not reviewing.
func (s *Session) Current() *models.ReviewCard {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReviewing {
		return nil
	}
	c := s.queue[s.index]
	return &c
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Progress{
		State:    s.state.String(),
		Index:    s.index,
		Total:    len(s.queue),
		Reviewed: s.index,
		XP:       s.xp,
	}
	if s.state == StateReviewing {
		c := s.queue[s.index]
		p.Current = &c
	}
	return p
}

// Summary returns the totals so far.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary()
}

func (s *Session) summary() Summary {
	return Summary{
		UserID:     s.userID,
		TotalCards: len(s.queue),
		Reviewed:   s.index,
		Passed:     s.passed,
		Failed:     s.failed,
		XP:         s.xp,
		Abandoned:  s.abandoned,
		StartedAt:  s.startedAt,
		FinishedAt: s.endedAt,
	}
}
