package flashcard

import (
	"math"
	"time"

	"github.com/vytor/studyflash/internal/errors"
	"github.com/vytor/studyflash/internal/models"
)

// State is the part of a card the SM-2 schedule reads and writes.
type State struct {
	EaseFactor   float64
	IntervalDays int
	Repetitions  int
}

// StateOf extracts the scheduling state of card.
func StateOf(card models.ReviewCard) State {
	return State{
		EaseFactor:   card.EaseFactor,
		IntervalDays: card.IntervalDays,
		Repetitions:  card.Repetitions,
	}
}

// ComputeNextState applies one SM-2 review.
// quality: 0=Again, 2=Hard, 3=Good, 5=Easy. Anything else is rejected.
//
// A failed recall (quality < 3) resets repetitions, schedules the card for the
// next day and lowers ease by 0.2. A successful recall adjusts ease by
// 0.1-(5-q)*(0.08+(5-q)*0.02) and grows the interval 1, 6, then
// round(interval*ease') where the tier is chosen by the repetitions count
// before this review.
func ComputeNextState(quality models.Quality, s State) (State, error) {
	if !quality.IsValid() {
		return s, errors.NewInvalidQualityError(int(quality))
	}

	if !quality.Passed() {
		return State{
			EaseFactor:   clampEase(s.EaseFactor - 0.2),
			IntervalDays: 1,
			Repetitions:  0,
		}, nil
	}

	miss := float64(models.QualityEasy - quality)
	ef := clampEase(s.EaseFactor + (0.1 - miss*(0.08+miss*0.02)))

	interval := 1
	switch s.Repetitions {
	case 0:
		interval = 1
	case 1:
		interval = 6
	default:
		interval = int(math.Round(float64(s.IntervalDays) * ef))
	}

	return State{
		EaseFactor:   ef,
		IntervalDays: interval,
		Repetitions:  s.Repetitions + 1,
	}, nil
}

// ApplyReview reschedules card for a review of the given quality done on asOf
// at reviewedAt. The card is returned unchanged on error.
func ApplyReview(card models.ReviewCard, quality models.Quality, asOf models.Date, reviewedAt time.Time) (models.ReviewCard, error) {
	next, err := ComputeNextState(quality, StateOf(card))
	if err != nil {
		return card, err
	}

	card.EaseFactor = next.EaseFactor
	card.IntervalDays = next.IntervalDays
	card.Repetitions = next.Repetitions
	card.NextReviewDate = asOf.AddDays(next.IntervalDays)
	card.LastReviewedAt = &reviewedAt
	return card, nil
}

// clampEase applies the 1.3 floor.
func clampEase(ef float64) float64 {
	if ef < models.MinEaseFactor {
		return models.MinEaseFactor
	}
	return ef
}
