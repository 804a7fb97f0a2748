package models

import "time"

// Defaults for a card that has never been reviewed.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// ReviewCard is one learner's scheduling record for one flashcard.
type ReviewCard struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	TopicID        string     `json:"topic_id"`
	Front          string     `json:"front"`
	Back           string     `json:"back"`
	EaseFactor     float64    `json:"ease_factor"`
	IntervalDays   int        `json:"interval_days"`
	Repetitions    int        `json:"repetitions"`
	NextReviewDate Date       `json:"next_review_date"`
	LastReviewedAt *time.Time `json:"last_reviewed_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsDue reports whether the card should be reviewed on asOf.
func (c ReviewCard) IsDue(asOf Date) bool {
	return !c.NextReviewDate.After(asOf)
}

// Patch returns the scheduling fields of c as an update.
func (c ReviewCard) Patch() CardPatch {
	return CardPatch{
		EaseFactor:     c.EaseFactor,
		IntervalDays:   c.IntervalDays,
		Repetitions:    c.Repetitions,
		NextReviewDate: c.NextReviewDate,
		LastReviewedAt: c.LastReviewedAt,
	}
}

// CardPatch holds the mutable fields of a ReviewCard. Content and ownership
// never change after creation.
type CardPatch struct {
	EaseFactor     float64
	IntervalDays   int
	Repetitions    int
	NextReviewDate Date
	LastReviewedAt *time.Time
}

// Flashcard is the canonical content of a topic's card as produced by the
// material generator.
type Flashcard struct {
	TopicID string `json:"topic_id"`
	Front   string `json:"front"`
	Back    string `json:"back"`
}

// ReviewHistory is one rating event and the schedule it produced.
type ReviewHistory struct {
	ID           int64     `json:"id"`
	CardID       string    `json:"card_id"`
	UserID       string    `json:"user_id"`
	Quality      Quality   `json:"quality"`
	EaseFactor   float64   `json:"ease_factor"`
	IntervalDays int       `json:"interval_days"`
	ReviewDate   Date      `json:"review_date"`
	ReviewedAt   time.Time `json:"reviewed_at"`
}

// CardFilter narrows card listings. UserID is required.
type CardFilter struct {
	UserID  string
	TopicID string
	DueBy   Date // zero means no due-date restriction
	Limit   int
	Offset  int
}
