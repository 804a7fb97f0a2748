package models

// DeckStat summarizes one learner's review cards.
type DeckStat struct {
	TotalCards      int     `json:"total_cards"`
	NewCards        int     `json:"new_cards"`
	TotalReviews    int     `json:"total_reviews"`
	CardsMastered   int     `json:"cards_mastered"`
	CardsStruggling int     `json:"cards_struggling"`
	CardsDue        int     `json:"cards_due"`
	CardsDueSoon    int     `json:"cards_due_soon"`
	Accuracy        float64 `json:"accuracy"`
	AvgEaseFactor   float64 `json:"avg_ease_factor"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

// TopicStat is DeckStat's per-topic breakdown.
type TopicStat struct {
	TopicID       string  `json:"topic_id"`
	TotalCards    int     `json:"total_cards"`
	CardsDue      int     `json:"cards_due"`
	AvgEaseFactor float64 `json:"avg_ease_factor"`
}
