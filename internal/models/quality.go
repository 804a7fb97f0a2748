package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is the learner's self-reported recall for one review.
type Quality int

const (
	QualityAgain Quality = 0
	QualityHard  Quality = 2
	QualityGood  Quality = 3
	QualityEasy  Quality = 5
)

var qualityNames = map[Quality]string{
	QualityAgain: "again",
	QualityHard:  "hard",
	QualityGood:  "good",
	QualityEasy:  "easy",
}

// IsValid reports whether q is one of the four accepted ratings.
func (q Quality) IsValid() bool {
	_, ok := qualityNames[q]
	return ok
}

// Passed reports whether q counts as a successful recall.
func (q Quality) Passed() bool {
	return q >= QualityGood
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// ParseQuality accepts either the numeric rating ("0", "2", "3", "5") or its
// name ("again", "hard", "good", "easy", any case). The returned quality is
// not validated when given as a number; call IsValid.
func ParseQuality(s string) (Quality, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return Quality(n), nil
	}
	lower := strings.ToLower(s)
	for q, name := range qualityNames {
		if name == lower {
			return q, nil
		}
	}
	return 0, fmt.Errorf("unknown quality %q", s)
}
