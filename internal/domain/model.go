package domain

import (
	"fmt"
	"time"
)

// Rating is a 1-5 score. Zero means no rating was given.
type Rating int

const (
	NoRating  Rating = 0
	MinRating Rating = 1
	MaxRating Rating = 5
)

// NewRating accepts only integers in [1,5]; nothing is clamped.
func NewRating(n int) (Rating, error) {
	if n < int(MinRating) || n > int(MaxRating) {
		return NoRating, fmt.Errorf("%w: %d is outside %d-%d", ErrInvalidRating, n, MinRating, MaxRating)
	}
	return Rating(n), nil
}

// RatingFromNumber validates a JSON number. Fractions are rejected.
func RatingFromNumber(f float64) (Rating, error) {
	n := int(f)
	if float64(n) != f {
		return NoRating, fmt.Errorf("%w: %v is not an integer", ErrInvalidRating, f)
	}
	return NewRating(n)
}

func (r Rating) Valid() bool {
	return r >= MinRating && r <= MaxRating
}

func (r Rating) String() string {
	if !r.Valid() {
		return "no rating"
	}
	return fmt.Sprintf("%d/5", int(r))
}

type FeedbackSource string

const (
	SourceLocal       FeedbackSource = "local"
	SourceRemote      FeedbackSource = "remote"
	SourceInteractive FeedbackSource = "interactive"
)

type FeedbackRecord struct {
	ChatID    string         `json:"chat_id"`
	Review    string         `json:"review"`
	Rating    Rating         `json:"rating"`
	Source    FeedbackSource `json:"source"`
	CreatedAt time.Time      `json:"created_at"`
}

// Reply is the outcome of one main exchange with the backend.
type Reply struct {
	Text     string
	Calls    []StructuredCall
	Fallback bool
	Attempts int
}

// FeedbackCall returns the first collect_feedback call, if any.
func (r Reply) FeedbackCall() (FeedbackCall, bool) {
	for _, c := range r.Calls {
		if fc, ok := c.(FeedbackCall); ok {
			return fc, true
		}
	}
	return FeedbackCall{}, false
}

// ExitIntentCall returns the first detect_exit_intent call, if any.
func (r Reply) ExitIntentCall() (ExitIntentCall, bool) {
	return FindExitIntent(r.Calls)
}
