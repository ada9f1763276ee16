package feedback

import (
	"strings"

	"github.com/set-night/chatfeedback/internal/domain"
)

// Signal is the feedback accepted for one turn.
type Signal struct {
	Review string
	Rating domain.Rating
	Source domain.FeedbackSource
}

// Merge picks the feedback for a turn. A local result always wins over the
// backend's report, even when the ratings disagree. A remote call counts
// only when it is flagged as feedback; its review defaults to text.
func Merge(local *Result, remote *domain.FeedbackCall, text string) (Signal, bool) {
	if local != nil && local.Rating.Valid() {
		return Signal{Review: local.Review, Rating: local.Rating, Source: domain.SourceLocal}, true
	}
	if remote == nil || !remote.IsFeedback {
		return Signal{}, false
	}
	review := strings.TrimSpace(remote.Review)
	if review == "" {
		review = text
	}
	rating := remote.Rating
	if !rating.Valid() {
		rating = domain.NoRating
	}
	return Signal{Review: review, Rating: rating, Source: domain.SourceRemote}, true
}

// ForTurn runs the extractor on text and merges it with the reply's
// collect_feedback call.
func ForTurn(text string, reply domain.Reply) (Signal, bool) {
	var local *Result
	if r, ok := Extract(text); ok {
		local = &r
	}
	var remote *domain.FeedbackCall
	if fc, ok := reply.FeedbackCall(); ok {
		remote = &fc
	}
	return Merge(local, remote, text)
}
