package service

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/set-night/chatfeedback/internal/domain"
)

// ParseCalls validates the tool calls of a response. Calls that cannot be
// parsed are logged and dropped; the rest are returned in order.
func ParseCalls(toolCalls []ToolCall) []domain.StructuredCall {
	calls := make([]domain.StructuredCall, 0, len(toolCalls))
	for _, tc := range toolCalls {
		call, err := ParseCall(tc.Function.Name, tc.Function.Arguments)
		if err != nil {
			slog.Warn("discarding structured call", "name", tc.Function.Name, "id", tc.ID, "error", err)
			continue
		}
		calls = append(calls, call)
	}
	return calls
}

// ParseCall turns raw function-call arguments into a typed call. Every
// failure wraps domain.ErrMalformedCall.
func ParseCall(name, args string) (domain.StructuredCall, error) {
	args = strings.TrimSpace(args)
	if !gjson.Valid(args) || !gjson.Parse(args).IsObject() {
		return nil, fmt.Errorf("%w: %s arguments are not a JSON object", domain.ErrMalformedCall, name)
	}
	parsed := gjson.Parse(args)

	switch name {
	case domain.CallCollectFeedback:
		return parseFeedbackCall(parsed)
	case domain.CallDetectExitIntent:
		return parseExitIntentCall(parsed)
	default:
		return nil, fmt.Errorf("%w: unknown function %q", domain.ErrMalformedCall, name)
	}
}

func parseFeedbackCall(args gjson.Result) (domain.StructuredCall, error) {
	isFeedback, err := requiredBool(args, "is_feedback")
	if err != nil {
		return nil, err
	}
	call := domain.FeedbackCall{IsFeedback: isFeedback}

	if review := args.Get("review"); review.Type == gjson.String {
		call.Review = strings.TrimSpace(review.Str)
	}

	rating := args.Get("rating")
	switch rating.Type {
	case gjson.Number:
		call.Rating = ratingOrNone(rating.Num)
	case gjson.String:
		if f, err := strconv.ParseFloat(strings.TrimSpace(rating.Str), 64); err == nil {
			call.Rating = ratingOrNone(f)
		}
	}
	return call, nil
}

func parseExitIntentCall(args gjson.Result) (domain.StructuredCall, error) {
	isExit, err := requiredBool(args, "is_exit_intent")
	if err != nil {
		return nil, err
	}
	call := domain.ExitIntentCall{IsExitIntent: isExit}
	if c := args.Get("confidence"); c.Type == gjson.Number && c.Num >= 0 && c.Num <= 1 {
		call.Confidence = c.Num
	}
	return call, nil
}

func requiredBool(args gjson.Result, field string) (bool, error) {
	v := args.Get(field)
	switch v.Type {
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	case gjson.Null:
		if !v.Exists() {
			return false, fmt.Errorf("%w: missing %s", domain.ErrMalformedCall, field)
		}
	}
	return false, fmt.Errorf("%w: %s is not a boolean", domain.ErrMalformedCall, field)
}

func ratingOrNone(f float64) domain.Rating {
	r, err := domain.RatingFromNumber(f)
	if err != nil {
		slog.Debug("ignoring backend rating", "rating", f, "error", err)
		return domain.NoRating
	}
	return r
}
