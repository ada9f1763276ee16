package middleware

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/set-night/chatfeedback/internal/domain"
)

// Logging returns middleware that logs turn processing time.
func Logging(chatID string) Middleware {
	return func(next TurnHandler) TurnHandler {
		return func(ctx context.Context, text string) (domain.State, error) {
			start := time.Now()

			state, err := next(ctx, text)

			attrs := []any{
				"chat_id", chatID,
				"chars", utf8.RuneCountInString(text),
				"state", state,
				"duration", time.Since(start),
			}
			if err != nil {
				slog.Warn("turn failed", append(attrs, "error", err)...)
			} else {
				slog.Debug("turn processed", attrs...)
			}
			return state, err
		}
	}
}
