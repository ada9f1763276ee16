package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/set-night/chatfeedback/internal/domain"
)

var ErrTurnPanicked = errors.New("turn panicked")

// Recover returns middleware that turns a panic inside a turn into
// ErrTurnPanicked. The session stays ACTIVE.
func Recover() Middleware {
	return func(next TurnHandler) TurnHandler {
		return func(ctx context.Context, text string) (state domain.State, err error) {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic recovered in turn",
						"panic", r,
						"stack", string(debug.Stack()),
					)
					state = domain.StateActive
					err = fmt.Errorf("%w: %v", ErrTurnPanicked, r)
				}
			}()
			return next(ctx, text)
		}
	}
}
