package middleware

import (
	"context"

	"github.com/set-night/chatfeedback/internal/domain"
)

// TurnHandler processes one line of user input and reports the state the
// session is in afterwards.
type TurnHandler func(ctx context.Context, text string) (domain.State, error)

type Middleware func(next TurnHandler) TurnHandler

// Chain wraps h so that the first middleware is the outermost.
func Chain(h TurnHandler, mws ...Middleware) TurnHandler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
