package service

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/set-night/chatfeedback/internal/domain"
)

type ExitSource string

const (
	ExitSourceEmbedded ExitSource = "embedded"
	ExitSourceRemote   ExitSource = "remote"
	ExitSourceLocal    ExitSource = "local"
)

type ExitDecision struct {
	Exit       bool
	Confidence float64
	Source     ExitSource
}

// ExitRemote is the dedicated detect_exit_intent request.
type ExitRemote interface {
	ClassifyExit(ctx context.Context, text string) ([]domain.StructuredCall, error)
}

// ExitClassifier decides whether a turn ends the conversation.
//
// The backend is authoritative. A detect_exit_intent call attached to the
// main exchange is used first; without one, a dedicated request is made.
// The local phrase list is consulted only when the backend cannot answer:
// the main exchange fell back, the dedicated request failed, or it returned
// no usable call.
type ExitClassifier struct {
	remote  ExitRemote
	phrases []*regexp.Regexp
}

func NewExitClassifier(remote ExitRemote, phrases []string) *ExitClassifier {
	c := &ExitClassifier{remote: remote}
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		c.phrases = append(c.phrases, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)+`\b`))
	}
	return c
}

// Decide classifies text given the reply of the main exchange. Only a
// context error is returned; remote failures degrade to the phrase list.
func (c *ExitClassifier) Decide(ctx context.Context, text string, reply domain.Reply) (ExitDecision, error) {
	if call, ok := reply.ExitIntentCall(); ok {
		return ExitDecision{Exit: call.IsExitIntent, Confidence: call.Confidence, Source: ExitSourceEmbedded}, nil
	}

	if c.remote != nil && !reply.Fallback {
		calls, err := c.remote.ClassifyExit(ctx, text)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ExitDecision{}, ctxErr
		}
		if err != nil {
			slog.Warn("exit classification failed, using phrase list", "error", err)
		} else if call, ok := domain.FindExitIntent(calls); ok {
			return ExitDecision{Exit: call.IsExitIntent, Confidence: call.Confidence, Source: ExitSourceRemote}, nil
		} else {
			slog.Warn("exit classification returned no usable call, using phrase list")
		}
	}

	return ExitDecision{Exit: c.MatchesPhrase(text), Source: ExitSourceLocal}, nil
}

// IsExit classifies text on its own, without a main exchange.
func (c *ExitClassifier) IsExit(ctx context.Context, text string) bool {
	d, err := c.Decide(ctx, text, domain.Reply{})
	return err == nil && d.Exit
}

// MatchesPhrase reports whether text contains an exit phrase as whole words.
func (c *ExitClassifier) MatchesPhrase(text string) bool {
	for _, re := range c.phrases {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
