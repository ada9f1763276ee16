package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

type ModelOptions struct {
	Model        string
	Temperature  float64
	SystemPrompt string
	MaxAttempts  int
	// Pricing is used for cost accounting when the backend reports none.
	Pricing *domain.AIModel
}

// ModelClient runs chat exchanges against a Backend with a bounded,
// sequential retry budget.
type ModelClient struct {
	backend Backend
	opts    ModelOptions
	usage   Usage
}

func NewModelClient(backend Backend, opts ModelOptions) *ModelClient {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = config.MaxAttempts
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = config.DefaultSystemPrompt
	}
	return &ModelClient{backend: backend, opts: opts}
}

func (c *ModelClient) Usage() Usage {
	return c.usage
}

// Send runs the main exchange for one user turn. When every attempt fails
// the reply carries a fixed fallback message and no calls, and the error
// reports the failure kind. Context cancellation is returned as is.
func (c *ModelClient) Send(ctx context.Context, session *domain.ChatSession, text string) (domain.Reply, error) {
	req := c.newRequest(c.opts.SystemPrompt)
	if session != nil {
		for _, turn := range session.Transcript {
			req.Messages = append(req.Messages, ChatMessage{Role: turn.Role.APIRole(), Content: turn.Text})
		}
	}
	req.Messages = append(req.Messages, ChatMessage{Role: "user", Content: text})
	req.Tools = []Tool{CollectFeedbackTool, DetectExitIntentTool}
	req.ToolChoice = "auto"

	resp, attempts, err := c.do(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.Reply{Attempts: attempts}, ctxErr
		}
		return domain.Reply{
			Text:     FallbackMessage(domain.ClassifyError(err)),
			Fallback: true,
			Attempts: attempts,
		}, err
	}

	msg := resp.Choices[0].Message
	reply := domain.Reply{
		Text:     strings.TrimSpace(msg.Content),
		Calls:    ParseCalls(msg.ToolCalls),
		Attempts: attempts,
	}
	if reply.Text == "" {
		reply.Text = config.MsgAcknowledged
	}
	return reply, nil
}

// Classify asks the backend to call fn about text and returns the parsed
// calls. It shares the retry budget of Send but has no fallback text.
func (c *ModelClient) Classify(ctx context.Context, text string, tool Tool, instructions string) ([]domain.StructuredCall, error) {
	req := c.newRequest(instructions)
	req.Messages = append(req.Messages, ChatMessage{Role: "user", Content: text})
	req.Tools = []Tool{tool}
	req.ToolChoice = forceTool(tool.Function.Name)

	resp, _, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	return ParseCalls(resp.Choices[0].Message.ToolCalls), nil
}

// ClassifyExit issues the dedicated detect_exit_intent request.
func (c *ModelClient) ClassifyExit(ctx context.Context, text string) ([]domain.StructuredCall, error) {
	return c.Classify(ctx, text, DetectExitIntentTool, config.ExitClassifierPrompt)
}

func (c *ModelClient) newRequest(system string) ChatRequest {
	temperature := c.opts.Temperature
	return ChatRequest{
		Model:       c.opts.Model,
		Messages:    []ChatMessage{{Role: "system", Content: system}},
		Temperature: &temperature,
	}
}

// do performs up to MaxAttempts calls. Content-policy rejections stop the
// loop at once; there is no delay between attempts.
func (c *ModelClient) do(ctx context.Context, req ChatRequest) (*ChatResponse, int, error) {
	var lastErr error
	attempts := 0
	for attempts < c.opts.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}
		attempts++

		resp, err := c.backend.Chat(ctx, req)
		if err == nil && (resp == nil || len(resp.Choices) == 0) {
			err = domain.ErrEmptyResponse
		}
		if err == nil {
			c.usage.Add(resp, c.opts.Pricing)
			return resp, attempts, nil
		}

		kind := domain.ClassifyError(err)
		if !errors.Is(err, kind.Sentinel()) {
			err = fmt.Errorf("%w: %w", kind.Sentinel(), err)
		}
		lastErr = err
		slog.Warn("backend attempt failed",
			"attempt", attempts,
			"max_attempts", c.opts.MaxAttempts,
			"kind", kind.String(),
			"error", err,
		)
		if kind == domain.KindContentPolicy {
			break
		}
	}
	if !errors.Is(lastErr, domain.ErrContentPolicy) {
		slog.Error("backend attempts exhausted", "attempts", attempts, "error", lastErr)
	}
	return nil, attempts, lastErr
}

// FallbackMessage is the fixed reply shown after a failed exchange.
func FallbackMessage(kind domain.ErrorKind) string {
	switch kind {
	case domain.KindContentPolicy:
		return config.MsgContentPolicy
	case domain.KindTransient:
		return config.MsgConnectionTrouble
	default:
		return config.MsgProcessingDifficulty
	}
}
