package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
	"github.com/set-night/chatfeedback/internal/feedback"
	"github.com/set-night/chatfeedback/internal/middleware"
	"github.com/set-night/chatfeedback/internal/service"
)

type HistoryStore interface {
	AppendTurn(ctx context.Context, chatID string, turn domain.Turn) error
	Turns(ctx context.Context, chatID string) ([]domain.Turn, error)
}

type FeedbackStore interface {
	AppendFeedback(ctx context.Context, rec domain.FeedbackRecord) error
	Feedback(ctx context.Context, chatID string) ([]domain.FeedbackRecord, error)
}

// Prompter is the user-facing side of the session. ReadLine returns io.EOF
// when input is closed and the context error when ctx is done.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	Say(text string)
}

// Notifier receives out-of-band reports. Implementations must not block the
// session for long.
type Notifier interface {
	NotifyFeedback(ctx context.Context, rec domain.FeedbackRecord)
	NotifyError(ctx context.Context, err error, where string)
	NotifySessionClosed(ctx context.Context, s *domain.ChatSession, summary string)
}

type Model interface {
	Send(ctx context.Context, session *domain.ChatSession, text string) (domain.Reply, error)
}

type ExitDecider interface {
	Decide(ctx context.Context, text string, reply domain.Reply) (service.ExitDecision, error)
}

type usageReporter interface {
	Usage() service.Usage
}

type Options struct {
	ID       string
	Model    Model
	Exit     ExitDecider
	History  HistoryStore
	Feedback FeedbackStore
	Prompter Prompter
	Notifier Notifier
	ShowCost bool
	Now      func() time.Time
}

// Controller drives one chat session through ACTIVE, COLLECTING_FEEDBACK
// and ENDED. It is not safe for concurrent use.
type Controller struct {
	opts    Options
	session *domain.ChatSession
	state   domain.State
	turn    middleware.TurnHandler
}

// NewID returns a time-ordered session id.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func NewController(opts Options) *Controller {
	if opts.ID == "" {
		opts.ID = NewID()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	c := &Controller{
		opts: opts,
		session: &domain.ChatSession{
			ID:        opts.ID,
			Status:    domain.StatusActive,
			StartedAt: opts.Now(),
		},
		state: domain.StateActive,
	}
	c.turn = middleware.Chain(c.HandleTurn, middleware.Logging(opts.ID), middleware.Recover())
	return c
}

func (c *Controller) ID() string                   { return c.session.ID }
func (c *Controller) State() domain.State          { return c.state }
func (c *Controller) Session() *domain.ChatSession { return c.session }

// Run reads turns until the session ends. It returns nil on a normal or
// interrupted end and an error only for unexpected input failures.
func (c *Controller) Run(ctx context.Context) error {
	for c.state == domain.StateActive {
		line, err := c.opts.Prompter.ReadLine(ctx, config.PromptUser)
		if err != nil {
			return c.interrupted(ctx, err)
		}

		_, err = c.turn(ctx, line)
		switch {
		case err == nil:
		case isInterrupt(ctx, err):
			return c.interrupted(ctx, err)
		case errors.Is(err, middleware.ErrTurnPanicked):
			c.notifyError(ctx, err, "turn")
			c.opts.Prompter.Say(config.MsgTurnFailed)
		default:
			slog.Error("turn failed", "chat_id", c.session.ID, "error", err)
			c.opts.Prompter.Say(config.MsgTurnFailed)
		}
	}

	if c.state == domain.StateCollectingFeedback {
		if err := c.CollectFeedback(ctx); err != nil {
			return c.interrupted(ctx, err)
		}
	}
	if c.state != domain.StateEnded {
		c.finish(ctx, config.MsgGoodbye)
	}
	return nil
}

// HandleTurn processes one line in the ACTIVE state. Empty input is ignored.
// Backend failures are answered with the fallback reply and do not fail the
// turn; only a context error is returned.
func (c *Controller) HandleTurn(ctx context.Context, text string) (domain.State, error) {
	if c.state != domain.StateActive {
		return c.state, domain.ErrSessionEnded
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return c.state, nil
	}

	at := c.opts.Now()
	reply, err := c.opts.Model.Send(ctx, c.session, text)
	if err != nil {
		if ctx.Err() != nil {
			return c.state, ctx.Err()
		}
		slog.Warn("backend reply fell back",
			"chat_id", c.session.ID,
			"kind", domain.ClassifyError(err).String(),
			"attempts", reply.Attempts,
			"error", err,
		)
		c.notifyError(ctx, err, "chat turn")
	}

	// Nothing from this turn is persisted until the exit decision is known.
	decision, err := c.opts.Exit.Decide(ctx, text, reply)
	if err != nil {
		return c.state, err
	}

	c.record(ctx, domain.RoleUser, text, at)
	if signal, ok := feedback.ForTurn(text, reply); ok {
		c.saveFeedback(ctx, domain.FeedbackRecord{
			ChatID:    c.session.ID,
			Review:    signal.Review,
			Rating:    signal.Rating,
			Source:    signal.Source,
			CreatedAt: at,
		})
	}
	if decision.Exit {
		slog.Info("exit intent detected",
			"chat_id", c.session.ID,
			"source", decision.Source,
			"confidence", decision.Confidence,
		)
		c.state = domain.StateCollectingFeedback
		return c.state, nil
	}

	c.record(ctx, domain.RoleBot, reply.Text, c.opts.Now())
	c.opts.Prompter.Say(config.BotPrefix + reply.Text)
	return c.state, nil
}

// CollectFeedback runs the single feedback exchange and ends the session.
// An empty review skips feedback; a rating found in the review is used
// without asking.
func (c *Controller) CollectFeedback(ctx context.Context) error {
	if c.state != domain.StateCollectingFeedback {
		return fmt.Errorf("collect feedback in state %s", c.state)
	}
	p := c.opts.Prompter
	p.Say(config.MsgFeedbackIntro)

	review, err := p.ReadLine(ctx, config.PromptReview)
	if err != nil {
		return err
	}
	review = strings.TrimSpace(review)
	if review == "" {
		p.Say(config.MsgFeedbackSkipped)
		c.finish(ctx, config.MsgGoodbye)
		return nil
	}

	rating := feedback.ExtractReview(review).Rating
	if !rating.Valid() {
		rating, err = c.askRating(ctx)
		if err != nil {
			return err
		}
	}

	c.saveFeedback(ctx, domain.FeedbackRecord{
		ChatID:    c.session.ID,
		Review:    review,
		Rating:    rating,
		Source:    domain.SourceInteractive,
		CreatedAt: c.opts.Now(),
	})
	p.Say(config.MsgFeedbackThanks)
	c.finish(ctx, config.MsgGoodbye)
	return nil
}

func (c *Controller) askRating(ctx context.Context) (domain.Rating, error) {
	p := c.opts.Prompter
	for attempt := 1; attempt <= config.MaxRatingAttempts; attempt++ {
		line, err := p.ReadLine(ctx, config.PromptRating)
		if err != nil {
			return domain.NoRating, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return domain.NoRating, nil
		}
		rating, err := parseRating(line)
		if err == nil {
			return rating, nil
		}
		slog.Debug("invalid rating entered", "attempt", attempt, "error", err)
		p.Say(config.MsgInvalidRating)
	}
	p.Say(config.MsgNoRating)
	return domain.NoRating, nil
}

func parseRating(s string) (domain.Rating, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return domain.NoRating, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidRating, s)
	}
	return domain.NewRating(n)
}

func (c *Controller) record(ctx context.Context, role domain.Role, text string, at time.Time) {
	turn, err := c.session.Record(role, text, at)
	if err != nil {
		slog.Warn("turn not recorded", "chat_id", c.session.ID, "error", err)
		return
	}
	if c.opts.History == nil {
		return
	}
	if err := c.opts.History.AppendTurn(ctx, c.session.ID, turn); err != nil {
		slog.Error("failed to save turn", "chat_id", c.session.ID, "role", role, "error", err)
		c.notifyError(ctx, err, "save turn")
	}
}

func (c *Controller) saveFeedback(ctx context.Context, rec domain.FeedbackRecord) {
	slog.Info("feedback captured",
		"chat_id", rec.ChatID,
		"rating", int(rec.Rating),
		"source", rec.Source,
	)
	if c.opts.Feedback != nil {
		if err := c.opts.Feedback.AppendFeedback(ctx, rec); err != nil {
			slog.Error("failed to save feedback", "chat_id", rec.ChatID, "error", err)
			c.notifyError(ctx, err, "save feedback")
			return
		}
	}
	if c.opts.Notifier != nil {
		c.opts.Notifier.NotifyFeedback(ctx, rec)
	}
}

func (c *Controller) interrupted(ctx context.Context, err error) error {
	if !isInterrupt(ctx, err) {
		c.finish(ctx, config.MsgInterrupted)
		return fmt.Errorf("read input: %w", err)
	}
	slog.Info("session interrupted", "chat_id", c.session.ID, "state", c.state, "reason", err)
	c.finish(ctx, config.MsgInterrupted)
	return nil
}

// finish moves to ENDED and prints the one closing message.
func (c *Controller) finish(ctx context.Context, msg string) {
	if c.state == domain.StateEnded {
		return
	}
	c.state = domain.StateEnded
	c.session.End(c.opts.Now())

	var summary string
	if u, ok := c.opts.Model.(usageReporter); ok {
		summary = u.Usage().String()
	}
	if c.opts.ShowCost && summary != "" {
		msg += "\nSession usage: " + summary
	}
	c.opts.Prompter.Say(msg)

	slog.Info("session ended",
		"chat_id", c.session.ID,
		"turns", len(c.session.Transcript),
		"duration", c.session.EndedAt.Sub(c.session.StartedAt),
		"usage", summary,
	)
	if c.opts.Notifier != nil {
		c.opts.Notifier.NotifySessionClosed(ctx, c.session, summary)
	}
}

func (c *Controller) notifyError(ctx context.Context, err error, where string) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.NotifyError(ctx, err, where)
	}
}

func isInterrupt(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
