package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

// Sender is the part of *bot.Bot the notifier needs.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type Topic string

const (
	TopicError         Topic = "error"
	TopicFeedback      Topic = "feedback"
	TopicSessionClosed Topic = "sessionClosed"
)

// Notifier posts feedback records, errors and session summaries into the
// topics of a Telegram forum chat. A topic with id 0 is not posted to.
type Notifier struct {
	sender Sender
	chatID int64
	topics map[Topic]int
	now    func() time.Time
}

func NewNotifier(sender Sender, cfg *config.Config) *Notifier {
	return &Notifier{
		sender: sender,
		chatID: cfg.LogTelegramChatID,
		topics: map[Topic]int{
			TopicError:         cfg.LogTopicError,
			TopicFeedback:      cfg.LogTopicFeedback,
			TopicSessionClosed: cfg.LogTopicSessionClosed,
		},
		now: time.Now,
	}
}

// NewBotNotifier connects to the Bot API with the configured token.
func NewBotNotifier(cfg *config.Config) (*Notifier, error) {
	b, err := bot.New(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return NewNotifier(b, cfg), nil
}

func (n *Notifier) Post(ctx context.Context, topic Topic, message string) {
	if n.chatID == 0 {
		return
	}
	topicID := n.topics[topic]
	if topicID == 0 {
		return
	}

	// Notifications still go out while the session is shutting down.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), config.NotifyTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:          n.chatID,
		Text:            Truncate(message, MaxMessageLen),
		ParseMode:       models.ParseModeMarkdownV1,
		MessageThreadID: topicID,
	}
	if _, err := n.sender.SendMessage(ctx, params); err != nil {
		slog.Warn("markdown notification failed, falling back to plain text", "topic", topic, "error", err)
		params.ParseMode = ""
		if _, err := n.sender.SendMessage(ctx, params); err != nil {
			slog.Error("failed to send telegram notification", "topic", topic, "error", err)
		}
	}
}

func (n *Notifier) NotifyFeedback(ctx context.Context, rec domain.FeedbackRecord) {
	msg := fmt.Sprintf("⭐ *Feedback*\n\n*Chat:* `%s`\n*Rating:* %s\n*Source:* %s\n*Review:* %s",
		rec.ChatID, rec.Rating, rec.Source, EscapeMarkdown(rec.Review))
	n.Post(ctx, TopicFeedback, msg)
}

func (n *Notifier) NotifyError(ctx context.Context, err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Kind:* %s\n*Error:* %s\n*Time:* %s",
		EscapeMarkdown(where), domain.ClassifyError(err), EscapeMarkdown(err.Error()),
		n.now().Format("2006-01-02 15:04:05"))
	n.Post(ctx, TopicError, msg)
}

func (n *Notifier) NotifySessionClosed(ctx context.Context, s *domain.ChatSession, summary string) {
	msg := fmt.Sprintf("👋 *Session closed*\n\n*Chat:* `%s`\n*Turns:* %d\n*Duration:* %s",
		s.ID, len(s.Transcript), s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	if summary != "" {
		msg += "\n*Usage:* " + EscapeMarkdown(summary)
	}
	n.Post(ctx, TopicSessionClosed, msg)
}
