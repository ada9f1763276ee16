package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

type fakeSender struct {
	sent     []bot.SendMessageParams
	failures int
}

func (f *fakeSender) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.sent = append(f.sent, *params)
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("Bad Request: can't parse entities")
	}
	return &models.Message{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		LogTelegramChatID:     -100123,
		LogTopicError:         7,
		LogTopicFeedback:      8,
		LogTopicSessionClosed: 0,
	}
}

func TestNotifier_Feedback(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, testConfig())

	n.NotifyFeedback(context.Background(), domain.FeedbackRecord{
		ChatID: "abc", Review: "great_bot *really*", Rating: 5, Source: domain.SourceLocal,
	})

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, 8, msg.MessageThreadID)
	assert.Equal(t, models.ParseModeMarkdownV1, msg.ParseMode)
	assert.Contains(t, msg.Text, `great\_bot \*really\*`)
	assert.Contains(t, msg.Text, "5/5")
}

func TestNotifier_FallsBackToPlainText(t *testing.T) {
	sender := &fakeSender{failures: 1}
	n := NewNotifier(sender, testConfig())

	n.NotifyError(context.Background(), domain.ErrTransient, "chat turn")

	require.Len(t, sender.sent, 2)
	assert.Equal(t, 7, sender.sent[1].MessageThreadID)
	assert.Empty(t, string(sender.sent[1].ParseMode))
}

func TestNotifier_SkipsUnconfiguredTopic(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, testConfig())

	s := &domain.ChatSession{ID: "abc", StartedAt: time.Now()}
	s.End(s.StartedAt.Add(time.Minute))
	n.NotifySessionClosed(context.Background(), s, "")

	assert.Empty(t, sender.sent)
}

func TestNotifier_SendsAfterCancel(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n.NotifyError(ctx, context.Canceled, "read input")
	assert.Len(t, sender.sent, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))

	long := strings.Repeat("я", MaxMessageLen+10)
	got := Truncate(long, MaxMessageLen)
	assert.Equal(t, MaxMessageLen, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "(truncated)"))
}
