package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

type stubExitRemote struct {
	calls []domain.StructuredCall
	err   error
	texts []string
}

func (s *stubExitRemote) ClassifyExit(_ context.Context, text string) ([]domain.StructuredCall, error) {
	s.texts = append(s.texts, text)
	return s.calls, s.err
}

// The classifier trusts the backend first and falls back to the phrase list
// only when the backend cannot answer. These cases pin that order.
func TestExitClassifier_Precedence(t *testing.T) {
	yes := []domain.StructuredCall{domain.ExitIntentCall{IsExitIntent: true, Confidence: 0.9}}
	no := []domain.StructuredCall{domain.ExitIntentCall{IsExitIntent: false, Confidence: 0.2}}

	cases := []struct {
		name         string
		text         string
		reply        domain.Reply
		remote       *stubExitRemote
		want         ExitDecision
		remoteCalled bool
	}{
		{
			name:   "embedded call wins over remote and phrases",
			text:   "bye",
			reply:  domain.Reply{Calls: no},
			remote: &stubExitRemote{calls: yes},
			want:   ExitDecision{Exit: false, Confidence: 0.2, Source: ExitSourceEmbedded},
		},
		{
			name:         "dedicated request when no embedded call",
			text:         "I think we're done here",
			remote:       &stubExitRemote{calls: yes},
			want:         ExitDecision{Exit: true, Confidence: 0.9, Source: ExitSourceRemote},
			remoteCalled: true,
		},
		{
			name:         "remote no overrides a matching phrase",
			text:         "don't stop now",
			remote:       &stubExitRemote{calls: no},
			want:         ExitDecision{Exit: false, Confidence: 0.2, Source: ExitSourceRemote},
			remoteCalled: true,
		},
		{
			name:         "remote error falls back to phrases",
			text:         "ok bye",
			remote:       &stubExitRemote{err: domain.ErrTransient},
			want:         ExitDecision{Exit: true, Source: ExitSourceLocal},
			remoteCalled: true,
		},
		{
			name:         "remote without usable call falls back to phrases",
			text:         "tell me a joke",
			remote:       &stubExitRemote{calls: []domain.StructuredCall{domain.FeedbackCall{IsFeedback: true}}},
			want:         ExitDecision{Exit: false, Source: ExitSourceLocal},
			remoteCalled: true,
		},
		{
			name:   "fallback reply skips the dedicated request",
			text:   "goodbye",
			reply:  domain.Reply{Fallback: true},
			remote: &stubExitRemote{calls: no},
			want:   ExitDecision{Exit: true, Source: ExitSourceLocal},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewExitClassifier(tc.remote, config.ExitPhrases)
			got, err := c.Decide(context.Background(), tc.text, tc.reply)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.remoteCalled, len(tc.remote.texts) > 0)
		})
	}
}

func TestExitClassifier_IsExit(t *testing.T) {
	remote := &stubExitRemote{calls: []domain.StructuredCall{domain.ExitIntentCall{IsExitIntent: true}}}
	c := NewExitClassifier(remote, config.ExitPhrases)
	assert.True(t, c.IsExit(context.Background(), "I need to go now"))
	assert.Equal(t, []string{"I need to go now"}, remote.texts)
}

func TestExitClassifier_CancelledContext(t *testing.T) {
	c := NewExitClassifier(&stubExitRemote{err: context.Canceled}, config.ExitPhrases)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Decide(ctx, "bye", domain.Reply{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExitClassifier_MatchesPhrase(t *testing.T) {
	c := NewExitClassifier(nil, config.ExitPhrases)
	for _, text := range []string{
		"bye", "exit", "end chat", "quit", "goodbye",
		"i want to leave", "stop", "end", "close", "OK BYE!",
	} {
		assert.True(t, c.MatchesPhrase(text), text)
	}
	for _, text := range []string{
		"hello", "how are you?", "tell me a joke",
		"what's the weather", "thanks for the help",
		"my friend", "a stopwatch", "the weekend", "closet",
	} {
		assert.False(t, c.MatchesPhrase(text), text)
	}
}
