package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *OpenRouterService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	s, err := NewOpenRouterService("sk-test-key-0123456789", srv.URL)
	require.NoError(t, err)
	return s
}

func TestNewOpenRouterService_RequiresCredential(t *testing.T) {
	_, err := NewOpenRouterService("", "")
	assert.ErrorIs(t, err, config.ErrMissingCredential)
	_, err = NewOpenRouterService(config.PlaceholderAPIKey, "")
	assert.ErrorIs(t, err, config.ErrPlaceholderCredential)
}

func TestOpenRouterService_Chat(t *testing.T) {
	var got ChatRequest
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test-key-0123456789", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"choices": [{
				"message": {
					"content": "See you!",
					"tool_calls": [{
						"id": "call_1",
						"type": "function",
						"function": {"name": "detect_exit_intent", "arguments": "{\"is_exit_intent\": true, \"confidence\": 0.9}"}
					}]
				},
				"finish_reason": "tool_calls"
			}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "cost": 0.0001}
		}`)
	})

	resp, err := s.Chat(context.Background(), ChatRequest{
		Model:    "test/model",
		Messages: []ChatMessage{{Role: "user", Content: "bye"}},
		Tools:    []Tool{DetectExitIntentTool},
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, "See you!", resp.Choices[0].Message.Content)

	calls := ParseCalls(resp.Choices[0].Message.ToolCalls)
	assert.Equal(t, []domain.StructuredCall{domain.ExitIntentCall{IsExitIntent: true, Confidence: 0.9}}, calls)

	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, domain.CallDetectExitIntent, got.Tools[0].Function.Name)
	assert.Equal(t, []interface{}{"is_exit_intent"}, got.Tools[0].Function.Parameters["required"])
}

func TestOpenRouterService_Chat_Errors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{"error":{"message":"slow down"}}`, want: domain.ErrTransient},
		{name: "unavailable", status: http.StatusServiceUnavailable, body: ``, want: domain.ErrTransient},
		{name: "moderation", status: http.StatusForbidden, body: `{"error":{"message":"Input was flagged by moderation"}}`, want: domain.ErrContentPolicy},
		{name: "safety finish", status: http.StatusOK, body: `{"choices":[{"message":{"content":""},"finish_reason":"content_filter"}]}`, want: domain.ErrContentPolicy},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: domain.ErrEmptyResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			_, err := s.Chat(context.Background(), ChatRequest{Model: "m"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestOpenRouterService_Chat_OtherStatusIsNotTransient(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"error":{"message":"No auth credentials found"}}`)
	})
	_, err := s.Chat(context.Background(), ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, domain.KindOther, domain.ClassifyError(err))
	assert.Contains(t, err.Error(), "No auth credentials found")
}

func TestOpenRouterService_ConnectionRefusedIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	s, err := NewOpenRouterService("sk-test-key-0123456789", url)
	require.NoError(t, err)
	_, err = s.Chat(context.Background(), ChatRequest{Model: "m"})
	require.Error(t, err)
	assert.Equal(t, domain.KindTransient, domain.ClassifyError(err))
}

func TestOpenRouterService_GetModel(t *testing.T) {
	var hits atomic.Int32
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/models", r.URL.Path)
		io.WriteString(w, `{"data":[
			{"id":"paid/model","name":"Paid","pricing":{"prompt":"0.000002","completion":"0.000004"},"context_length":8000},
			{"id":"free/model","name":"Free","pricing":{"prompt":"0","completion":"0"},"context_length":4000,"top_provider":{"context_length":16000}}
		]}`)
	})

	m, err := s.GetModel(context.Background(), "paid/model")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, m.PromptPrice, 1e-9)
	assert.InDelta(t, 4.0, m.CompletionPrice, 1e-9)
	assert.False(t, m.IsFree())

	m, err = s.GetModel(context.Background(), "free/model")
	require.NoError(t, err)
	assert.True(t, m.IsFree())
	assert.Equal(t, 16000, m.ContextLength)

	_, err = s.GetModel(context.Background(), "missing/model")
	assert.ErrorIs(t, err, domain.ErrModelNotFound)
	assert.Equal(t, int32(1), hits.Load(), "catalog is cached")
}
