package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/set-night/chatfeedback/internal/config"
	"github.com/set-night/chatfeedback/internal/domain"
)

// Backend sends one chat-completions request.
type Backend interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type OpenRouterService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *ModelsCache
}

func NewOpenRouterService(apiKey, baseURL string) (*OpenRouterService, error) {
	if err := config.ValidateAPIKey(apiKey); err != nil {
		return nil, err
	}
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	return &OpenRouterService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: config.RequestTimeout},
		cache:      NewModelsCache(config.ModelCacheDuration),
	}, nil
}

type ChatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	Tools       []Tool        `json:"tools,omitempty"`
	ToolChoice  interface{}   `json:"tool_choice,omitempty"`
}

type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

type ToolFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type ChatChoice struct {
	Message struct {
		Content   string     `json:"content"`
		ToolCalls []ToolCall `json:"tool_calls"`
	} `json:"message"`
	FinishReason       string `json:"finish_reason"`
	NativeFinishReason string `json:"native_finish_reason"`
}

type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
	Usage struct {
		PromptTokens     int     `json:"prompt_tokens"`
		CompletionTokens int     `json:"completion_tokens"`
		TotalCost        float64 `json:"total_cost"`
		Cost             float64 `json:"cost"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string      `json:"message"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

func (s *OpenRouterService) ListModels(ctx context.Context) ([]domain.AIModel, error) {
	if cached := s.cache.Get(); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var result struct {
		Data []struct {
			ID      string `json:"id"`
			Name    string `json:"name"`
			Pricing struct {
				Prompt     string `json:"prompt"`
				Completion string `json:"completion"`
			} `json:"pricing"`
			ContextLength int `json:"context_length"`
			TopProvider   struct {
				ContextLength int `json:"context_length"`
			} `json:"top_provider"`
		} `json:"data"`
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse models: %w", err)
	}

	models := make([]domain.AIModel, 0, len(result.Data))
	for _, m := range result.Data {
		var promptPrice, completionPrice float64
		fmt.Sscanf(m.Pricing.Prompt, "%f", &promptPrice)
		fmt.Sscanf(m.Pricing.Completion, "%f", &completionPrice)

		// Prices from OpenRouter are per token, convert to per 1M tokens
		promptPrice *= 1_000_000
		completionPrice *= 1_000_000

		ctxLen := m.ContextLength
		if m.TopProvider.ContextLength > 0 {
			ctxLen = m.TopProvider.ContextLength
		}

		models = append(models, domain.AIModel{
			ID:              m.ID,
			Name:            m.Name,
			PromptPrice:     promptPrice,
			CompletionPrice: completionPrice,
			ContextLength:   ctxLen,
		})
	}

	s.cache.Set(models)
	return models, nil
}

func (s *OpenRouterService) GetModel(ctx context.Context, modelID string) (*domain.AIModel, error) {
	if _, err := s.ListModels(ctx); err != nil {
		return nil, err
	}
	m, ok := s.cache.Find(modelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, modelID)
	}
	return &m, nil
}

func (s *OpenRouterService) Chat(ctx context.Context, chatReq ChatRequest) (*ChatResponse, error) {
	payload, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return nil, domain.ErrEmptyResponse
	}

	choice := chatResp.Choices[0]
	if isSafetyFinish(choice.FinishReason) || isSafetyFinish(choice.NativeFinishReason) {
		if strings.TrimSpace(choice.Message.Content) == "" && len(choice.Message.ToolCalls) == 0 {
			return nil, fmt.Errorf("%w: finish reason %s", domain.ErrContentPolicy, choice.FinishReason)
		}
	}

	return &chatResp, nil
}

func isSafetyFinish(reason string) bool {
	switch strings.ToLower(reason) {
	case "content_filter", "safety", "blocklist", "prohibited_content":
		return true
	}
	return false
}

// statusError maps a non-200 response onto the backend error taxonomy.
func statusError(status int, body []byte) error {
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable,
		http.StatusGatewayTimeout, http.StatusRequestTimeout:
		return fmt.Errorf("%w: openrouter %d: %s", domain.ErrTransient, status, msg)
	case http.StatusBadRequest, http.StatusForbidden:
		lower := strings.ToLower(msg)
		if strings.Contains(lower, "moderation") || strings.Contains(lower, "flagged") ||
			strings.Contains(lower, "safety") || strings.Contains(lower, "content policy") {
			return fmt.Errorf("%w: openrouter %d: %s", domain.ErrContentPolicy, status, msg)
		}
	}
	return fmt.Errorf("openrouter %d: %s", status, msg)
}
