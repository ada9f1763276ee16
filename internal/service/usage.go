package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/set-night/chatfeedback/internal/domain"
)

// Usage accumulates tokens and cost over a session.
type Usage struct {
	Requests         int
	PromptTokens     int
	CompletionTokens int
	Cost             decimal.Decimal
}

// Add records one response. The backend-reported cost is used when present,
// otherwise the cost is derived from pricing, if known.
func (u *Usage) Add(resp *ChatResponse, pricing *domain.AIModel) {
	if resp == nil {
		return
	}
	u.Requests++
	u.PromptTokens += resp.Usage.PromptTokens
	u.CompletionTokens += resp.Usage.CompletionTokens

	switch {
	case resp.Usage.TotalCost > 0:
		u.Cost = u.Cost.Add(decimal.NewFromFloat(resp.Usage.TotalCost))
	case resp.Usage.Cost > 0:
		u.Cost = u.Cost.Add(decimal.NewFromFloat(resp.Usage.Cost))
	case pricing != nil && !pricing.IsFree():
		u.Cost = u.Cost.Add(CalculateCost(resp.Usage.PromptTokens, resp.Usage.CompletionTokens,
			pricing.PromptPrice, pricing.CompletionPrice))
	}
}

func (u Usage) String() string {
	return fmt.Sprintf("%d requests, tokens %d→%d, cost $%s",
		u.Requests, u.PromptTokens, u.CompletionTokens, u.Cost.StringFixed(6))
}

// CalculateCost prices a request from per-1M-token prices.
func CalculateCost(promptTokens, completionTokens int, promptPrice, completionPrice float64) decimal.Decimal {
	promptCost := decimal.NewFromFloat(float64(promptTokens) * promptPrice / 1_000_000)
	completionCost := decimal.NewFromFloat(float64(completionTokens) * completionPrice / 1_000_000)
	return promptCost.Add(completionCost)
}
