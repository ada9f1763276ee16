package domain

import "errors"

var ErrModelNotFound = errors.New("model not found")

type AIModel struct {
	ID              string
	Name            string
	PromptPrice     float64 // per 1M tokens
	CompletionPrice float64 // per 1M tokens
	ContextLength   int
}

func (m *AIModel) IsFree() bool {
	return m.PromptPrice == 0 && m.CompletionPrice == 0
}
