// Package llm - тонкая обертка над OpenAI-совместимым API (в т.ч. Azure OpenAI).
// Наружу отдается только Completer: один запрос, один текстовый ответ.
package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrEmptyResponse возвращается, если сервис ответил без вариантов.
var ErrEmptyResponse = errors.New("пустой ответ от LLM")

type Message struct {
	Role    string
	Content string
}

// CompletionRequest - запрос к модели. Model для Azure - имя deployment.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// Completer выполняет один запрос к модели и возвращает текст первого варианта.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
