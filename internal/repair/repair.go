// Package repair запрашивает у LLM исправленный селектор для элемента,
// который не удалось найти на странице.
package repair

import (
	"context"
	"errors"
	"strings"

	"selfHealing/internal/llm"
	"selfHealing/internal/sanitizer"

	"go.uber.org/zap"
)

var errEmptySelector = errors.New("модель вернула пустой селектор")

// FailureContext - данные об одном неудачном поиске элемента.
type FailureContext struct {
	Locator string // исходный селектор
	Markup  string // ограниченный снимок разметки
	Error   string // текст ошибки движка
}

type Service struct {
	completer llm.Completer
	settings  Settings
	sanitizer *sanitizer.DataSanitizer
	log       *zap.Logger
}

// New разрешает конфигурацию и создает клиент. Ошибка конфигурации
// возвращается сразу, без обращения к сети.
func New(opts Options) (*Service, error) {
	settings, err := ResolveOptions(opts)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	completer := opts.Completer
	if completer == nil {
		completer = llm.NewAzureClient(llm.Config{
			Endpoint:          settings.Endpoint,
			APIKey:            settings.APIKey,
			APIVersion:        settings.APIVersion,
			Timeout:           settings.Timeout,
			RequestsPerMinute: opts.RequestsPerMinute,
			TokensPerHour:     opts.TokensPerHour,
			Logger:            log,
		})
	}

	s := &Service{
		completer: completer,
		settings:  settings,
		log:       log,
	}
	if opts.Redact {
		s.sanitizer = sanitizer.New()
	}

	return s, nil
}

func (s *Service) Settings() Settings {
	return s.settings
}

// ProposeLocator возвращает один селектор-кандидат. Повторов внутри нет:
// одна ошибка запроса - одна неудачная попытка восстановления.
func (s *Service) ProposeLocator(ctx context.Context, fc FailureContext) (string, error) {
	if s.sanitizer != nil {
		fc.Markup = s.sanitizer.Sanitize(fc.Markup)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	raw, err := s.completer.Complete(ctx, llm.CompletionRequest{
		Model: s.settings.Deployment,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: userPrompt(fc)},
		},
		Temperature: s.settings.Temperature,
		MaxTokens:   s.settings.MaxTokens,
	})
	if err != nil {
		return "", &InvocationError{Err: err}
	}

	selector := CleanSelector(raw)
	if selector == "" {
		return "", &InvocationError{Err: errEmptySelector}
	}

	s.log.Debug("получен селектор от LLM",
		zap.String("original", fc.Locator),
		zap.String("suggested", selector),
	)

	return selector, nil
}

// CleanSelector обрезает пробелы и один слой одинаковых кавычек (", ', `)
// по краям ответа модели.
func CleanSelector(raw string) string {
	s := strings.TrimSpace(raw)
	if len(s) < 2 {
		return s
	}

	first, last := s[0], s[len(s)-1]
	if first == last && strings.IndexByte("\"'`", first) >= 0 {
		return s[1 : len(s)-1]
	}
	return s
}
