package llm

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type Config struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Timeout    time.Duration

	// Лимиты запросов; 0 отключает ограничение
	RequestsPerMinute int
	TokensPerHour     int

	Logger *zap.Logger
}

type Client struct {
	client      *openai.Client
	rateLimiter *RateLimiter
	log         *zap.Logger
}

// NewAzureClient создает клиент Azure OpenAI. Имя модели в запросе передается
// как есть и используется как имя deployment.
func NewAzureClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		clientCfg.APIVersion = cfg.APIVersion
	}
	clientCfg.AzureModelMapperFunc = func(model string) string {
		return model
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c := &Client{
		client: openai.NewClientWithConfig(clientCfg),
		log:    cfg.Logger,
	}
	if cfg.RequestsPerMinute > 0 || cfg.TokensPerHour > 0 {
		c.rateLimiter = NewRateLimiter(cfg.RequestsPerMinute, cfg.TokensPerHour)
	}

	return c
}

func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	temperature := req.Temperature
	if temperature == 0 {
		// go-openai отбрасывает нулевую температуру (omitempty)
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.createChatCompletionWithRateLimit(ctx, openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка запроса к OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := resp.Choices[0].Message.Content
	c.log.Debug("LLM запрос выполнен",
		zap.String("model", req.Model),
		zap.Int("tokens", resp.Usage.TotalTokens),
		zap.Int("response_len", len(content)),
	)

	return content, nil
}

// createChatCompletionWithRateLimit выполняет запрос с проверкой rate limit
func (c *Client) createChatCompletionWithRateLimit(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if c.rateLimiter == nil {
		return c.client.CreateChatCompletion(ctx, req)
	}

	if err := c.rateLimiter.AllowRequest(); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	// Грубая оценка: ~4 символа на токен плюс бюджет ответа
	estimatedTokens := req.MaxTokens
	for _, msg := range req.Messages {
		estimatedTokens += len(msg.Content) / 4
	}

	if err := c.rateLimiter.AllowTokens(estimatedTokens); err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return resp, err
	}

	if resp.Usage.TotalTokens > estimatedTokens {
		c.rateLimiter.ConsumeTokens(resp.Usage.TotalTokens - estimatedTokens)
	}

	return resp, nil
}
