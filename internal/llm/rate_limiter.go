package llm

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrRateLimited возвращается до отправки запроса, если локальный лимит исчерпан.
var ErrRateLimited = errors.New("превышен лимит запросов к LLM")

// RateLimiter реализует token bucket для запросов в минуту и токенов в час.
// Нулевой лимит отключает соответствующую проверку.
type RateLimiter struct {
	requestsPerMinute int
	tokensPerHour     int

	mu               sync.Mutex
	requestTokens    float64
	requestLastCheck time.Time
	tokenBudget      float64
	tokenLastCheck   time.Time

	now func() time.Time
}

func NewRateLimiter(requestsPerMinute, tokensPerHour int) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		requestsPerMinute: requestsPerMinute,
		tokensPerHour:     tokensPerHour,
		requestTokens:     float64(requestsPerMinute),
		requestLastCheck:  now,
		tokenBudget:       float64(tokensPerHour),
		tokenLastCheck:    now,
		now:               time.Now,
	}
}

func (rl *RateLimiter) refill() {
	now := rl.now()

	if elapsed := now.Sub(rl.requestLastCheck); rl.requestsPerMinute > 0 && elapsed > 0 {
		rl.requestTokens += elapsed.Minutes() * float64(rl.requestsPerMinute)
		if rl.requestTokens > float64(rl.requestsPerMinute) {
			rl.requestTokens = float64(rl.requestsPerMinute)
		}
	}
	rl.requestLastCheck = now

	if elapsed := now.Sub(rl.tokenLastCheck); rl.tokensPerHour > 0 && elapsed > 0 {
		rl.tokenBudget += elapsed.Hours() * float64(rl.tokensPerHour)
		if rl.tokenBudget > float64(rl.tokensPerHour) {
			rl.tokenBudget = float64(rl.tokensPerHour)
		}
	}
	rl.tokenLastCheck = now
}

// AllowRequest списывает один запрос или возвращает ErrRateLimited.
func (rl *RateLimiter) AllowRequest() error {
	if rl.requestsPerMinute <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.requestTokens < 1 {
		return fmt.Errorf("%w: %d RPM, повторите через %v",
			ErrRateLimited, rl.requestsPerMinute, time.Minute/time.Duration(rl.requestsPerMinute))
	}

	rl.requestTokens--
	return nil
}

// AllowTokens резервирует оценку токенов запроса.
func (rl *RateLimiter) AllowTokens(tokens int) error {
	if rl.tokensPerHour <= 0 {
		return nil
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokenBudget < float64(tokens) {
		return fmt.Errorf("%w: %d TPH, требуется %d, доступно %d",
			ErrRateLimited, rl.tokensPerHour, tokens, int(rl.tokenBudget))
	}

	rl.tokenBudget -= float64(tokens)
	return nil
}

// ConsumeTokens списывает токены сверх оценки после успешного запроса
func (rl *RateLimiter) ConsumeTokens(tokens int) {
	if rl.tokensPerHour <= 0 {
		return
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokenBudget -= float64(tokens)
	if rl.tokenBudget < 0 {
		rl.tokenBudget = 0
	}
}

// Stats возвращает текущие остатки лимитов.
func (rl *RateLimiter) Stats() (requestsAvailable int, tokensAvailable int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	return int(rl.requestTokens), int(rl.tokenBudget)
}
