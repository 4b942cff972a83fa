package repair

import (
	"os"
	"strconv"
	"strings"
	"time"

	"selfHealing/internal/llm"

	"go.uber.org/zap"
)

// Переменные окружения, из которых берутся незаданные явно параметры.
const (
	EnvEndpoint    = "AZURE_OPENAI_ENDPOINT"
	EnvAPIKey      = "AZURE_OPENAI_API_KEY"
	EnvDeployment  = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion  = "AZURE_OPENAI_API_VERSION"
	EnvTemperature = "AZURE_OPENAI_TEMPERATURE"
	EnvMaxTokens   = "AZURE_OPENAI_MAX_TOKENS"
	EnvTimeout     = "AZURE_OPENAI_TIMEOUT"
)

const (
	DefaultAPIVersion          = "2024-02-15-preview"
	DefaultTemperature float32 = 0.2
	DefaultMaxTokens           = 500
	DefaultTimeout             = 60 * time.Second
)

// Options - параметры конструктора Service. Пустое поле берется из
// переменной окружения, затем из значения по умолчанию.
type Options struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string

	// nil - взять из окружения или DefaultTemperature; 0 допустим
	Temperature *float32
	MaxTokens   int
	// Ограничение на один запрос к модели
	Timeout time.Duration

	// Локальный rate limit клиента, 0 - без ограничений
	RequestsPerMinute int
	TokensPerHour     int

	// Redact маскирует пароли, токены и email в разметке перед отправкой
	Redact bool

	// Completer подменяет клиент Azure OpenAI (тесты, другие провайдеры)
	Completer llm.Completer
	Logger    *zap.Logger

	// LookupEnv по умолчанию os.LookupEnv
	LookupEnv func(key string) (string, bool)
}

// Settings - итоговая конфигурация после разрешения Options.
type Settings struct {
	Endpoint    string
	APIKey      string
	APIVersion  string
	Deployment  string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// Temperature - хелпер для Options.Temperature.
func Temperature(v float32) *float32 {
	return &v
}

// ResolveOptions разрешает конфигурацию один раз: явное значение, иначе
// переменная окружения, иначе значение по умолчанию. Отсутствие endpoint,
// ключа или deployment - ConfigurationError.
func ResolveOptions(opts Options) (Settings, error) {
	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}

	env := func(key string) string {
		v, ok := lookup(key)
		if !ok {
			return ""
		}
		return strings.TrimSpace(v)
	}

	s := Settings{
		Endpoint:   firstNonEmpty(opts.Endpoint, env(EnvEndpoint)),
		APIKey:     firstNonEmpty(opts.APIKey, env(EnvAPIKey)),
		Deployment: firstNonEmpty(opts.Deployment, env(EnvDeployment)),
		APIVersion: firstNonEmpty(opts.APIVersion, env(EnvAPIVersion), DefaultAPIVersion),
	}

	if s.Endpoint == "" {
		return Settings{}, &ConfigurationError{Field: "endpoint", EnvVar: EnvEndpoint}
	}
	if s.APIKey == "" {
		return Settings{}, &ConfigurationError{Field: "api key", EnvVar: EnvAPIKey}
	}
	if s.Deployment == "" {
		return Settings{}, &ConfigurationError{Field: "deployment", EnvVar: EnvDeployment}
	}

	switch {
	case opts.Temperature != nil:
		s.Temperature = *opts.Temperature
	case env(EnvTemperature) != "":
		v, err := strconv.ParseFloat(env(EnvTemperature), 32)
		if err != nil {
			return Settings{}, &ConfigurationError{Field: "temperature", EnvVar: EnvTemperature, Err: err}
		}
		s.Temperature = float32(v)
	default:
		s.Temperature = DefaultTemperature
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		return Settings{}, &ConfigurationError{Field: "temperature", EnvVar: EnvTemperature, Reason: "ожидается значение от 0 до 2"}
	}

	switch {
	case opts.MaxTokens > 0:
		s.MaxTokens = opts.MaxTokens
	case env(EnvMaxTokens) != "":
		v, err := strconv.Atoi(env(EnvMaxTokens))
		if err != nil {
			return Settings{}, &ConfigurationError{Field: "max tokens", EnvVar: EnvMaxTokens, Err: err}
		}
		if v <= 0 {
			return Settings{}, &ConfigurationError{Field: "max tokens", EnvVar: EnvMaxTokens, Reason: "ожидается положительное число"}
		}
		s.MaxTokens = v
	default:
		s.MaxTokens = DefaultMaxTokens
	}

	switch {
	case opts.Timeout > 0:
		s.Timeout = opts.Timeout
	case env(EnvTimeout) != "":
		v, err := time.ParseDuration(env(EnvTimeout))
		if err != nil {
			return Settings{}, &ConfigurationError{Field: "timeout", EnvVar: EnvTimeout, Err: err}
		}
		if v <= 0 {
			return Settings{}, &ConfigurationError{Field: "timeout", EnvVar: EnvTimeout, Reason: "таймаут должен быть положительным"}
		}
		s.Timeout = v
	default:
		s.Timeout = DefaultTimeout
	}

	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
