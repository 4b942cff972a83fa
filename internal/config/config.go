package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Cfg struct {
	Logger  Logger
	Azure   Azure
	Browser Browser
	Healing Healing
	Demo    Demo
}

type Logger struct {
	Env   string
	Level string
	File  string
}

// Azure - параметры клиента. Пустые значения repair.New берет из тех же
// переменных окружения сам, здесь они читаются для явной передачи.
type Azure struct {
	Endpoint          string
	APIKey            string
	Deployment        string
	APIVersion        string
	RequestsPerMinute int
	TokensPerHour     int
	Redact            bool
}

type Browser struct {
	Engine       string
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Display      string
	Timeout      time.Duration
	Stealth      bool
}

type Healing struct {
	DOMLimit int
	Timeout  time.Duration
}

type Demo struct {
	URL      string
	Selector string
	Fill     string
	Value    string
}

func Load() (*Cfg, error) {
	_ = godotenv.Load()

	cfg := &Cfg{
		Logger: Logger{
			Env:   env("ENV", "dev"),
			Level: env("LOG_LEVEL", "info"),
			File:  env("LOG_FILE", ""),
		},
		Azure: Azure{
			Endpoint:          os.Getenv("AZURE_OPENAI_ENDPOINT"),
			APIKey:            os.Getenv("AZURE_OPENAI_API_KEY"),
			Deployment:        os.Getenv("AZURE_OPENAI_DEPLOYMENT"),
			APIVersion:        os.Getenv("AZURE_OPENAI_API_VERSION"),
			RequestsPerMinute: envInt("HEAL_REQUESTS_PER_MINUTE", 0),
			TokensPerHour:     envInt("HEAL_TOKENS_PER_HOUR", 0),
			Redact:            envBool("HEAL_REDACT"),
		},
		Browser: Browser{
			Engine:       env("BROWSER_ENGINE", "playwright"),
			Headless:     envBool("PW_HEADLESS"),
			UserDataDir:  env("PW_USER_DATA_DIR", ""),
			BrowsersPath: env("PLAYWRIGHT_BROWSERS_PATH", ""),
			Display:      env("DISPLAY", ""),
			Timeout:      envDuration("BROWSER_TIMEOUT", 30*time.Second),
			Stealth:      envBool("ROD_STEALTH"),
		},
		Healing: Healing{
			DOMLimit: envInt("HEAL_DOM_LIMIT", 2000),
			Timeout:  envDuration("HEAL_ACTION_TIMEOUT", 30*time.Second),
		},
		Demo: Demo{
			URL:      env("HEAL_DEMO_URL", "https://example.com"),
			Selector: os.Getenv("HEAL_DEMO_SELECTOR"),
			Fill:     os.Getenv("HEAL_DEMO_FILL"),
			Value:    os.Getenv("HEAL_DEMO_VALUE"),
		},
	}

	return cfg, nil
}

func env(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func envInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "true" || v == "1" || v == "yes"
}

// envDuration принимает "45s", "2m" или число секунд.
func envDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}
