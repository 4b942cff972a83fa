// Package browser описывает фасад над движком автоматизации страницы.
// Обертки над playwright-go и go-rod приводят ошибки движка к общему виду:
// ненайденный за таймаут элемент всегда оборачивает ErrElementNotFound.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrElementNotFound означает, что элемент не удалось найти за отведенный таймаут.
// Это единственный класс ошибок, на который реагирует самовосстановление.
var ErrElementNotFound = errors.New("element not found")

// Page - набор операций над страницей, который нужен safepage.
type Page interface {
	Click(ctx context.Context, selector string, opts ClickOptions) error
	Fill(ctx context.Context, selector, value string, opts FillOptions) error

	// Content возвращает полную сериализованную разметку страницы.
	Content(ctx context.Context) (string, error)

	Goto(ctx context.Context, url string, opts NavigateOptions) error
	WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error
	Locator(selector string) Locator
	URL() string
	Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error)
	Close() error
}

// Locator - ленивый указатель на элементы по селектору.
type Locator interface {
	Count() (int, error)
	IsVisible() (bool, error)
	TextContent() (string, error)
}

type ClickOptions struct {
	Timeout    time.Duration // 0 - таймаут движка по умолчанию
	Button     string        // left, right, middle
	ClickCount int
	Delay      time.Duration
	Force      bool
}

type FillOptions struct {
	Timeout time.Duration
	Force   bool
}

type NavigateOptions struct {
	// WaitUntil: load, domcontentloaded, networkidle, commit
	WaitUntil string
	Timeout   time.Duration
	Referer   string
}

type WaitOptions struct {
	// State: attached, detached, visible, hidden
	State   string
	Timeout time.Duration
}

type ScreenshotOptions struct {
	Path     string
	FullPage bool
	Timeout  time.Duration
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
