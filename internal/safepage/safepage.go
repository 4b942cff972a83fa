// Package safepage оборачивает страницу браузера и добавляет самовосстановление
// селекторов: если элемент не найден за таймаут, снимок разметки уходит в LLM,
// а действие повторяется один раз с предложенным селектором.
package safepage

import (
	"context"
	"time"

	"selfHealing/internal/browser"
	"selfHealing/internal/repair"

	"go.uber.org/zap"
)

const (
	DefaultDOMLimit = 2000
	DefaultTimeout  = 30 * time.Second
)

// Repairer предлагает замену для селектора, который не удалось найти.
// *repair.Service удовлетворяет этому интерфейсу.
type Repairer interface {
	ProposeLocator(ctx context.Context, fc repair.FailureContext) (string, error)
}

type Config struct {
	DOMLimit       int           // максимум символов разметки для LLM, по умолчанию 2000
	DefaultTimeout time.Duration // таймаут действия, если не задан в опциях, по умолчанию 30s
	Logger         *zap.Logger

	// OnHeal вызывается после успешного повтора с новым селектором
	OnHeal func(HealEvent)
}

// HealEvent - запись об успешном восстановлении.
type HealEvent struct {
	Action   string
	Original string
	Healed   string
}

// Page не владеет страницей браузера: ее создает и закрывает вызывающий.
type Page struct {
	page     browser.Page
	repairer Repairer
	cfg      Config
	log      *zap.Logger
}

func New(page browser.Page, repairer Repairer, cfg Config) *Page {
	if cfg.DOMLimit <= 0 {
		cfg.DOMLimit = DefaultDOMLimit
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Page{
		page:     page,
		repairer: repairer,
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// Click кликает по элементу с самовосстановлением селектора.
func (p *Page) Click(ctx context.Context, selector string, opts ...browser.ClickOptions) error {
	var o browser.ClickOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout <= 0 {
		o.Timeout = p.cfg.DefaultTimeout
	}

	_, err := p.Perform(ctx, "click", selector, func(ctx context.Context, selector string) error {
		return p.page.Click(ctx, selector, o)
	})
	return err
}

// Fill заполняет поле ввода с самовосстановлением селектора.
func (p *Page) Fill(ctx context.Context, selector, value string, opts ...browser.FillOptions) error {
	var o browser.FillOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout <= 0 {
		o.Timeout = p.cfg.DefaultTimeout
	}

	_, err := p.Perform(ctx, "fill", selector, func(ctx context.Context, selector string) error {
		return p.page.Fill(ctx, selector, value, o)
	})
	return err
}

// Операции ниже передаются странице без самовосстановления.

func (p *Page) Goto(ctx context.Context, url string, opts ...browser.NavigateOptions) error {
	var o browser.NavigateOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return p.page.Goto(ctx, url, o)
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, opts ...browser.WaitOptions) error {
	var o browser.WaitOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return p.page.WaitForSelector(ctx, selector, o)
}

func (p *Page) Locator(selector string) browser.Locator {
	return p.page.Locator(selector)
}

func (p *Page) URL() string {
	return p.page.URL()
}

func (p *Page) Screenshot(ctx context.Context, opts ...browser.ScreenshotOptions) ([]byte, error) {
	var o browser.ScreenshotOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	return p.page.Screenshot(ctx, o)
}

func (p *Page) Close() error {
	return p.page.Close()
}
