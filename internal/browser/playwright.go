package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightPage адаптирует playwright.Page к интерфейсу Page.
type PlaywrightPage struct {
	page playwright.Page
}

func NewPlaywrightPage(page playwright.Page) *PlaywrightPage {
	return &PlaywrightPage{page: page}
}

// Raw возвращает исходную страницу playwright для операций вне фасада.
func (p *PlaywrightPage) Raw() playwright.Page {
	return p.page
}

func (p *PlaywrightPage) Click(ctx context.Context, selector string, opts ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pwOpts := playwright.PageClickOptions{}
	if opts.Timeout > 0 {
		pwOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}
	if opts.Button != "" {
		button := playwright.MouseButton(opts.Button)
		pwOpts.Button = &button
	}
	if opts.ClickCount > 0 {
		pwOpts.ClickCount = playwright.Int(opts.ClickCount)
	}
	if opts.Delay > 0 {
		pwOpts.Delay = playwright.Float(millis(opts.Delay))
	}
	if opts.Force {
		pwOpts.Force = playwright.Bool(true)
	}

	return classifyPlaywright(p.page.Click(selector, pwOpts))
}

func (p *PlaywrightPage) Fill(ctx context.Context, selector, value string, opts FillOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pwOpts := playwright.PageFillOptions{}
	if opts.Timeout > 0 {
		pwOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}
	if opts.Force {
		pwOpts.Force = playwright.Bool(true)
	}

	return classifyPlaywright(p.page.Fill(selector, value, pwOpts))
}

func (p *PlaywrightPage) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Content()
}

func (p *PlaywrightPage) Goto(ctx context.Context, url string, opts NavigateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pwOpts := playwright.PageGotoOptions{}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		pwOpts.WaitUntil = &waitUntil
	}
	if opts.Timeout > 0 {
		pwOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}
	if opts.Referer != "" {
		pwOpts.Referer = playwright.String(opts.Referer)
	}

	_, err := p.page.Goto(url, pwOpts)
	return err
}

func (p *PlaywrightPage) WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pwOpts := playwright.PageWaitForSelectorOptions{}
	if opts.State != "" {
		state := playwright.WaitForSelectorState(opts.State)
		pwOpts.State = &state
	}
	if opts.Timeout > 0 {
		pwOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}

	_, err := p.page.WaitForSelector(selector, pwOpts)
	return err
}

func (p *PlaywrightPage) Locator(selector string) Locator {
	return &playwrightLocator{locator: p.page.Locator(selector)}
}

func (p *PlaywrightPage) URL() string {
	return p.page.URL()
}

func (p *PlaywrightPage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pwOpts := playwright.PageScreenshotOptions{}
	if opts.Path != "" {
		pwOpts.Path = playwright.String(opts.Path)
	}
	if opts.FullPage {
		pwOpts.FullPage = playwright.Bool(true)
	}
	if opts.Timeout > 0 {
		pwOpts.Timeout = playwright.Float(millis(opts.Timeout))
	}

	return p.page.Screenshot(pwOpts)
}

func (p *PlaywrightPage) Close() error {
	return p.page.Close()
}

type playwrightLocator struct {
	locator playwright.Locator
}

func (l *playwrightLocator) Count() (int, error) {
	return l.locator.Count()
}

func (l *playwrightLocator) IsVisible() (bool, error) {
	return l.locator.IsVisible()
}

func (l *playwrightLocator) TextContent() (string, error) {
	return l.locator.TextContent()
}

// classifyPlaywright помечает TimeoutError движка как ErrElementNotFound,
// сохраняя исходное сообщение playwright.
func classifyPlaywright(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrElementNotFound, err)
	}
	return err
}
