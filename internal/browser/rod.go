package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
)

// RodPage адаптирует *rod.Page к интерфейсу Page.
// У rod нет таймаута по умолчанию, поэтому он хранится в адаптере.
// ClickOptions.Delay не поддерживается.
type RodPage struct {
	page    *rod.Page
	timeout time.Duration
}

func NewRodPage(page *rod.Page, timeout time.Duration) *RodPage {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RodPage{page: page, timeout: timeout}
}

func (p *RodPage) Raw() *rod.Page {
	return p.page
}

func (p *RodPage) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = p.timeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (p *RodPage) Click(ctx context.Context, selector string, opts ClickOptions) error {
	tctx, cancel := p.withTimeout(ctx, opts.Timeout)
	defer cancel()

	el, err := p.page.Context(tctx).Element(selector)
	if err != nil {
		return classifyRod(ctx, err)
	}

	if opts.Force {
		_, err = el.Eval(`() => this.click()`)
		return classifyRod(ctx, err)
	}

	clickCount := opts.ClickCount
	if clickCount <= 0 {
		clickCount = 1
	}

	return classifyRod(ctx, el.Click(rodButton(opts.Button), clickCount))
}

func (p *RodPage) Fill(ctx context.Context, selector, value string, opts FillOptions) error {
	tctx, cancel := p.withTimeout(ctx, opts.Timeout)
	defer cancel()

	el, err := p.page.Context(tctx).Element(selector)
	if err != nil {
		return classifyRod(ctx, err)
	}

	// Input дописывает текст, поэтому сначала выделяем текущее значение
	if err := el.SelectAllText(); err != nil {
		return classifyRod(ctx, err)
	}

	return classifyRod(ctx, el.Input(value))
}

func (p *RodPage) Content(ctx context.Context) (string, error) {
	tctx, cancel := p.withTimeout(ctx, 0)
	defer cancel()

	return p.page.Context(tctx).HTML()
}

func (p *RodPage) Goto(ctx context.Context, url string, opts NavigateOptions) error {
	tctx, cancel := p.withTimeout(ctx, opts.Timeout)
	defer cancel()

	page := p.page.Context(tctx)
	if opts.Referer != "" {
		if _, err := (proto.PageNavigate{URL: url, Referrer: opts.Referer}).Call(page); err != nil {
			return err
		}
	} else if err := page.Navigate(url); err != nil {
		return err
	}

	switch opts.WaitUntil {
	case "commit":
		return nil
	case "networkidle":
		page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
		return nil
	case "domcontentloaded":
		return page.WaitDOMStable(300*time.Millisecond, 0)
	default:
		return page.WaitLoad()
	}
}

func (p *RodPage) WaitForSelector(ctx context.Context, selector string, opts WaitOptions) error {
	tctx, cancel := p.withTimeout(ctx, opts.Timeout)
	defer cancel()

	page := p.page.Context(tctx)

	switch opts.State {
	case "detached":
		for {
			has, _, err := page.Has(selector)
			if err != nil {
				return classifyRod(ctx, err)
			}
			if !has {
				return nil
			}
			select {
			case <-tctx.Done():
				return classifyRod(ctx, tctx.Err())
			case <-time.After(100 * time.Millisecond):
			}
		}
	case "hidden":
		has, el, err := page.Has(selector)
		if err != nil {
			return classifyRod(ctx, err)
		}
		if !has {
			return nil
		}
		return classifyRod(ctx, el.WaitInvisible())
	}

	el, err := page.Element(selector)
	if err != nil {
		return classifyRod(ctx, err)
	}
	if opts.State == "" || opts.State == "visible" {
		return classifyRod(ctx, el.WaitVisible())
	}
	return nil
}

func (p *RodPage) Locator(selector string) Locator {
	return &rodLocator{page: p.page, selector: selector}
}

func (p *RodPage) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *RodPage) Screenshot(ctx context.Context, opts ScreenshotOptions) ([]byte, error) {
	tctx, cancel := p.withTimeout(ctx, opts.Timeout)
	defer cancel()

	data, err := p.page.Context(tctx).Screenshot(opts.FullPage, nil)
	if err != nil {
		return nil, err
	}

	if opts.Path != "" {
		if err := utils.OutputFile(opts.Path, data); err != nil {
			return nil, fmt.Errorf("ошибка записи скриншота: %w", err)
		}
	}

	return data, nil
}

func (p *RodPage) Close() error {
	return p.page.Close()
}

type rodLocator struct {
	page     *rod.Page
	selector string
}

func (l *rodLocator) Count() (int, error) {
	els, err := l.page.Elements(l.selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (l *rodLocator) IsVisible() (bool, error) {
	has, el, err := l.page.Has(l.selector)
	if err != nil || !has {
		return false, err
	}
	return el.Visible()
}

func (l *rodLocator) TextContent() (string, error) {
	has, el, err := l.page.Has(l.selector)
	if err != nil {
		return "", err
	}
	if !has {
		return "", fmt.Errorf("%w: %s", ErrElementNotFound, l.selector)
	}
	return el.Text()
}

func rodButton(button string) proto.InputMouseButton {
	switch button {
	case "right":
		return proto.InputMouseButtonRight
	case "middle":
		return proto.InputMouseButtonMiddle
	default:
		return proto.InputMouseButtonLeft
	}
}

// classifyRod считает истечение таймаута действия ненайденным элементом.
// Если отменен сам вызывающий контекст, ошибка возвращается как есть.
func classifyRod(parent context.Context, err error) error {
	if err == nil {
		return nil
	}
	if parent.Err() != nil {
		return err
	}

	var notFound *rod.ElementNotFoundError
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", ErrElementNotFound, err)
	}
	return err
}
