package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/playwright-community/playwright-go"
)

type Engine string

const (
	EnginePlaywright Engine = "playwright"
	EngineRod        Engine = "rod"
)

type Config struct {
	Engine       Engine
	Headless     bool
	UserDataDir  string
	BrowsersPath string
	Display      string
	Timeout      time.Duration
	Stealth      bool // только для rod
}

// Session владеет запущенным браузером. Страница Page отдается вызывающему,
// закрывать ее или весь браузер через Close - его ответственность.
type Session struct {
	Page Page

	cfg Config
	mu  sync.Mutex

	pw         *playwright.Playwright
	pwBrowser  playwright.Browser
	pwContext  playwright.BrowserContext
	rodBrowser *rod.Browser
	rodLaunch  *launcher.Launcher
}

func Launch(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Engine == "" {
		cfg.Engine = EnginePlaywright
	}

	s := &Session{cfg: cfg}

	var err error
	switch cfg.Engine {
	case EnginePlaywright:
		err = s.launchPlaywright()
	case EngineRod:
		err = s.launchRod(ctx)
	default:
		return nil, fmt.Errorf("неизвестный движок браузера: %q", cfg.Engine)
	}

	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) browserArgs() []string {
	return []string{
		"--no-sandbox",
	}
}

func (s *Session) envMap() map[string]string {
	if s.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": s.cfg.Display,
		}
	}
	return nil
}

func (s *Session) launchPlaywright() error {
	if s.cfg.BrowsersPath != "" {
		if err := os.Setenv("PLAYWRIGHT_BROWSERS_PATH", s.cfg.BrowsersPath); err != nil {
			return err
		}
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("ошибка запуска playwright: %w", err)
	}
	s.pw = pw

	var page playwright.Page
	if s.cfg.UserDataDir != "" {
		page, err = s.launchPersistent(pw)
	} else {
		page, err = s.launchStandard(pw)
	}
	if err != nil {
		return err
	}

	page.SetDefaultTimeout(millis(s.cfg.Timeout))
	s.Page = NewPlaywrightPage(page)
	return nil
}

func (s *Session) launchPersistent(pw *playwright.Playwright) (playwright.Page, error) {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args:     s.browserArgs(),
	}
	if env := s.envMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := pw.Firefox.LaunchPersistentContext(s.cfg.UserDataDir, opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pwContext = browserContext
	s.mu.Unlock()

	if pages := browserContext.Pages(); len(pages) > 0 {
		return pages[0], nil
	}
	return browserContext.NewPage()
}

func (s *Session) launchStandard(pw *playwright.Playwright) (playwright.Page, error) {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(s.cfg.Headless),
		Args:     s.browserArgs(),
	}
	if env := s.envMap(); env != nil {
		opts.Env = env
	}

	br, err := pw.Firefox.Launch(opts)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pwBrowser = br
	s.mu.Unlock()

	return br.NewPage()
}

func (s *Session) launchRod(ctx context.Context) error {
	l := launcher.New().Context(ctx).Headless(s.cfg.Headless).NoSandbox(true)
	if s.cfg.UserDataDir != "" {
		l = l.UserDataDir(s.cfg.UserDataDir)
	}
	if s.cfg.Display != "" {
		l = l.Env(append(os.Environ(), "DISPLAY="+s.cfg.Display)...)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("ошибка запуска chrome: %w", err)
	}

	s.mu.Lock()
	s.rodLaunch = l
	s.mu.Unlock()

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("ошибка подключения к chrome: %w", err)
	}

	s.mu.Lock()
	s.rodBrowser = b
	s.mu.Unlock()

	var page *rod.Page
	if s.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return fmt.Errorf("ошибка создания вкладки: %w", err)
	}

	s.Page = NewRodPage(page, s.cfg.Timeout)
	return nil
}

// Close закрывает все ресурсы сессии, даже если часть из них закрылась с ошибкой.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error

	if s.pwContext != nil {
		errs = append(errs, s.pwContext.Close())
		s.pwContext = nil
	}
	if s.pwBrowser != nil {
		errs = append(errs, s.pwBrowser.Close())
		s.pwBrowser = nil
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
		s.pw = nil
	}

	if s.rodBrowser != nil {
		errs = append(errs, s.rodBrowser.Close())
		s.rodBrowser = nil
	}
	if s.rodLaunch != nil {
		s.rodLaunch.Cleanup()
		s.rodLaunch = nil
	}

	return errors.Join(errs...)
}
