package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"selfHealing/internal/browser"
	"selfHealing/internal/config"
	"selfHealing/internal/logger"
	"selfHealing/internal/repair"
	"selfHealing/internal/safepage"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.Logger.Env, cfg.Logger.Level, cfg.Logger.File)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Пример завершился с ошибкой", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Cfg, log *logger.Zap) error {
	service, err := repair.New(repair.Options{
		Endpoint:          cfg.Azure.Endpoint,
		APIKey:            cfg.Azure.APIKey,
		Deployment:        cfg.Azure.Deployment,
		APIVersion:        cfg.Azure.APIVersion,
		RequestsPerMinute: cfg.Azure.RequestsPerMinute,
		TokensPerHour:     cfg.Azure.TokensPerHour,
		Redact:            cfg.Azure.Redact,
		Logger:            log.Logger,
	})
	if err != nil {
		return err
	}

	settings := service.Settings()
	log.Info("Сервис восстановления селекторов готов",
		zap.String("deployment", settings.Deployment),
		zap.String("api_version", settings.APIVersion),
	)

	session, err := browser.Launch(ctx, browser.Config{
		Engine:       browser.Engine(cfg.Browser.Engine),
		Headless:     cfg.Browser.Headless,
		UserDataDir:  cfg.Browser.UserDataDir,
		BrowsersPath: cfg.Browser.BrowsersPath,
		Display:      cfg.Browser.Display,
		Timeout:      cfg.Browser.Timeout,
		Stealth:      cfg.Browser.Stealth,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("Ошибка закрытия браузера", zap.Error(err))
		}
	}()

	healed := 0
	page := safepage.New(session.Page, service, safepage.Config{
		DOMLimit:       cfg.Healing.DOMLimit,
		DefaultTimeout: cfg.Healing.Timeout,
		Logger:         log.Logger,
		OnHeal: func(e safepage.HealEvent) {
			healed++
		},
	})

	log.Info("Переход на страницу", zap.String("url", cfg.Demo.URL))
	if err := page.Goto(ctx, cfg.Demo.URL, browser.NavigateOptions{WaitUntil: "domcontentloaded"}); err != nil {
		return err
	}

	if cfg.Demo.Selector != "" {
		if err := page.Click(ctx, cfg.Demo.Selector); err != nil {
			return report(log, err)
		}
		log.Info("Клик выполнен", zap.String("selector", cfg.Demo.Selector))
	}

	if cfg.Demo.Fill != "" {
		if err := page.Fill(ctx, cfg.Demo.Fill, cfg.Demo.Value); err != nil {
			return report(log, err)
		}
		log.Info("Поле заполнено", zap.String("selector", cfg.Demo.Fill))
	}

	log.Info("Готово", zap.String("url", page.URL()), zap.Int("healed", healed))
	return nil
}

func report(log *logger.Zap, err error) error {
	var healErr *safepage.HealingError
	if errors.As(err, &healErr) {
		log.Error("Самовосстановление не помогло",
			zap.String("stage", string(healErr.Stage)),
			zap.String("original", healErr.Original),
			zap.String("healed", healErr.Healed),
		)
	}
	return err
}
