package playwright_adapter

import (
	"context"
	"fmt"
	"sync"

	"bds-price-service/internal/configs"
	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	"github.com/playwright-community/playwright-go"
)

// Launcher запускает отдельный Chromium на каждую сессию
type Launcher struct {
	cfg configs.BrowserConfig
}

func NewLauncher(cfg configs.BrowserConfig) *Launcher {
	return &Launcher{cfg: cfg}
}

// Open поднимает драйвер, браузер и контекст. При ошибке на любом шаге
// уже созданные ресурсы освобождаются.
func (l *Launcher) Open(ctx context.Context) (port.BrowserSession, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PlaywrightLauncher"})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run(&playwright.RunOptions{Verbose: false})
	if err != nil {
		return nil, fmt.Errorf("%w: could not start playwright: %v", domain.ErrSessionInit, err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Headless),
		Args:     l.cfg.LaunchArgs(),
		Timeout:  playwright.Float(float64(l.cfg.LaunchTimeout.Milliseconds())),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: could not launch chromium: %v", domain.ErrSessionInit, err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(l.cfg.UserAgent),
		Viewport: &playwright.Size{
			Width:  l.cfg.ViewportWidth,
			Height: l.cfg.ViewportHeight,
		},
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("%w: could not create browser context: %v", domain.ErrSessionInit, err)
	}

	logger.Debug("Browser session opened", port.Fields{
		"headless":        l.cfg.Headless,
		"deployment_mode": l.cfg.DeploymentMode,
	})

	return &session{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		cfg:     l.cfg,
		logger:  logger,
	}, nil
}

type session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	cfg     configs.BrowserConfig
	logger  port.LoggerPort

	mu     sync.Mutex
	pages  []*page
	closed bool
}

func (s *session) NewPage(ctx context.Context) (port.BrowserPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("%w: session already closed", domain.ErrSessionInit)
	}

	p, err := s.context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: could not open page: %v", domain.ErrSessionInit, err)
	}
	p.SetDefaultTimeout(float64(s.cfg.NavigationTimeout.Milliseconds()))

	pg := &page{page: p}
	s.pages = append(s.pages, pg)
	return pg, nil
}

// Close закрывает страницы, контекст, браузер и драйвер именно в этом порядке.
// Ошибки закрытия только логируются.
func (s *session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	pages := s.pages
	s.pages = nil
	s.mu.Unlock()

	for _, p := range pages {
		p.Close()
	}
	if err := s.context.Close(); err != nil {
		s.logger.Warn("Failed to close browser context", port.Fields{"error": err.Error()})
	}
	if err := s.browser.Close(); err != nil {
		s.logger.Warn("Failed to close browser", port.Fields{"error": err.Error()})
	}
	if err := s.pw.Stop(); err != nil {
		s.logger.Warn("Failed to stop playwright", port.Fields{"error": err.Error()})
	}
	s.logger.Debug("Browser session closed", nil)
}
