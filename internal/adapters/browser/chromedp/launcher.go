package chromedp_adapter

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"bds-price-service/internal/configs"
	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	"github.com/chromedp/chromedp"
)

// Launcher открывает Chromium через CDP, один процесс на сессию
type Launcher struct {
	cfg configs.BrowserConfig
}

func NewLauncher(cfg configs.BrowserConfig) *Launcher {
	return &Launcher{cfg: cfg}
}

// allocatorOptions переводит флаги вида --name[=value] в опции аллокатора
func allocatorOptions(cfg configs.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	for _, arg := range cfg.LaunchArgs() {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if hasValue {
			opts = append(opts, chromedp.Flag(name, value))
		} else {
			opts = append(opts, chromedp.Flag(name, true))
		}
	}
	return opts
}

func (l *Launcher) Open(ctx context.Context) (port.BrowserSession, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "ChromedpLauncher"})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocatorOptions(l.cfg)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Первый Run запускает процесс браузера и живет на browserCtx
	err := startTarget(ctx, browserCtx, l.cfg.LaunchTimeout, func(target context.Context) error {
		return chromedp.Run(target)
	})
	if err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("%w: could not launch chromium: %v", domain.ErrSessionInit, err)
	}

	logger.Debug("Browser session opened", port.Fields{
		"headless":        l.cfg.Headless,
		"deployment_mode": l.cfg.DeploymentMode,
	})

	return &session{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		cfg:           l.cfg,
		logger:        logger,
	}, nil
}

type session struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	cfg           configs.BrowserConfig
	logger        port.LoggerPort

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

	tabCtx, cancelTab := chromedp.NewContext(s.browserCtx)
	p := newPage(tabCtx, cancelTab, s.cfg.NavigationTimeout)
	// Первый Run создает вкладку, ее цикл сообщений живет на tabCtx
	err := startTarget(ctx, tabCtx, s.cfg.NavigationTimeout, func(target context.Context) error {
		return chromedp.Run(target, enableNetwork())
	})
	if err != nil {
		cancelTab()
		return nil, fmt.Errorf("%w: could not open tab: %v", domain.ErrSessionInit, err)
	}
	s.pages = append(s.pages, p)
	return p, nil
}

// startTarget выполняет первый Run прямо на долгоживущем контексте target:
// chromedp запускает на нем цикл сообщений браузера или вкладки, и любой
// производный контекст с таймаутом остановил бы этот цикл после возврата.
// Ожидание ограничивается таймером и ctx, сам target при этом не отменяется.
func startTarget(ctx, target context.Context, timeout time.Duration, run func(context.Context) error) error {
	started := make(chan error, 1)
	go func() { started <- run(target) }()

	var timerC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	select {
	case err := <-started:
		return err
	case <-timerC:
		return fmt.Errorf("start timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close закрывает вкладки, затем браузер и аллокатор
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
	if err := chromedp.Cancel(s.browserCtx); err != nil {
		s.logger.Warn("Failed to close browser gracefully", port.Fields{"error": err.Error()})
	}
	s.cancelBrowser()
	s.cancelAlloc()
	s.logger.Debug("Browser session closed", nil)
}
