package playwright_adapter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	"github.com/playwright-community/playwright-go"
)

type page struct {
	page      playwright.Page
	closeOnce sync.Once
	responses atomic.Uint64
}

type response struct {
	seq  uint64
	resp playwright.Response
}

func (r response) Seq() uint64 { return r.seq }

func (r response) URL() string { return r.resp.URL() }

func (r response) Body() (string, error) { return r.resp.Text() }

// OnResponse вызывает обработчик в отдельной горутине: чтение тела
// внутри события драйвера блокирует его цикл обработки сообщений.
// Номер присваивается синхронно, в порядке событий.
func (p *page) OnResponse(handler port.ResponseHandler) {
	p.page.OnResponse(func(r playwright.Response) {
		resp := response{seq: p.responses.Add(1), resp: r}
		go handler(resp)
	})
}

func (p *page) Navigate(ctx context.Context, url string, opts port.NavigateOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	gotoOpts := playwright.PageGotoOptions{WaitUntil: waitUntilState(opts.WaitUntil)}
	if opts.Timeout > 0 {
		gotoOpts.Timeout = playwright.Float(float64(opts.Timeout.Milliseconds()))
	}
	if _, err := p.page.Goto(url, gotoOpts); err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s: %v", domain.ErrNavigationTimeout, url, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

func waitUntilState(w port.WaitUntil) *playwright.WaitUntilState {
	switch w {
	case port.WaitLoad:
		return playwright.WaitUntilStateLoad
	case port.WaitNetworkIdle:
		return playwright.WaitUntilStateNetworkidle
	default:
		return playwright.WaitUntilStateDomcontentloaded
	}
}

func isTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout)
}

func (p *page) URL() string { return p.page.URL() }

func (p *page) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.page.Title()
}

func (p *page) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *page) PressKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.page.Keyboard().Press(key)
}

func (p *page) Locate(ctx context.Context, selector string) ([]port.Element, error) {
	return elementsOf(ctx, p.page.Locator(selector))
}

func (p *page) LocateByPlaceholder(ctx context.Context, pattern *regexp.Regexp) ([]port.Element, error) {
	return elementsOf(ctx, p.page.GetByPlaceholder(pattern))
}

func (p *page) LocateByRole(ctx context.Context, role string, name *regexp.Regexp) ([]port.Element, error) {
	opts := playwright.PageGetByRoleOptions{}
	if name != nil {
		opts.Name = name
	}
	return elementsOf(ctx, p.page.GetByRole(playwright.AriaRole(role), opts))
}

func (p *page) DOM(ctx context.Context) (port.DOM, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &liveDOM{page: p.page}, nil
}

func (p *page) Close() {
	p.closeOnce.Do(func() {
		_ = p.page.Close()
	})
}

func elementsOf(ctx context.Context, loc playwright.Locator) ([]port.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all, err := loc.All()
	if err != nil {
		return nil, err
	}
	out := make([]port.Element, 0, len(all))
	for _, l := range all {
		out = append(out, &element{loc: l})
	}
	return out, nil
}

type element struct {
	loc playwright.Locator
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return e.loc.TextContent()
}

func (e *element) Fill(ctx context.Context, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Fill(value)
}

func (e *element) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return e.loc.Press(key)
}

func (e *element) WaitFor(ctx context.Context, state port.ElementState, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := playwright.WaitForSelectorStateAttached
	if state == port.StateVisible {
		s = playwright.WaitForSelectorStateVisible
	}
	opts := playwright.LocatorWaitForOptions{State: s}
	if timeout > 0 {
		opts.Timeout = playwright.Float(float64(timeout.Milliseconds()))
	}
	return e.loc.WaitFor(opts)
}

func (e *element) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return e.loc.IsVisible()
}
