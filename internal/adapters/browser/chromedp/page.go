package chromedp_adapter

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"bds-price-service/internal/adapters/browser/htmldom"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

type page struct {
	tabCtx         context.Context
	cancelTab      context.CancelFunc
	defaultTimeout time.Duration

	mu         sync.Mutex
	currentURL string
	pending    map[network.RequestID]pendingResponse
	responses  uint64
	closeOnce  sync.Once
}

// pendingResponse - ответ получен, тело еще грузится
type pendingResponse struct {
	seq uint64
	url string
}

func newPage(tabCtx context.Context, cancelTab context.CancelFunc, defaultTimeout time.Duration) *page {
	return &page{
		tabCtx:         tabCtx,
		cancelTab:      cancelTab,
		defaultTimeout: defaultTimeout,
		pending:        make(map[network.RequestID]pendingResponse),
	}
}

func enableNetwork() chromedp.Action {
	return network.Enable()
}

// run выполняет действия во вкладке. Отмена ctx прерывает только
// текущий вызов, вкладка остается жива.
func (p *page) run(ctx context.Context, actions ...chromedp.Action) error {
	return p.runWithTimeout(ctx, p.defaultTimeout, actions...)
}

func (p *page) runWithTimeout(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

type response struct {
	seq  uint64
	url  string
	body func() (string, error)
}

func (r response) Seq() uint64 { return r.seq }

func (r response) URL() string { return r.url }

func (r response) Body() (string, error) { return r.body() }

// OnResponse сообщает об ответе после загрузки его тела.
// Номер присваивается при получении ответа, до загрузки тела.
// Тело запрашивается по CDP только если обработчик его читает.
func (p *page) OnResponse(handler port.ResponseHandler) {
	chromedp.ListenTarget(p.tabCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			p.mu.Lock()
			p.responses++
			p.pending[e.RequestID] = pendingResponse{seq: p.responses, url: e.Response.URL}
			p.mu.Unlock()
		case *network.EventLoadingFailed:
			p.mu.Lock()
			delete(p.pending, e.RequestID)
			p.mu.Unlock()
		case *network.EventLoadingFinished:
			p.mu.Lock()
			pending, ok := p.pending[e.RequestID]
			delete(p.pending, e.RequestID)
			p.mu.Unlock()
			if !ok {
				return
			}
			requestID := e.RequestID
			// внутри слушателя нельзя выполнять CDP-команды
			go handler(response{seq: pending.seq, url: pending.url, body: func() (string, error) {
				var body []byte
				err := p.run(context.Background(), chromedp.ActionFunc(func(ctx context.Context) error {
					var err error
					body, err = network.GetResponseBody(requestID).Do(ctx)
					return err
				}))
				return string(body), err
			}})
		}
	})
}

// Navigate ждет события load независимо от opts.WaitUntil: chromedp
// не различает domcontentloaded и load
func (p *page) Navigate(ctx context.Context, url string, opts port.NavigateOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = p.defaultTimeout
	}
	var location string
	err := p.runWithTimeout(ctx, timeout, chromedp.Navigate(url), chromedp.Location(&location))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrNavigationTimeout, url, err)
		}
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	p.mu.Lock()
	p.currentURL = location
	p.mu.Unlock()
	return nil
}

// URL обновляется при каждом вызове, так как поиск на сайте
// меняет адрес без навигации
func (p *page) URL() string {
	var location string
	if err := p.run(context.Background(), chromedp.Location(&location)); err == nil {
		p.mu.Lock()
		p.currentURL = location
		p.mu.Unlock()
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentURL
}

func (p *page) Title(ctx context.Context) (string, error) {
	var title string
	if err := p.run(ctx, chromedp.Title(&title)); err != nil {
		return "", err
	}
	return title, nil
}

func (p *page) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.tabCtx.Done():
		return p.tabCtx.Err()
	case <-timer.C:
		return nil
	}
}

// PressKey отправляет клавишу в окно страницы, а не конкретному узлу
func (p *page) PressKey(ctx context.Context, key string) error {
	code, ok := keyCodes[key]
	if !ok {
		code = key
	}
	return p.run(ctx, chromedp.KeyEvent(code))
}

func (p *page) Locate(ctx context.Context, selector string) ([]port.Element, error) {
	nodes, err := p.nodes(ctx, selector)
	if err != nil {
		return nil, err
	}
	return p.elements(nodes), nil
}

func (p *page) LocateByPlaceholder(ctx context.Context, pattern *regexp.Regexp) ([]port.Element, error) {
	nodes, err := p.nodes(ctx, "input[placeholder], textarea[placeholder]")
	if err != nil {
		return nil, err
	}
	return p.elements(filterByPlaceholder(nodes, pattern)), nil
}

func (p *page) LocateByRole(ctx context.Context, role string, name *regexp.Regexp) ([]port.Element, error) {
	selector, ok := roleSelectors[role]
	if !ok {
		selector = fmt.Sprintf(`[role=%q]`, role)
	}
	nodes, err := p.nodes(ctx, selector)
	if err != nil {
		return nil, err
	}
	return p.elements(filterByAccessibleName(nodes, name)), nil
}

// DOM снимает HTML страницы и разбирает его в goquery-документ
func (p *page) DOM(ctx context.Context) (port.DOM, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("could not snapshot page html: %w", err)
	}
	doc, err := htmldom.NewDocumentFromString(html)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (p *page) Close() {
	p.closeOnce.Do(func() {
		_ = chromedp.Cancel(p.tabCtx)
		p.cancelTab()
	})
}

func (p *page) nodes(ctx context.Context, selector string) ([]*cdp.Node, error) {
	var nodes []*cdp.Node
	err := p.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

func (p *page) elements(nodes []*cdp.Node) []port.Element {
	out := make([]port.Element, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &element{page: p, node: n})
	}
	return out
}
