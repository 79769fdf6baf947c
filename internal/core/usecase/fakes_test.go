package usecase_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"time"

	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
)

// recorder собирает вызовы фейков в одном порядке
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type fakeResponse struct {
	seq  uint64
	url  string
	body string
}

func (f fakeResponse) Seq() uint64           { return f.seq }
func (f fakeResponse) URL() string           { return f.url }
func (f fakeResponse) Body() (string, error) { return f.body, nil }

type fakeElement struct {
	page      *fakePage
	visible   bool
	attachErr error
	// поле пропадает из DOM после первого Enter
	detachOnSubmit bool
}

func (e *fakeElement) Text(ctx context.Context) (string, error) { return "", nil }

func (e *fakeElement) Fill(ctx context.Context, value string) error {
	e.page.rec.add("fill:" + value)
	return nil
}

func (e *fakeElement) Press(ctx context.Context, key string) error {
	if e.detachOnSubmit && e.page.enters > 0 {
		return errors.New("element is not attached to the DOM")
	}
	e.page.rec.add("press:" + key)
	e.page.pressed(key)
	return nil
}

func (e *fakeElement) WaitFor(ctx context.Context, state port.ElementState, timeout time.Duration) error {
	return e.attachErr
}

func (e *fakeElement) IsVisible(ctx context.Context) (bool, error) { return e.visible, nil }

type fakePage struct {
	rec *recorder

	bySelector    map[string][]port.Element
	byPlaceholder []port.Element
	byRole        []port.Element

	entryResponses []fakeResponse
	urlAfterSearch string
	navErrors      map[string]error
	doms           map[string]port.DOM
	panicOnURL     bool

	handler     port.ResponseHandler
	current     string
	enters      int
	seq         uint64
	navTimeouts map[string]time.Duration
}

func newFakePage(rec *recorder) *fakePage {
	return &fakePage{
		rec:         rec,
		bySelector:  map[string][]port.Element{},
		navErrors:   map[string]error{},
		doms:        map[string]port.DOM{},
		navTimeouts: map[string]time.Duration{},
	}
}

// Второй Enter принимает подсказку и переводит страницу на объект
func (p *fakePage) pressed(key string) {
	if key == "Enter" {
		p.enters++
		if p.enters == 2 {
			p.current = p.urlAfterSearch
		}
	}
}

func (p *fakePage) input(visible bool) *fakeElement {
	return &fakeElement{page: p, visible: visible}
}

func (p *fakePage) OnResponse(handler port.ResponseHandler) {
	p.rec.add("page.on_response")
	p.handler = handler
}

// Navigate отдает ответы синхронно, чтобы буфер был заполнен к извлечению
func (p *fakePage) Navigate(ctx context.Context, url string, opts port.NavigateOptions) error {
	p.rec.add("navigate:" + url)
	p.navTimeouts[url] = opts.Timeout
	if err := p.navErrors[url]; err != nil {
		return err
	}
	p.current = url
	if p.handler != nil && p.enters == 0 {
		for _, r := range p.entryResponses {
			p.seq++
			r.seq = p.seq
			p.handler(r)
		}
	}
	return nil
}

func (p *fakePage) URL() string {
	if p.panicOnURL {
		panic("page crashed")
	}
	return p.current
}

func (p *fakePage) Title(ctx context.Context) (string, error) { return "제목", nil }

func (p *fakePage) Wait(ctx context.Context, d time.Duration) error { return ctx.Err() }

func (p *fakePage) PressKey(ctx context.Context, key string) error {
	p.rec.add("key:" + key)
	p.pressed(key)
	return nil
}

func (p *fakePage) Locate(ctx context.Context, selector string) ([]port.Element, error) {
	return p.bySelector[selector], nil
}

func (p *fakePage) LocateByPlaceholder(ctx context.Context, pattern *regexp.Regexp) ([]port.Element, error) {
	p.rec.add("locate:placeholder")
	return p.byPlaceholder, nil
}

func (p *fakePage) LocateByRole(ctx context.Context, role string, name *regexp.Regexp) ([]port.Element, error) {
	p.rec.add("locate:role:" + role)
	return p.byRole, nil
}

func (p *fakePage) DOM(ctx context.Context) (port.DOM, error) {
	if dom, ok := p.doms[p.current]; ok {
		return dom, nil
	}
	return nil, errors.New("no dom for " + p.current)
}

func (p *fakePage) Close() { p.rec.add("page.close") }

type fakeSession struct {
	rec     *recorder
	page    *fakePage
	pageErr error
}

func (s *fakeSession) NewPage(ctx context.Context) (port.BrowserPage, error) {
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	s.rec.add("session.new_page")
	return s.page, nil
}

func (s *fakeSession) Close() { s.rec.add("session.close") }

type fakeLauncher struct {
	session *fakeSession
	err     error
	opened  int
}

func (l *fakeLauncher) Open(ctx context.Context) (port.BrowserSession, error) {
	l.opened++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

type fakeEvents struct {
	events chan domain.LookupEvent
	err    error
}

func (f *fakeEvents) PublishLookup(ctx context.Context, event domain.LookupEvent) error {
	f.events <- event
	return f.err
}

type fakeProbe struct {
	gotURL string
	result *domain.SiteProbe
	err    error
}

func (f *fakeProbe) Probe(ctx context.Context, url string) (*domain.SiteProbe, error) {
	f.gotURL = url
	return f.result, f.err
}
