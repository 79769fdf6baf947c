package port

import (
	"context"
	"regexp"
	"time"
)

// WaitUntil - событие загрузки, которого ждет навигация
type WaitUntil string

const (
	WaitDOMContentLoaded WaitUntil = "domcontentloaded"
	WaitLoad             WaitUntil = "load"
	WaitNetworkIdle      WaitUntil = "networkidle"
)

// ElementState - состояние элемента для WaitFor
type ElementState string

const (
	StateAttached ElementState = "attached"
	StateVisible  ElementState = "visible"
)

// NavigateOptions - параметры одной навигации
type NavigateOptions struct {
	WaitUntil WaitUntil
	Timeout   time.Duration
}

// NetworkResponse - сетевой ответ, увиденный страницей.
// Body читается лениво, чтобы фильтр по URL срабатывал до загрузки тела.
type NetworkResponse interface {
	// Seq - порядковый номер ответа на странице, присвоенный при его получении
	Seq() uint64
	URL() string
	Body() (string, error)
}

// ResponseHandler вызывается драйвером асинхронно, из своей горутины,
// поэтому порядок вызовов не совпадает с порядком ответов
type ResponseHandler func(resp NetworkResponse)

// BrowserLauncherPort открывает изолированную браузерную сессию.
// Одна сессия принадлежит одному запросу.
type BrowserLauncherPort interface {
	Open(ctx context.Context) (BrowserSession, error)
}

// BrowserSession владеет процессом браузера и контекстом.
// Close освобождает ресурсы в обратном порядке и не возвращает ошибок закрытия.
type BrowserSession interface {
	NewPage(ctx context.Context) (BrowserPage, error)
	Close()
}

// BrowserPage - интерактивная страница
type BrowserPage interface {
	OnResponse(handler ResponseHandler)
	Navigate(ctx context.Context, url string, opts NavigateOptions) error
	URL() string
	Title(ctx context.Context) (string, error)
	Wait(ctx context.Context, d time.Duration) error
	// PressKey нажимает клавишу на клавиатуре страницы, не привязываясь к элементу
	PressKey(ctx context.Context, key string) error

	Locate(ctx context.Context, selector string) ([]Element, error)
	LocateByPlaceholder(ctx context.Context, pattern *regexp.Regexp) ([]Element, error)
	LocateByRole(ctx context.Context, role string, name *regexp.Regexp) ([]Element, error)

	// DOM возвращает представление страницы только для чтения,
	// по которому работают DOM-стратегии извлечения цены
	DOM(ctx context.Context) (DOM, error)
	Close()
}

// Element - интерактивный элемент страницы
type Element interface {
	Text(ctx context.Context) (string, error)
	Fill(ctx context.Context, value string) error
	Press(ctx context.Context, key string) error
	WaitFor(ctx context.Context, state ElementState, timeout time.Duration) error
	IsVisible(ctx context.Context) (bool, error)
}

// DOM - фасад запросов к документу только для чтения
type DOM interface {
	// Query возвращает элементы по CSS-селектору в порядке документа
	Query(ctx context.Context, selector string) ([]Node, error)
	// QueryContaining возвращает элементы по селектору, текст которых содержит text
	QueryContaining(ctx context.Context, selector, text string) ([]Node, error)
	// QueryText возвращает самые глубокие элементы, текст которых содержит text
	QueryText(ctx context.Context, text string) ([]Node, error)
}

// Node - элемент документа только для чтения
type Node interface {
	Text(ctx context.Context) (string, error)
	IsVisible(ctx context.Context) (bool, error)
	// Parent возвращает nil без ошибки для корня документа
	Parent(ctx context.Context) (Node, error)
	Query(ctx context.Context, selector string) ([]Node, error)
}
