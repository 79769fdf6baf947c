package usecase

import (
	"context"
	"fmt"
	"time"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/capture"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/extraction"
	"bds-price-service/internal/core/port"
	"bds-price-service/internal/core/urlpattern"
)

// crawlState - шаги сценария, используются в логах
type crawlState string

const (
	stateInit            crawlState = "init"
	stateSiteLoaded      crawlState = "site_loaded"
	stateSearched        crawlState = "searched"
	stateTabURLsResolved crawlState = "tab_urls_resolved"
	stateSaleExtracted   crawlState = "sale_extracted"
	stateLeaseExtracted  crawlState = "lease_extracted"
	stateDone            crawlState = "done"
)

type FetchLowestPriceUseCase struct {
	launcher port.BrowserLauncherPort
	engine   *extraction.Engine
	events   port.LookupEventsPort
	settings CrawlSettings
	now      func() time.Time
}

// NewFetchLowestPriceUseCase - events может быть nil, тогда события не публикуются.
// Число сессий ограничивает launcher (обычно это SessionPool).
func NewFetchLowestPriceUseCase(
	launcher port.BrowserLauncherPort,
	engine *extraction.Engine,
	events port.LookupEventsPort,
	settings CrawlSettings) *FetchLowestPriceUseCase {

	return &FetchLowestPriceUseCase{
		launcher: launcher,
		engine:   engine,
		events:   events,
		settings: settings,
		now:      time.Now,
	}
}

// Execute проходит сценарий целиком и всегда возвращает результат.
// Ошибки не выходят наружу: они превращаются в CrawlFailed.
func (uc *FetchLowestPriceUseCase) Execute(ctx context.Context, query domain.PriceQuery) domain.CrawlResult {
	logger := contextkeys.LoggerFromContext(ctx)
	ucLogger := logger.WithFields(port.Fields{
		"use_case": "FetchLowestPrice",
		"address":  query.Address,
	})
	ctx = contextkeys.ContextWithLogger(ctx, ucLogger)

	started := uc.now()
	result := uc.crawl(ctx, query)

	fields := port.Fields{
		"succeeded":   result.Succeeded(),
		"duration_ms": uc.now().Sub(started).Milliseconds(),
	}
	if result.Succeeded() {
		ucLogger.Info("Lowest price lookup finished", fields)
	} else {
		fields["reason"] = result.FailureReason()
		ucLogger.Warn("Lowest price lookup failed", fields)
	}

	uc.publish(ctx, result)
	return result
}

// crawl владеет сессией браузера. Все ресурсы освобождаются в обратном
// порядке на любом пути выхода, включая панику.
func (uc *FetchLowestPriceUseCase) crawl(ctx context.Context, query domain.PriceQuery) (result domain.CrawlResult) {
	logger := contextkeys.LoggerFromContext(ctx)
	state := stateInit

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			logger.Error("Crawl panicked", err, port.Fields{"state": string(state)})
			result = crawlError(query.Address, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return crawlError(query.Address, err)
	}

	session, err := uc.launcher.Open(ctx)
	if err != nil {
		logger.Error("Failed to open browser session", err, nil)
		return crawlError(query.Address, err)
	}
	defer session.Close()

	page, err := session.NewPage(ctx)
	if err != nil {
		logger.Error("Failed to open page", err, nil)
		return crawlError(query.Address, err)
	}
	defer page.Close()

	// слушатель подключается до первой навигации
	buffer := capture.NewBuffer(capture.Filter{URLMarkers: uc.settings.ResponseMarkers})
	page.OnResponse(buffer.Handle)

	t := uc.settings.Timings

	// Init -> SiteLoaded
	entryURL := uc.settings.EntryURL()
	err = page.Navigate(ctx, entryURL, port.NavigateOptions{
		WaitUntil: port.WaitDOMContentLoaded,
		Timeout:   uc.settings.NavigationTimeout,
	})
	if err != nil {
		logger.Error("Failed to load entry page", err, port.Fields{"url": entryURL})
		return crawlError(query.Address, err)
	}
	if err := page.Wait(ctx, t.AfterEntry); err != nil {
		return crawlError(query.Address, err)
	}
	state = stateSiteLoaded
	logger.Debug("Entry page loaded", port.Fields{"state": string(state)})

	// SiteLoaded -> Searched
	if err := uc.search(ctx, page, query.Address); err != nil {
		logger.Warn("Search step failed", port.Fields{"error": err.Error()})
		return domain.NewFailedResult(query.Address, domain.ReasonSearchFailed, err)
	}
	state = stateSearched

	// Searched -> TabURLsResolved
	currentURL := page.URL()
	pair, ok := urlpattern.DeriveTabURLs(currentURL, uc.settings.BaseURL)
	if !ok {
		err := fmt.Errorf("%w: %s", domain.ErrURLPatternMismatch, currentURL)
		logger.Warn("Page URL does not match listing pattern", port.Fields{"url": currentURL})
		return domain.NewFailedResult(query.Address, domain.ReasonURLPattern, err)
	}
	state = stateTabURLsResolved
	logger.Info("Tab URLs resolved", port.Fields{
		"state":    string(state),
		"sale_url": pair.SaleURL,
		"rent_url": pair.RentURL,
	})

	// TabURLsResolved -> SaleExtracted -> LeaseExtracted
	sale := uc.extractTab(ctx, page, buffer, pair, domain.TabSale)
	state = stateSaleExtracted
	lease := uc.extractTab(ctx, page, buffer, pair, domain.TabLease)
	state = stateLeaseExtracted

	state = stateDone
	logger.Debug("Crawl finished", port.Fields{
		"state":              string(state),
		"captured_responses": buffer.Len(),
	})

	return domain.CrawlResult{
		Address: query.Address,
		Outcome: domain.CrawlSucceeded{
			SourceURL:    pair.SaleURL,
			SaleLowest:   sale.WonPtr(),
			JeonseLowest: lease.WonPtr(),
		},
	}
}

// search вводит адрес и выбирает первую подсказку автодополнения
func (uc *FetchLowestPriceUseCase) search(ctx context.Context, page port.BrowserPage, address string) error {
	input, err := uc.findSearchInput(ctx, page)
	if err != nil {
		return err
	}

	t := uc.settings.Timings
	steps := []func() error{
		func() error { return input.Fill(ctx, "") },
		func() error { return page.Wait(ctx, t.AfterClear) },
		func() error { return input.Fill(ctx, address) },
		func() error { return page.Wait(ctx, t.AfterType) },
		func() error { return input.Press(ctx, "Enter") },
		func() error { return page.Wait(ctx, t.AfterSubmit) },
		// подсказку выбираем клавиатурой страницы: после первого Enter поле может перерисоваться
		func() error { return page.PressKey(ctx, "ArrowDown") },
		func() error { return page.Wait(ctx, t.AfterArrow) },
		func() error { return page.PressKey(ctx, "Enter") },
		func() error { return page.Wait(ctx, t.AfterAccept) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("search interaction failed: %w", err)
		}
	}
	return nil
}

// findSearchInput: сначала настроенные селекторы, затем placeholder, затем роль textbox
func (uc *FetchLowestPriceUseCase) findSearchInput(ctx context.Context, page port.BrowserPage) (port.Element, error) {
	logger := contextkeys.LoggerFromContext(ctx)

	for _, selector := range uc.settings.SearchSelectors {
		elements, err := page.Locate(ctx, selector)
		if err != nil || len(elements) == 0 {
			continue
		}
		el := elements[0]
		// ошибка ожидания не исключает селектор, решает видимость
		_ = el.WaitFor(ctx, port.StateAttached, uc.settings.Timings.InputAttachTimeout)
		if visible, err := el.IsVisible(ctx); err == nil && visible {
			logger.Debug("Search input found by selector", port.Fields{"selector": selector})
			return el, nil
		}
	}

	if uc.settings.SearchHint != nil {
		elements, err := page.LocateByPlaceholder(ctx, uc.settings.SearchHint)
		if el := firstVisible(ctx, elements, err); el != nil {
			logger.Debug("Search input found by placeholder", nil)
			return el, nil
		}
		elements, err = page.LocateByRole(ctx, "textbox", uc.settings.SearchHint)
		if el := firstVisible(ctx, elements, err); el != nil {
			logger.Debug("Search input found by role", nil)
			return el, nil
		}
	}

	return nil, domain.ErrSearchInputNotFound
}

func firstVisible(ctx context.Context, elements []port.Element, err error) port.Element {
	if err != nil {
		return nil
	}
	for _, el := range elements {
		if visible, err := el.IsVisible(ctx); err == nil && visible {
			return el
		}
	}
	return nil
}

// extractTab не бывает фатальным: ошибка навигации дает пустую цену
func (uc *FetchLowestPriceUseCase) extractTab(ctx context.Context, page port.BrowserPage, buffer *capture.Buffer, pair domain.TabURLPair, tab domain.TabKind) domain.ExtractedPrice {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"tab": tab.String()})
	url := pair.URLFor(tab)

	err := page.Navigate(ctx, url, port.NavigateOptions{
		WaitUntil: port.WaitDOMContentLoaded,
		Timeout:   uc.settings.NavigationTimeout,
	})
	if err != nil {
		logger.Warn("Tab navigation failed", port.Fields{"url": url, "error": err.Error()})
		return domain.NotFound()
	}
	if err := page.Wait(ctx, uc.settings.Timings.TabSettle); err != nil {
		return domain.NotFound()
	}

	dom := func(ctx context.Context) (port.DOM, error) {
		if err := page.Wait(ctx, uc.settings.Timings.DOMSettle); err != nil {
			return nil, err
		}
		return page.DOM(ctx)
	}

	return uc.engine.Extract(ctx, buffer.Snapshot(), tab, dom)
}

// publish отправляет событие в фоне, ошибка публикации на ответ не влияет
func (uc *FetchLowestPriceUseCase) publish(ctx context.Context, result domain.CrawlResult) {
	if uc.events == nil {
		return
	}
	event := domain.NewLookupEvent(result, uc.now())
	bgCtx := contextkeys.Detach(ctx)

	go func() {
		if err := uc.events.PublishLookup(bgCtx, event); err != nil {
			contextkeys.LoggerFromContext(bgCtx).Error("Failed to publish lookup event", err, port.Fields{
				"event_id": event.EventID.String(),
			})
		}
	}()
}

func crawlError(address string, err error) domain.CrawlResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return domain.NewFailedResult(address, domain.ReasonCrawlErrorLabel+msg, err)
}
