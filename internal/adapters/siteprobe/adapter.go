package siteprobe

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// SiteProbeAdapter проверяет доступность сайта обычным HTTP-запросом, без браузера
type SiteProbeAdapter struct {
	// родительский коллектор, клоны наследуют лимиты
	collector *colly.Collector
}

func NewSiteProbeAdapter(baseURL string, timeout time.Duration) (*SiteProbeAdapter, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return nil, fmt.Errorf("SiteProbeAdapter: invalid base url %q", baseURL)
	}

	c := colly.NewCollector(colly.AllowedDomains(u.Hostname()), colly.AllowURLRevisit())

	err = c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 1,
		RandomDelay: 500 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("SiteProbeAdapter: failed to set limit rule: %w", err)
	}
	c.SetRequestTimeout(timeout)

	extensions.RandomUserAgent(c)
	extensions.Referer(c)

	return &SiteProbeAdapter{collector: c}, nil
}

// Probe возвращает ошибку только если ответа не было совсем.
// Ответ 4xx/5xx - это тоже результат проверки.
func (a *SiteProbeAdapter) Probe(ctx context.Context, target string) (*domain.SiteProbe, error) {
	logger := contextkeys.LoggerFromContext(ctx)
	probeLogger := logger.WithFields(port.Fields{"component": "SiteProbeAdapter", "url": target})

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := a.collector.Clone()

	result := &domain.SiteProbe{URL: target}
	var transportErr error
	started := time.Now()

	collector.OnRequest(func(r *colly.Request) {
		if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
			r.Headers.Set(contextkeys.TraceHeader, traceID)
		}
		probeLogger.Debug("Probing site", nil)
	})

	collector.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
	})

	collector.OnHTML("title", func(e *colly.HTMLElement) {
		if result.Title == "" {
			result.Title = strings.TrimSpace(e.Text)
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode > 0 {
			result.StatusCode = r.StatusCode
			probeLogger.Warn("Site answered with error status", port.Fields{"status": r.StatusCode})
			return
		}
		transportErr = err
	})

	// Visit возвращает ошибку и для статусов 4xx/5xx, их уже обработал OnError
	if err := collector.Visit(target); err != nil && transportErr == nil && result.StatusCode == 0 {
		transportErr = err
	}
	collector.Wait()

	result.ElapsedMs = time.Since(started).Milliseconds()

	if transportErr != nil {
		probeLogger.Error("Site is not reachable", transportErr, nil)
		return nil, fmt.Errorf("probe %s: %w", target, transportErr)
	}
	return result, nil
}
