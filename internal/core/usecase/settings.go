package usecase

import (
	"regexp"
	"strings"
	"time"

	"bds-price-service/internal/core/urlpattern"
)

// Timings - фиксированные паузы между шагами сценария.
// Сайт рендерится на клиенте, и без пауз подсказки адреса не успевают появиться.
type Timings struct {
	AfterEntry  time.Duration
	AfterClear  time.Duration
	AfterType   time.Duration
	AfterSubmit time.Duration
	AfterArrow  time.Duration
	AfterAccept time.Duration
	TabSettle   time.Duration
	DOMSettle   time.Duration

	InputAttachTimeout time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		AfterEntry:         500 * time.Millisecond,
		AfterClear:         200 * time.Millisecond,
		AfterType:          300 * time.Millisecond,
		AfterSubmit:        200 * time.Millisecond,
		AfterArrow:         200 * time.Millisecond,
		AfterAccept:        1200 * time.Millisecond,
		TabSettle:          1000 * time.Millisecond,
		DOMSettle:          500 * time.Millisecond,
		InputAttachTimeout: 3 * time.Second,
	}
}

// CrawlSettings собирается при старте из конфигурации
type CrawlSettings struct {
	BaseURL           string
	EntryPath         string
	SearchSelectors   []string
	SearchHint        *regexp.Regexp
	ResponseMarkers   []string
	NavigationTimeout time.Duration
	Timings           Timings
}

func DefaultCrawlSettings() CrawlSettings {
	return CrawlSettings{
		BaseURL:           urlpattern.DefaultBaseURL,
		EntryPath:         "/main.ytp",
		SearchHint:        regexp.MustCompile("주소|검색|지하철|단지"),
		NavigationTimeout: 8 * time.Second,
		Timings:           DefaultTimings(),
	}
}

// EntryURL - стартовая страница сайта
func (s CrawlSettings) EntryURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.EntryPath
}
