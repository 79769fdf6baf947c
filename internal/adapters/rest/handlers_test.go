package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/urlpattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLowestUC struct {
	got    domain.PriceQuery
	result domain.CrawlResult
}

func (f *fakeLowestUC) Execute(ctx context.Context, query domain.PriceQuery) domain.CrawlResult {
	f.got = query
	f.result.Address = query.Address
	return f.result
}

type fakeTitleUC struct {
	title string
	err   error
}

func (f *fakeTitleUC) Execute(ctx context.Context, url string) (string, error) {
	return f.title, f.err
}

type fakeResolveUC struct{}

func (fakeResolveUC) Execute(ctx context.Context, currentURL string) (*domain.ListingURLInfo, error) {
	if currentURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	return urlpattern.Analyze(currentURL, "https://www.bdsplanet.com")
}

type fakeProbeUC struct {
	err error
}

func (f *fakeProbeUC) Execute(ctx context.Context) (*domain.SiteProbe, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SiteProbe{URL: "https://www.bdsplanet.com/main.ytp", StatusCode: 200, Title: "부동산플래닛", ElapsedMs: 42}, nil
}

type testDeps struct {
	lowest *fakeLowestUC
	title  *fakeTitleUC
	probe  *fakeProbeUC
}

func newTestRouter() (http.Handler, *testDeps) {
	deps := &testDeps{
		lowest: &fakeLowestUC{},
		title:  &fakeTitleUC{title: "Example Domain"},
		probe:  &fakeProbeUC{},
	}
	handlers := NewBdsHandlers(deps.lowest, deps.title, fakeResolveUC{}, deps.probe)
	return NewRouter(handlers, []string{"*"}, contextkeys.LoggerFromContext(context.Background())), deps
}

func get(t *testing.T, h http.Handler, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec, body
}

func int64Ptr(v int64) *int64 { return &v }

func TestHandleLowestPrice_Success(t *testing.T) {
	router, deps := newTestRouter()
	deps.lowest.result = domain.CrawlResult{Outcome: domain.CrawlSucceeded{
		SourceURL:    "https://www.bdsplanet.com/map/realprice_map/x/N/A/1/price.ytp",
		SaleLowest:   int64Ptr(250_000_000),
		JeonseLowest: nil,
	}}

	rec, body := get(t, router, "/api/bds/lowest?address="+url.QueryEscape("생연로10"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "생연로10", deps.lowest.got.Address)
	assert.Equal(t, "생연로10", body["address"])
	assert.Equal(t, float64(250_000_000), body["saleLowestWon"])
	assert.Nil(t, body["jeonseLowestWon"])
	assert.Contains(t, body, "wolseDepositLowestWon")
	assert.Nil(t, body["wolseMonthlyLowestWon"])
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "2억 5000만원", body["saleLowestText"])
	assert.NotContains(t, body, "error")
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))
}

func TestHandleLowestPrice_DoubleEncoded(t *testing.T) {
	router, deps := newTestRouter()
	deps.lowest.result = domain.NewFailedResult("", domain.ReasonSearchFailed, domain.ErrSearchInputNotFound)

	// адрес закодирован дважды: после разбора query в нем остаются %XX
	twice := url.QueryEscape(url.QueryEscape("신갈로68번길26"))
	rec, body := get(t, router, "/api/bds/lowest?address="+twice)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "신갈로68번길26", deps.lowest.got.Address)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "크롤링 실패: 검색 실행 실패", body["sourceUrl"])
	assert.Equal(t, domain.ReasonSearchFailed, body["error"])
	assert.Nil(t, body["saleLowestWon"])
}

func TestHandleLowestPrice_MissingAddress(t *testing.T) {
	router, _ := newTestRouter()

	for _, target := range []string{"/api/bds/lowest", "/api/bds/lowest?address=%20%20"} {
		rec, body := get(t, router, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "주소 파라미터가 필요합니다", body["error"])
		assert.Equal(t, "/api/bds/lowest?address=생연로10", body["example"])
	}
}

func TestHandleURLPair(t *testing.T) {
	router, _ := newTestRouter()

	rec, body := get(t, router, "/api/bds/urlpair?currentUrl="+url.QueryEscape("/map/realprice_map/7IOd7Jew66GcMTA=/N/A/1/price.ytp"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://www.bdsplanet.com/map/realprice_map/7IOd7Jew66GcMTA=/N/A/2/price.ytp", body["rentUrl"])
	assert.Equal(t, body["rentUrl"], body["oppositeUrl"])
	assert.Equal(t, "sale", body["currentTab"])
	assert.Equal(t, "생연로10", body["decodedAddress"])

	rec, _ = get(t, router, "/api/bds/urlpair?currentUrl="+url.QueryEscape("https://example.com/nope"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = get(t, router, "/api/bds/urlpair")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlePageTitle(t *testing.T) {
	router, deps := newTestRouter()

	rec, body := get(t, router, "/api/pw/title?url=https://example.com")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Example Domain", body["title"])

	deps.title.err = domain.ErrInvalidArgument
	rec, _ = get(t, router, "/api/pw/title")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	deps.title.err = errors.Join(domain.ErrSessionInit, errors.New("no chromium"))
	rec, body = get(t, router, "/api/pw/title?url=https://example.com")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "서버 오류")
}

func TestHandleProbe(t *testing.T) {
	router, deps := newTestRouter()

	rec, body := get(t, router, "/api/bds/probe")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(200), body["statusCode"])

	deps.probe.err = errors.New("dial tcp: refused")
	rec, _ = get(t, router, "/api/bds/probe")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestStaticRoutes(t *testing.T) {
	router, _ := newTestRouter()

	rec, body := get(t, router, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0", body["version"])

	rec, body = get(t, router, "/api/bds")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []interface{}{"생연로10", "신갈로68번길26", "신갈동52-21"}, body["availableAddresses"])

	rec, body = get(t, router, "/api/unknown?x=1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Endpoint /api/unknown?x=1 not found", body["message"])
	assert.Contains(t, body["availableEndpoints"], "/api/bds/lowest")
}

func TestLoggerMiddleware_KeepsIncomingTraceID(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Trace-ID", "trace-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-ID"))
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"생연로10", "생연로10"},
		{"%EC%83%9D%EC%97%B0%EB%A1%9C10", "생연로10"},
		{"%25EC%2583%259D%25EC%2597%25B0%25EB%25A1%259C10", "생연로10"},
		{"서울시+강남구", "서울시 강남구"},
		{"100%", "100%"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddress(tt.in))
		})
	}
}
