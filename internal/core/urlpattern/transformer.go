package urlpattern

import (
	"fmt"
	"regexp"
	"strings"

	"bds-price-service/internal/core/domain"
)

const DefaultBaseURL = "https://www.bdsplanet.com"

const listingPrefix = "/map/realprice_map/"

// /map/realprice_map/{адрес}/N/{категория}/{вкладка}/{имя}.ytp
var listingPattern = regexp.MustCompile(`(/map/realprice_map/[^/]+/N/[A-Z]/)([12])/([^/]+\.ytp)`)

// DeriveTabURLs строит адреса вкладок 매매 и 전세 из текущего адреса страницы.
// Все сегменты кроме селектора вкладки сохраняются как есть.
// ok == false означает, что структура адреса не совпала с ожидаемой.
func DeriveTabURLs(currentURL, baseURL string) (pair domain.TabURLPair, ok bool) {
	m := listingPattern.FindStringSubmatch(currentURL)
	if m == nil {
		return domain.TabURLPair{}, false
	}

	base := strings.TrimRight(baseURL, "/")
	prefix, suffix := m[1], m[3]

	return domain.TabURLPair{
		SaleURL: base + prefix + domain.TabSale.Code() + "/" + suffix,
		RentURL: base + prefix + domain.TabLease.Code() + "/" + suffix,
	}, true
}

// CurrentTab возвращает вкладку, на которую указывает адрес
func CurrentTab(currentURL string) (domain.TabKind, bool) {
	m := listingPattern.FindStringSubmatch(currentURL)
	if m == nil {
		return 0, false
	}
	if m[2] == domain.TabLease.Code() {
		return domain.TabLease, true
	}
	return domain.TabSale, true
}

// OppositeTabURL возвращает адрес второй вкладки того же объекта
func OppositeTabURL(currentURL, baseURL string) (string, bool) {
	pair, ok := DeriveTabURLs(currentURL, baseURL)
	if !ok {
		return "", false
	}
	tab, _ := CurrentTab(currentURL)
	if tab == domain.TabSale {
		return pair.RentURL, true
	}
	return pair.SaleURL, true
}

// EncodedAddress вырезает сегмент адреса объекта из пути
func EncodedAddress(currentURL string) string {
	i := strings.Index(currentURL, listingPrefix)
	if i < 0 {
		return ""
	}
	rest := currentURL[i+len(listingPrefix):]
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// Analyze разбирает адрес страницы объекта целиком
func Analyze(currentURL, baseURL string) (*domain.ListingURLInfo, error) {
	pair, ok := DeriveTabURLs(currentURL, baseURL)
	if !ok {
		return nil, fmt.Errorf("analyze %q: %w", currentURL, domain.ErrURLPatternMismatch)
	}

	tab, _ := CurrentTab(currentURL)
	opposite := pair.SaleURL
	if tab == domain.TabSale {
		opposite = pair.RentURL
	}

	encoded := EncodedAddress(currentURL)
	decoded, _ := DecodeAddressSegment(encoded)

	return &domain.ListingURLInfo{
		Pair:           pair,
		CurrentTab:     tab,
		OppositeURL:    opposite,
		EncodedAddress: encoded,
		DecodedAddress: decoded,
	}, nil
}
