package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"
	"bds-price-service/internal/core/port/usecases_port"
)

const (
	lowestExample  = "/api/bds/lowest?address=생연로10"
	serviceVersion = "1.0.0"
)

var availableEndpoints = []string{
	"/",
	"/api/bds",
	"/api/bds/lowest",
	"/api/bds/urlpair",
	"/api/bds/probe",
	"/api/pw/title",
}

type BdsHandlers struct {
	lowestPriceUC usecases_port.FetchLowestPriceUseCase
	pageTitleUC   usecases_port.FetchPageTitleUseCase
	resolveURLsUC usecases_port.ResolveTabURLsUseCase
	probeSiteUC   usecases_port.ProbeSiteUseCase
}

func NewBdsHandlers(lowestPriceUC usecases_port.FetchLowestPriceUseCase,
	pageTitleUC usecases_port.FetchPageTitleUseCase,
	resolveURLsUC usecases_port.ResolveTabURLsUseCase,
	probeSiteUC usecases_port.ProbeSiteUseCase) *BdsHandlers {
	return &BdsHandlers{
		lowestPriceUC: lowestPriceUC,
		pageTitleUC:   pageTitleUC,
		resolveURLsUC: resolveURLsUC,
		probeSiteUC:   probeSiteUC,
	}
}

// HandleLowestPrice - GET /api/bds/lowest?address=
// Ответ всегда 200: неудача поиска передается в теле.
func (h *BdsHandlers) HandleLowestPrice(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleLowestPrice"})

	raw := r.URL.Query().Get("address")
	address := normalizeAddress(raw)
	if address == "" {
		RespondWithJSON(w, http.StatusBadRequest, AddressRequiredDTO{
			Error:   "주소 파라미터가 필요합니다",
			Example: lowestExample,
		})
		return
	}

	logger.Info("Received lowest price request", port.Fields{
		"raw_address":        raw,
		"normalized_address": address,
	})

	result := h.lowestPriceUC.Execute(r.Context(), domain.PriceQuery{Address: address})
	RespondWithJSON(w, http.StatusOK, toLowestPriceDTO(result))
}

// HandleURLPair - GET /api/bds/urlpair?currentUrl=
func (h *BdsHandlers) HandleURLPair(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleURLPair"})

	currentURL := strings.TrimSpace(r.URL.Query().Get("currentUrl"))
	info, err := h.resolveURLsUC.Execute(r.Context(), currentURL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidArgument):
			WriteJSONError(w, http.StatusBadRequest, "Query parameter 'currentUrl' is required")
		case errors.Is(err, domain.ErrURLPatternMismatch):
			WriteJSONError(w, http.StatusUnprocessableEntity, "URL does not match the listing page pattern")
		default:
			logger.Error("Use case execution failed", err, nil)
			WriteJSONError(w, http.StatusInternalServerError, "Failed to analyze URL")
		}
		return
	}

	RespondWithJSON(w, http.StatusOK, toURLPairDTO(info))
}

// HandleProbe - GET /api/bds/probe
func (h *BdsHandlers) HandleProbe(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandleProbe"})

	probe, err := h.probeSiteUC.Execute(r.Context())
	if err != nil {
		logger.Error("Site probe failed", err, nil)
		WriteJSONError(w, http.StatusBadGateway, fmt.Sprintf("Site is not reachable: %v", err))
		return
	}

	RespondWithJSON(w, http.StatusOK, ProbeDTO{
		URL:        probe.URL,
		StatusCode: probe.StatusCode,
		Title:      probe.Title,
		ElapsedMs:  probe.ElapsedMs,
	})
}

// HandlePageTitle - GET /api/pw/title?url=
func (h *BdsHandlers) HandlePageTitle(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context()).WithFields(port.Fields{"handler": "HandlePageTitle"})

	url := r.URL.Query().Get("url")
	title, err := h.pageTitleUC.Execute(r.Context(), url)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			WriteJSONError(w, http.StatusBadRequest, "오류: "+err.Error())
			return
		}
		logger.Error("Failed to fetch page title", err, port.Fields{"url": url})
		WriteJSONError(w, http.StatusInternalServerError, "서버 오류: "+err.Error())
		return
	}

	RespondWithJSON(w, http.StatusOK, PageTitleDTO{URL: url, Title: title})
}

// HandleUsage - GET /api/bds
func (h *BdsHandlers) HandleUsage(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, UsageDTO{
		Message: "BDS Planet 부동산 가격 조회 API",
		Endpoints: []EndpointDTO{
			{
				Path:        "/api/bds/lowest",
				Method:      http.MethodGet,
				Description: "주소별 최저가 매매/전세 정보 조회",
				Parameters:  map[string]string{"address": "required - 조회할 주소"},
				Example:     lowestExample,
			},
			{
				Path:        "/api/bds/urlpair",
				Method:      http.MethodGet,
				Description: "매매/전세 탭 URL 계산",
				Parameters:  map[string]string{"currentUrl": "required - 실거래가 페이지 URL"},
				Example:     "/api/bds/urlpair?currentUrl=/map/realprice_map/7IOd7Jew66GcMTA=/N/A/1/price.ytp",
			},
			{
				Path:        "/api/bds/probe",
				Method:      http.MethodGet,
				Description: "사이트 접속 확인",
				Example:     "/api/bds/probe",
			},
		},
		AvailableAddresses: []string{"생연로10", "신갈로68번길26", "신갈동52-21"},
	})
}

// HandleRoot - GET /
func (h *BdsHandlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, BannerDTO{
		Message:  "BDS Planet 크롤링 API 서버",
		Version:  serviceVersion,
		Features: []string{"Real Estate Price Crawling", "Korean Address Support", "Headless Browser Automation"},
		Endpoints: map[string]string{
			"bds": "/api/bds",
		},
	})
}

func (h *BdsHandlers) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusNotFound, NotFoundDTO{
		Error:              "Not Found",
		Message:            fmt.Sprintf("Endpoint %s not found", r.URL.RequestURI()),
		AvailableEndpoints: availableEndpoints,
	})
}
