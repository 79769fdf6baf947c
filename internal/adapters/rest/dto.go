package rest

import (
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/money"
)

// LowestPriceDTO - ответ /api/bds/lowest. Цены в вонах, null если не найдены.
type LowestPriceDTO struct {
	Address               string `json:"address"`
	SaleLowestWon         *int64 `json:"saleLowestWon"`
	JeonseLowestWon       *int64 `json:"jeonseLowestWon"`
	WolseDepositLowestWon *int64 `json:"wolseDepositLowestWon"`
	WolseMonthlyLowestWon *int64 `json:"wolseMonthlyLowestWon"`
	// При ошибке здесь текст причины, а не адрес: так отвечал прежний API
	SourceURL string `json:"sourceUrl"`

	Status           string `json:"status"`
	Error            string `json:"error,omitempty"`
	SaleLowestText   string `json:"saleLowestText,omitempty"`
	JeonseLowestText string `json:"jeonseLowestText,omitempty"`
}

func toLowestPriceDTO(result domain.CrawlResult) LowestPriceDTO {
	dto := LowestPriceDTO{
		Address:   result.Address,
		SourceURL: result.SourceURL(),
	}

	switch o := result.Outcome.(type) {
	case domain.CrawlSucceeded:
		dto.Status = domain.LookupStatusOK
		dto.SaleLowestWon = o.SaleLowest
		dto.JeonseLowestWon = o.JeonseLowest
		dto.WolseDepositLowestWon = o.WolseDepositLowest
		dto.WolseMonthlyLowestWon = o.WolseMonthlyLowest
		dto.SaleLowestText = money.FormatKoreanPtr(o.SaleLowest)
		dto.JeonseLowestText = money.FormatKoreanPtr(o.JeonseLowest)
	case domain.CrawlFailed:
		dto.Status = domain.LookupStatusFailed
		dto.Error = o.Reason
	}
	return dto
}

type URLPairDTO struct {
	SaleURL        string `json:"saleUrl"`
	RentURL        string `json:"rentUrl"`
	CurrentTab     string `json:"currentTab"`
	OppositeURL    string `json:"oppositeUrl"`
	EncodedAddress string `json:"encodedAddress"`
	DecodedAddress string `json:"decodedAddress,omitempty"`
}

func toURLPairDTO(info *domain.ListingURLInfo) URLPairDTO {
	return URLPairDTO{
		SaleURL:        info.Pair.SaleURL,
		RentURL:        info.Pair.RentURL,
		CurrentTab:     info.CurrentTab.String(),
		OppositeURL:    info.OppositeURL,
		EncodedAddress: info.EncodedAddress,
		DecodedAddress: info.DecodedAddress,
	}
}

type ProbeDTO struct {
	URL        string `json:"url"`
	StatusCode int    `json:"statusCode"`
	Title      string `json:"title"`
	ElapsedMs  int64  `json:"elapsedMs"`
}

type PageTitleDTO struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type AddressRequiredDTO struct {
	Error   string `json:"error"`
	Example string `json:"example"`
}

type NotFoundDTO struct {
	Error              string   `json:"error"`
	Message            string   `json:"message"`
	AvailableEndpoints []string `json:"availableEndpoints"`
}

type EndpointDTO struct {
	Path        string            `json:"path"`
	Method      string            `json:"method"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters,omitempty"`
	Example     string            `json:"example"`
}

type UsageDTO struct {
	Message            string        `json:"message"`
	Endpoints          []EndpointDTO `json:"endpoints"`
	AvailableAddresses []string      `json:"availableAddresses"`
}

type BannerDTO struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Features  []string          `json:"features"`
	Endpoints map[string]string `json:"endpoints"`
}
