package usecases_port

import (
	"bds-price-service/internal/core/domain"
	"context"
)

type FetchLowestPriceUseCase interface {
	Execute(ctx context.Context, query domain.PriceQuery) domain.CrawlResult
}
