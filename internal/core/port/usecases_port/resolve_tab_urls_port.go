package usecases_port

import (
	"bds-price-service/internal/core/domain"
	"context"
)

type ResolveTabURLsUseCase interface {
	Execute(ctx context.Context, currentURL string) (*domain.ListingURLInfo, error)
}
