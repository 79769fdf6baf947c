package usecases_port

import (
	"bds-price-service/internal/core/domain"
	"context"
)

type ProbeSiteUseCase interface {
	Execute(ctx context.Context) (*domain.SiteProbe, error)
}
