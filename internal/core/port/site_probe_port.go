package port

import (
	"bds-price-service/internal/core/domain"
	"context"
)

// SiteProbePort проверяет доступность сайта без браузера
type SiteProbePort interface {
	Probe(ctx context.Context, url string) (*domain.SiteProbe, error)
}
