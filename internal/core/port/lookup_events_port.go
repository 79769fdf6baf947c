package port

import (
	"bds-price-service/internal/core/domain"
	"context"
)

// LookupEventsPort - контракт для адаптера публикации событий о поиске цен
type LookupEventsPort interface {
	PublishLookup(ctx context.Context, event domain.LookupEvent) error
}
