package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	LookupStatusOK     = "ok"
	LookupStatusFailed = "failed"
)

// LookupEvent - событие о завершенном поиске цены для внешних потребителей
type LookupEvent struct {
	EventID         uuid.UUID `json:"event_id"`
	Address         string    `json:"address"`
	Status          string    `json:"status"`
	SaleLowestWon   *int64    `json:"sale_lowest_won"`
	JeonseLowestWon *int64    `json:"jeonse_lowest_won"`
	SourceURL       string    `json:"source_url,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	LookedUpAt      time.Time `json:"looked_up_at"`
}

// NewLookupEvent строит событие по результату запроса
func NewLookupEvent(result CrawlResult, at time.Time) LookupEvent {
	event := LookupEvent{
		EventID:    uuid.New(),
		Address:    result.Address,
		LookedUpAt: at.UTC(),
	}

	switch o := result.Outcome.(type) {
	case CrawlSucceeded:
		event.Status = LookupStatusOK
		event.SaleLowestWon = o.SaleLowest
		event.JeonseLowestWon = o.JeonseLowest
		event.SourceURL = o.SourceURL
	case CrawlFailed:
		event.Status = LookupStatusFailed
		event.Reason = o.Reason
	}
	return event
}
