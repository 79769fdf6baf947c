package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/contracts"
	"bds-price-service/internal/core/domain"
	"bds-price-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// LookupEventsPublisher - реализация порта LookupEventsPort для RabbitMQ
type LookupEventsPublisher struct {
	producer   messagePublisher
	routingKey string
}

func NewLookupEventsPublisher(producer *Publisher, routingKey string) (*LookupEventsPublisher, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	return newLookupEventsPublisher(producer, routingKey)
}

func newLookupEventsPublisher(producer messagePublisher, routingKey string) (*LookupEventsPublisher, error) {
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &LookupEventsPublisher{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

// PublishLookup проверяет событие по схеме и публикует его
func (a *LookupEventsPublisher) PublishLookup(ctx context.Context, event domain.LookupEvent) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "LookupEventsPublisher",
		"routing_key": a.routingKey,
		"event_id":    event.EventID.String(),
	})

	body, err := json.Marshal(event)
	if err != nil {
		adapterLogger.Error("Failed to marshal lookup event", err, nil)
		return fmt.Errorf("failed to marshal lookup event: %w", err)
	}

	if err := contracts.ValidateEvent(contracts.PriceLookupEventType, contracts.PriceLookupEventVersion, body); err != nil {
		adapterLogger.Error("Lookup event does not match its contract", err, nil)
		return fmt.Errorf("rabbitmq adapter: invalid lookup event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.LookedUpAt,
		MessageId:    event.EventID.String(),
		Type:         contracts.PriceLookupEventType,
		Headers: amqp.Table{
			"event_version": contracts.PriceLookupEventVersion,
		},
	}

	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	adapterLogger.Debug("Publishing lookup event", nil)
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish lookup event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish lookup event %s: %w", event.EventID, err)
	}

	adapterLogger.Info("Lookup event published", port.Fields{"status": event.Status})
	return nil
}
