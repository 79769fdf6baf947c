package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"bds-price-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

// PublisherConfig - параметры обменника для публикации
type PublisherConfig struct {
	ExchangeName    string
	ExchangeType    string // direct, fanout, topic, headers
	DurableExchange bool
	// Если false, обменник должен уже существовать
	DeclareExchangeIfMissing bool
}

// Publisher публикует сообщения в один обменник.
// Канал пересоздается, если соединение было восстановлено.
type Publisher struct {
	config  PublisherConfig
	manager *ConnectionManager
	logger  port.LoggerPort

	mu      sync.Mutex
	channel *amqp.Channel
}

func NewPublisher(cfg PublisherConfig, manager *ConnectionManager, logger port.LoggerPort) (*Publisher, error) {
	if cfg.ExchangeName == "" {
		return nil, fmt.Errorf("publisher: exchange name is required")
	}
	if cfg.DeclareExchangeIfMissing && cfg.ExchangeType == "" {
		return nil, fmt.Errorf("publisher: exchange type is required when DeclareExchangeIfMissing is true")
	}

	p := &Publisher{
		config:  cfg,
		manager: manager,
		logger:  logger.WithFields(port.Fields{"component": "RabbitMQPublisher", "exchange": cfg.ExchangeName}),
	}
	if _, err := p.ensureChannel(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureChannel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}

	ch, err := p.manager.Channel()
	if err != nil {
		return nil, fmt.Errorf("publisher: failed to get channel: %w", err)
	}

	if p.config.DeclareExchangeIfMissing {
		p.logger.Debug("Declaring exchange", port.Fields{"type": p.config.ExchangeType})
		err = ch.ExchangeDeclare(
			p.config.ExchangeName,
			p.config.ExchangeType,
			p.config.DurableExchange,
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		)
		if err != nil {
			_ = ch.Close()
			return nil, fmt.Errorf("publisher: failed to declare exchange '%s': %w", p.config.ExchangeName, err)
		}
	}

	p.channel = ch
	return ch, nil
}

// Publish публикует сообщение в обменник из конфигурации
func (p *Publisher) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	ch, err := p.ensureChannel()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, p.config.ExchangeName, routingKey,
		false, // mandatory
		false, // immediate
		msg,
	)
	if err != nil {
		return fmt.Errorf("publisher: failed to publish message: %w", err)
	}
	return nil
}

// Close закрывает канал. Соединение закрывает ConnectionManager.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel == nil {
		return nil
	}
	err := p.channel.Close()
	p.channel = nil
	if err != nil {
		p.logger.Error("Error closing channel", err, nil)
	}
	return err
}
