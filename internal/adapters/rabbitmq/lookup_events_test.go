package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bds-price-service/internal/contextkeys"
	"bds-price-service/internal/core/domain"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	routingKey string
	msg        amqp.Publishing
	calls      int
	err        error
}

func (f *fakeProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	f.calls++
	f.routingKey = routingKey
	f.msg = msg
	return f.err
}

func TestPublishLookup(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := newLookupEventsPublisher(producer, "bds.lowest.lookups")
	require.NoError(t, err)

	sale := int64(380_000_000)
	event := domain.NewLookupEvent(domain.CrawlResult{
		Address: "생연로10",
		Outcome: domain.CrawlSucceeded{SourceURL: "https://www.bdsplanet.com/map/realprice_map/x/N/A/1/p.ytp", SaleLowest: &sale},
	}, time.Now())

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-42")
	require.NoError(t, pub.PublishLookup(ctx, event))

	assert.Equal(t, 1, producer.calls)
	assert.Equal(t, "bds.lowest.lookups", producer.routingKey)
	assert.Equal(t, "application/json", producer.msg.ContentType)
	assert.Equal(t, amqp.Persistent, producer.msg.DeliveryMode)
	assert.Equal(t, "trace-42", producer.msg.Headers["x-trace-id"])
	assert.Equal(t, event.EventID.String(), producer.msg.MessageId)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(producer.msg.Body, &decoded))
	assert.Equal(t, "ok", decoded["status"])
	assert.Equal(t, float64(380_000_000), decoded["sale_lowest_won"])
}

func TestPublishLookup_InvalidEventNotSent(t *testing.T) {
	producer := &fakeProducer{}
	pub, err := newLookupEventsPublisher(producer, "bds.lowest.lookups")
	require.NoError(t, err)

	// пустой адрес нарушает схему
	event := domain.NewLookupEvent(domain.NewFailedResult("", domain.ReasonSearchFailed, nil), time.Now())

	err = pub.PublishLookup(context.Background(), event)
	assert.Error(t, err)
	assert.Equal(t, 0, producer.calls)
}

func TestPublishLookup_ProducerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("channel closed")}
	pub, err := newLookupEventsPublisher(producer, "bds.lowest.lookups")
	require.NoError(t, err)

	event := domain.NewLookupEvent(domain.NewFailedResult("생연로10", domain.ReasonURLPattern, nil), time.Now())
	err = pub.PublishLookup(context.Background(), event)
	assert.ErrorContains(t, err, "channel closed")
}

func TestNewLookupEventsPublisher_Validation(t *testing.T) {
	_, err := NewLookupEventsPublisher(nil, "key")
	assert.Error(t, err)

	_, err = newLookupEventsPublisher(&fakeProducer{}, "")
	assert.Error(t, err)
}
