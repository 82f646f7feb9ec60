package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workstackhq/workstack/internal/logger"
)

type fakeAcknowledger struct {
	acks     int
	nacks    int
	requeued bool
}

func (f *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	f.acks++
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	f.nacks++
	f.requeued = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return nil
}

func newTestSubscriber(t *testing.T, handler EnvelopeHandler) *RabbitMQSubscriber {
	t.Helper()
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return &RabbitMQSubscriber{logger: appLogger, handler: handler}
}

func lifecycleDelivery(t *testing.T, ack *fakeAcknowledger, envelope Envelope) amqp091.Delivery {
	t.Helper()
	body, err := json.Marshal(envelope)
	require.NoError(t, err)
	return amqp091.Delivery{Acknowledger: ack, Body: body}
}

func TestHandleDelivery_AcksOnSuccess(t *testing.T) {
	var handled []Envelope
	subscriber := newTestSubscriber(t, func(ctx context.Context, envelope Envelope) error {
		handled = append(handled, envelope)
		return nil
	})

	ack := &fakeAcknowledger{}
	subscriber.handleDelivery(context.Background(), lifecycleDelivery(t, ack, Envelope{
		Event:    "tenant.provisioned",
		TenantID: "tnnt_1",
		Slug:     "acme",
		Hostname: "acme.workstack.app",
	}))

	assert.Equal(t, 1, ack.acks)
	assert.Zero(t, ack.nacks)
	require.Len(t, handled, 1)
	assert.Equal(t, "acme", handled[0].Slug)
}

func TestHandleDelivery_NacksWithoutRequeueOnHandlerError(t *testing.T) {
	subscriber := newTestSubscriber(t, func(ctx context.Context, envelope Envelope) error {
		return assert.AnError
	})

	ack := &fakeAcknowledger{}
	subscriber.handleDelivery(context.Background(), lifecycleDelivery(t, ack, Envelope{
		Event: "tenant.deactivated",
		Slug:  "acme",
	}))

	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeued)
}

func TestHandleDelivery_DiscardsMalformedBody(t *testing.T) {
	handlerCalled := false
	subscriber := newTestSubscriber(t, func(ctx context.Context, envelope Envelope) error {
		handlerCalled = true
		return nil
	})

	ack := &fakeAcknowledger{}
	subscriber.handleDelivery(context.Background(), amqp091.Delivery{
		Acknowledger: ack,
		Body:         []byte("{not json"),
	})

	assert.False(t, handlerCalled)
	assert.Zero(t, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.False(t, ack.requeued)
}
