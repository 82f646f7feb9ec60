package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rabbitmq/amqp091-go"

	"github.com/workstackhq/workstack/internal/logger"
)

// EnvelopeHandler processes one lifecycle event. Returning an error nacks
// the delivery without requeue, routing it to the DLQ.
type EnvelopeHandler func(ctx context.Context, envelope Envelope) error

type SubscriberConfig struct {
	ReconnectBackoff    time.Duration
	MaxReconnectBackoff time.Duration
}

// RabbitMQSubscriber consumes the tenant lifecycle queue and dispatches
// each envelope to the registered handler.
type RabbitMQSubscriber struct {
	connection      *amqp091.Connection
	connectionMutex sync.Mutex
	url             string
	logger          logger.Logger
	config          SubscriberConfig
	handler         EnvelopeHandler
}

func NewRabbitMQSubscriber(rabbitmqURL string, logger logger.Logger, handler EnvelopeHandler, config *SubscriberConfig) (*RabbitMQSubscriber, error) {
	if config == nil {
		config = &SubscriberConfig{
			ReconnectBackoff:    time.Second,
			MaxReconnectBackoff: 30 * time.Second,
		}
	}

	subscriber := &RabbitMQSubscriber{
		url:     rabbitmqURL,
		logger:  logger,
		config:  *config,
		handler: handler,
	}

	if err := subscriber.connect(); err != nil {
		return nil, err
	}
	return subscriber, nil
}

func (r *RabbitMQSubscriber) connect() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	var err error
	r.connection, err = amqp091.Dial(r.url)
	if err != nil {
		return errors.Wrap(err, "failed to connect to RabbitMQ")
	}
	return nil
}

// Listen consumes QueueTenantLifecycle until the context is cancelled,
// reconnecting with backoff when the broker drops the connection.
func (r *RabbitMQSubscriber) Listen(ctx context.Context) error {
	backoff := r.config.ReconnectBackoff

	for {
		err := r.consume(ctx)
		if err == nil || errors.Is(err, context.Canceled) {
			return nil
		}

		r.logger.Warnf("consumer stopped: %v, reconnecting in %v", err, backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > r.config.MaxReconnectBackoff {
			backoff = r.config.MaxReconnectBackoff
		}

		if err := r.connect(); err != nil {
			continue
		}
		backoff = r.config.ReconnectBackoff
	}
}

func (r *RabbitMQSubscriber) consume(ctx context.Context) error {
	if r.connection == nil || r.connection.IsClosed() {
		if err := r.connect(); err != nil {
			return err
		}
	}

	channel, err := r.connection.Channel()
	if err != nil {
		return errors.Wrap(err, "failed to open consume channel")
	}
	defer channel.Close()

	deliveries, err := channel.Consume(
		QueueTenantLifecycle,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to consume queue %s", QueueTenantLifecycle)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			r.handleDelivery(ctx, delivery)
		}
	}
}

func (r *RabbitMQSubscriber) handleDelivery(ctx context.Context, delivery amqp091.Delivery) {
	var envelope Envelope
	if err := json.Unmarshal(delivery.Body, &envelope); err != nil {
		r.logger.Errorf("discarding malformed event: %v", err)
		_ = delivery.Nack(false, false)
		return
	}

	if err := r.handler(ctx, envelope); err != nil {
		r.logger.Errorf("handler failed for event %s (%s): %v", envelope.Event, envelope.ID, err)
		_ = delivery.Nack(false, false)
		return
	}
	_ = delivery.Ack(false)
}

func (r *RabbitMQSubscriber) Close() error {
	r.connectionMutex.Lock()
	defer r.connectionMutex.Unlock()

	if r.connection != nil {
		return r.connection.Close()
	}
	return nil
}
