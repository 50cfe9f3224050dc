package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	Exchange   = "amq.direct"
	RoutingKey = "travel-orders.assessed"
	Queue      = "travel-orders.notify"
)

// Publisher pushes lifecycle events to the broker. Callers treat the
// publish as fire-and-forget; delivery and retries are the worker's
// problem.
type Publisher struct {
	Channel *amqp.Channel
}

func NewPublisher(ch *amqp.Channel) (*Publisher, error) {
	if _, err := ch.QueueDeclare(Queue, true, false, false, false, nil); err != nil {
		return nil, err
	}
	if err := ch.QueueBind(Queue, RoutingKey, Exchange, false, nil); err != nil {
		return nil, err
	}
	return &Publisher{Channel: ch}, nil
}

func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Channel.PublishWithContext(
		ctx,
		Exchange,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
}

// LogPublisher stands in when no broker is configured: events are written
// to the log and dropped. Useful for local development and tests.
type LogPublisher struct {
	Log *zap.Logger
}

func (p LogPublisher) Publish(_ context.Context, ev Event) error {
	p.Log.Info("travel order event (broker disabled)",
		zap.String("kind", string(ev.Kind)),
		zap.Int64("order_id", ev.Order.ID),
		zap.Int64("user_id", ev.User.ID),
	)
	return nil
}
