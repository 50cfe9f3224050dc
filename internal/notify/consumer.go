package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Mailer turns a lifecycle event into an outbound notification.
type Mailer interface {
	SendAssessment(ctx context.Context, ev Event) error
}

// Consumer drains the notification queue and hands each event to the
// mailer. A failed send is requeued once via Nack; a malformed body is
// dropped.
type Consumer struct {
	Conn   *amqp.Connection
	Mailer Mailer
	Log    *zap.Logger
}

func (c *Consumer) Start(ctx context.Context) error {
	ch, err := c.Conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(Queue, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(Queue, RoutingKey, Exchange, false, nil); err != nil {
		return err
	}

	msgs, err := ch.Consume(Queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	c.Log.Info("waiting for travel order events", zap.String("queue", Queue))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var ev Event
	if err := json.Unmarshal(d.Body, &ev); err != nil {
		c.Log.Error("dropping malformed event", zap.Error(err))
		_ = d.Nack(false, false)
		return
	}

	if err := c.Mailer.SendAssessment(ctx, ev); err != nil {
		c.Log.Warn("notification failed, requeueing",
			zap.Int64("order_id", ev.Order.ID),
			zap.Error(err),
		)
		_ = d.Nack(false, !d.Redelivered)
		return
	}

	_ = d.Ack(false)
	c.Log.Info("notification sent",
		zap.String("kind", string(ev.Kind)),
		zap.Int64("order_id", ev.Order.ID),
	)
}
