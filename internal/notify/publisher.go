// Package notify publishes customer notifications to RabbitMQ. The
// publisher is deliberately fire-and-forget: booking flows log a
// failed publish and move on, a broker outage never blocks a checkout.
package notify

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/mtourkz/booking-api/internal/queue"
)

// Publisher implements booking.Notifier over AMQP. Each publish opens
// a short-lived connection; notification volume is low enough that a
// pooled channel is not worth the reconnect bookkeeping.
type Publisher struct {
	url string
	log *zap.Logger
}

func NewPublisher(url string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{url: url, log: log}
}

// Notify publishes one NotificationEvent, persistent, to the durable
// notification queue.
func (p *Publisher) Notify(ctx context.Context, userID uint64, subject, body string) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("notify dial failed", zap.Error(err))
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("notify channel open failed", zap.Error(err))
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.NotificationQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn("notify queue declare failed", zap.Error(err))
		return err
	}

	payload, err := json.Marshal(queue.NotificationEvent{
		UserID:  userID,
		Subject: subject,
		Body:    body,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx, "", queue.NotificationQueueName, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         payload,
	})
	if err != nil {
		p.log.Warn("notify publish failed", zap.Error(err))
	}
	return err
}
