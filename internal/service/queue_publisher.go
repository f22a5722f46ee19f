// Package queue_publisher publishes domain events to RabbitMQ.  Errors are
// logged and returned so callers can ignore failures without interrupting
// the request that caused the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/iliyamo/schedule-builder/internal/queue"
)

// DefaultDialTimeout bounds connecting to the broker and the AMQP
// handshake.
const DefaultDialTimeout = 2 * time.Second

// Publisher sends schedule events to one durable queue on the default
// exchange.  It dials per publish; schedule edits are rare enough that a
// pooled connection is not worth the reconnect handling.
type Publisher struct {
	URL         string
	Queue       string
	DialTimeout time.Duration // 0 means DefaultDialTimeout
}

// New returns a Publisher for the given broker URL and queue.
func New(url, queue string) *Publisher {
	if queue == "" {
		queue = "schedule.changed"
	}
	return &Publisher{URL: url, Queue: queue, DialTimeout: DefaultDialTimeout}
}

// dial connects within DialTimeout, cut short by the ctx deadline.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	timeout := p.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if timeout <= 0 {
		return nil, context.DeadlineExceeded
	}
	return amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// PublishScheduleChanged publishes ev as a persistent JSON message.
func (p *Publisher) PublishScheduleChanged(ctx context.Context, ev q.ScheduleChangedEvent) error {
	if ev.ChangedAt == "" {
		ev.ChangedAt = time.Now().UTC().Format(time.RFC3339)
	}
	body, err := json.Marshal(ev)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	conn, err := p.dial(ctx)
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.Queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
