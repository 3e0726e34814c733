package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the durable queue events are routed to.
const DefaultQueue = "tokenauth.events"

// AMQPPublisher publishes events as persistent JSON messages on a durable
// queue through the default exchange.
type AMQPPublisher struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

var _ Publisher = (*AMQPPublisher)(nil)

// NewAMQPPublisher dials url and declares queue.
func NewAMQPPublisher(url, queue string) (*AMQPPublisher, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}
	if _, err := ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq queue declare: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// Publish sends event. Channels are not safe for concurrent publishing, so
// calls are serialised.
func (p *AMQPPublisher) Publish(ctx context.Context, event Event) error {
	body, err := encode(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return fmt.Errorf("rabbitmq publisher closed")
	}
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Type:         event.Type,
			Timestamp:    event.OccurredAt,
			Body:         body,
		},
	)
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch == nil {
		return nil
	}
	_ = p.ch.Close()
	p.ch = nil
	return p.conn.Close()
}

func encode(event Event) ([]byte, error) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return body, nil
}
