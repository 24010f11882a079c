package messaging

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// Consumer reads deliveries from a queue.
type Consumer struct {
	conn  *Connection
	queue string
}

// NewConsumer creates a consumer for the given queue.
func NewConsumer(conn *Connection, queue string) *Consumer {
	return &Consumer{conn: conn, queue: queue}
}

// Consume starts delivery of messages. Deliveries must be acked by the
// caller; the channel closes when ctx is cancelled or the connection drops.
func (c *Consumer) Consume(ctx context.Context) (<-chan amqp091.Delivery, error) {
	if err := c.conn.Channel().Qos(1, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	deliveries, err := c.conn.Channel().ConsumeWithContext(ctx,
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to consume from %s: %w", c.queue, err)
	}

	return deliveries, nil
}
