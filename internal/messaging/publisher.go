package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"

	"canteen-rush/internal/logger"
	"canteen-rush/internal/models"
)

// Publisher emits status-update events to the fanout exchange.
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

// NewPublisher creates a publisher over an established connection.
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{conn: conn, logger: log}
}

// PublishStatusUpdate publishes a committed status change. Delivery is
// best effort; callers must not fail the originating request on error.
func (p *Publisher) PublishStatusUpdate(ctx context.Context, msg *models.StatusUpdateMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal status update: %w", err)
	}

	err = p.conn.Channel().PublishWithContext(ctx,
		StatusExchange, // exchange
		"",             // routing key (ignored for fanout)
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish status update: %w", err)
	}

	p.logger.Debug("status_update_published",
		"",
		fmt.Sprintf("Published %s -> %s for order %d", msg.OldStatus, msg.NewStatus, msg.OrderID))
	return nil
}
