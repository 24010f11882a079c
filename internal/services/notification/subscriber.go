// Package notification consumes committed status-update events and turns
// them into customer-facing notifications. The current sink is the log;
// an SMS or display-board integration would plug in here.
package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"canteen-rush/internal/logger"
	"canteen-rush/internal/messaging"
	"canteen-rush/internal/models"
)

// Subscriber consumes the notification queue.
type Subscriber struct {
	consumer *messaging.Consumer
	logger   *logger.Logger
}

// NewSubscriber creates a subscriber over an established connection.
func NewSubscriber(conn *messaging.Connection, log *logger.Logger) *Subscriber {
	return &Subscriber{
		consumer: messaging.NewConsumer(conn, messaging.NotificationQueue),
		logger:   log,
	}
}

// Run consumes until ctx is cancelled or the delivery channel closes.
func (s *Subscriber) Run(ctx context.Context) error {
	deliveries, err := s.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}

			var msg models.StatusUpdateMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				s.logger.Error("notification_decode_failed", "", "Failed to decode status update", err)
				d.Nack(false, false)
				continue
			}

			s.notify(&msg)
			d.Ack(false)
		}
	}
}

func (s *Subscriber) notify(msg *models.StatusUpdateMessage) {
	switch msg.NewStatus {
	case models.StatusReady:
		s.logger.Info("notification_sent", "",
			fmt.Sprintf("Token %d: your order is ready for pickup", msg.TokenNumber))
	case models.StatusCompleted:
		s.logger.Info("notification_sent", "",
			fmt.Sprintf("Token %d: order picked up, enjoy", msg.TokenNumber))
	default:
		s.logger.Debug("notification_skipped", "",
			fmt.Sprintf("Token %d moved to %s", msg.TokenNumber, msg.NewStatus))
	}
}
