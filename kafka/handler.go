package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"
	"github.com/Piero-design/VETAQP/models"
	"gorm.io/gorm"
)

type OrderCreatedEvent struct {
	OrderID   uint    `json:"order_id"`
	UserID    uint    `json:"user_id"`
	Total     float64 `json:"total"`
	Timestamp int64   `json:"timestamp"`
}

type PaymentCompletedEvent struct {
	PaymentID     uint    `json:"payment_id"`
	UserID        uint    `json:"user_id"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
	Timestamp     int64   `json:"timestamp"`
}

// NotificationEventHandler turns order and payment events into user
// notifications.
type NotificationEventHandler struct {
	db *gorm.DB
}

func NewNotificationEventHandler(db *gorm.DB) *NotificationEventHandler {
	return &NotificationEventHandler{db: db}
}

func (h *NotificationEventHandler) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	switch message.Topic {
	case TopicOrderCreated:
		var event OrderCreatedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal order event: %v", err)
			return err
		}
		return h.db.WithContext(ctx).Create(&models.Notification{
			UserID:           event.UserID,
			Title:            fmt.Sprintf("Order #%d received", event.OrderID),
			Message:          fmt.Sprintf("Your order for S/ %.2f is being processed.", event.Total),
			NotificationType: models.NotificationSuccess,
		}).Error

	case TopicPaymentCompleted:
		var event PaymentCompletedEvent
		if err := json.Unmarshal(message.Value, &event); err != nil {
			log.Printf("Failed to unmarshal payment event: %v", err)
			return err
		}
		return h.db.WithContext(ctx).Create(&models.Notification{
			UserID:           event.UserID,
			Title:            "Payment confirmed",
			Message:          fmt.Sprintf("Payment of S/ %.2f (%s) was completed.", event.Amount, event.TransactionID),
			NotificationType: models.NotificationSuccess,
		}).Error

	default:
		log.Printf("Ignoring message on unexpected topic %s", message.Topic)
		return nil
	}
}
