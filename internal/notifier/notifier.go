package notifier

import (
	"log"
	"time"

	"orderflow/pkg/rabbitmq"
)

// Notification kinds emitted by the order workflow.
const (
	KindOrderConfirmation   = "order_confirmation"
	KindOrderCancelled      = "order_cancelled"
	KindOrderShipped        = "order_shipped"
	KindPaymentConfirmation = "payment_confirmation"
)

// Notifier delivers user-facing notifications. Delivery is fire-and-forget:
// implementations must never let a delivery failure propagate into the order
// or payment workflow.
type Notifier interface {
	Notify(userID, kind, message string)
}

// Event is the wire payload published for each notification.
type Event struct {
	UserID    string    `json:"user_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// RabbitNotifier publishes notifications to the notification queue. Publish
// failures are logged and swallowed.
type RabbitNotifier struct {
	client *rabbitmq.Client
}

// NewRabbitNotifier creates a new RabbitNotifier.
func NewRabbitNotifier(client *rabbitmq.Client) *RabbitNotifier {
	return &RabbitNotifier{
		client: client,
	}
}

// Notify publishes a notification event.
func (n *RabbitNotifier) Notify(userID, kind, message string) {
	if n.client == nil {
		log.Println("RabbitMQ client is not initialized. Skipping notification.")
		return
	}

	event := Event{
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if err := n.client.PublishJSON(rabbitmq.NotificationQueue, event); err != nil {
		log.Printf("Warning: Failed to publish %s notification for user %s: %v", kind, userID, err)
	}
}

// LogNotifier writes notifications to the process log. Used when no message
// broker is configured, and in tests.
type LogNotifier struct{}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Notify logs the notification.
func (n *LogNotifier) Notify(userID, kind, message string) {
	log.Printf("Notification [%s] for user %s: %s", kind, userID, message)
}
