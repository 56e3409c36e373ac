package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// statusRank orders the linear progression. CANCELLED is deliberately
// absent: it is only reachable through CancelStatus.
var statusRank = map[OrderStatus]int{
	OrderStatusPending:    0,
	OrderStatusPaid:       1,
	OrderStatusProcessing: 2,
	OrderStatusShipped:    3,
	OrderStatusDelivered:  4,
}

// AdvanceStatus validates a forward move along the linear progression
// PENDING -> PAID -> PROCESSING -> SHIPPED -> DELIVERED and returns the new
// status. Regressions, repeats, moves out of CANCELLED, and requests for
// CANCELLED itself (cancellation has its own entry point) are rejected.
func AdvanceStatus(current, target OrderStatus) (OrderStatus, error) {
	if current == OrderStatusCancelled {
		return current, fmt.Errorf("order is cancelled: %w", ErrInvalidStatusTransition)
	}
	targetRank, ok := statusRank[target]
	if !ok {
		return current, fmt.Errorf("cannot advance to %s: %w", target, ErrInvalidStatusTransition)
	}
	currentRank, ok := statusRank[current]
	if !ok {
		return current, fmt.Errorf("unknown status %s: %w", current, ErrInvalidStatusTransition)
	}
	if targetRank <= currentRank {
		return current, fmt.Errorf("cannot move from %s to %s: %w", current, target, ErrInvalidStatusTransition)
	}
	return target, nil
}

// CancelStatus validates cancellation. Orders that have not shipped yet
// (PENDING, PAID, PROCESSING) can be cancelled; cancelling twice is a no-op.
func CancelStatus(current OrderStatus) (OrderStatus, error) {
	switch current {
	case OrderStatusCancelled:
		return OrderStatusCancelled, nil
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing:
		return OrderStatusCancelled, nil
	default:
		return current, fmt.Errorf("cannot cancel a %s order: %w", current, ErrInvalidStatusTransition)
	}
}

// OrderItem represents a single line within an order. Items are immutable
// once the order is created.
type OrderItem struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string          `json:"order_id" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"` // Price at the time of order
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
}

// Order represents a customer order.
type Order struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID         string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items          []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	Status         OrderStatus     `json:"status" gorm:"type:varchar(20)"`
	IdempotencyKey string          `json:"idempotency_key" gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
