package services

import (
	"fmt"
	"log"

	"orderflow/internal/audit"
	"orderflow/internal/models"
	"orderflow/internal/notifier"
	"orderflow/internal/repositories"
	"orderflow/pkg/keylock"
	"orderflow/pkg/rabbitmq"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest is a single requested line item.
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// CreateOrderRequest carries everything needed to place an order.
type CreateOrderRequest struct {
	IdempotencyKey string             `json:"idempotency_key" validate:"omitempty,max=64"`
	PaymentMethod  string             `json:"payment_method" validate:"omitempty,max=50"`
	Items          []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// DefaultPaymentMethod is used when the client does not name one.
const DefaultPaymentMethod = "card"

// reservedItem tracks a hold taken during order creation so it can be rolled
// back if a later line item fails.
type reservedItem struct {
	productID string
	quantity  int
}

// OrderService orchestrates order creation and fulfillment: inventory
// reservation, payment, status transitions, and the notification/audit side
// effects around them.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	userRepo    repositories.UserRepository
	inventory   *InventoryService
	payments    *PaymentService
	locks       *keylock.Manager
	notifier    notifier.Notifier
	auditor     audit.Auditor
	mqClient    *rabbitmq.Client // may be nil when no broker is configured
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	userRepo repositories.UserRepository,
	inventory *InventoryService,
	payments *PaymentService,
	locks *keylock.Manager,
	n notifier.Notifier,
	auditor audit.Auditor,
	mqClient *rabbitmq.Client,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		inventory:   inventory,
		payments:    payments,
		locks:       locks,
		notifier:    n,
		auditor:     auditor,
		mqClient:    mqClient,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByUser retrieves all orders belonging to a user.
func (s *OrderService) GetOrdersByUser(userID string) ([]models.Order, error) {
	return s.orderRepo.GetAllByUser(userID)
}

// GetOrderByID retrieves a single order. Customers can only see their own
// orders; admins can see any.
func (s *OrderService) GetOrderByID(callerID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(callerID, order); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateOrder places an order for the user. The whole orchestration runs
// inside the per-key lock for the idempotency key, so concurrent submissions
// of the same logical order are fully serialized.
//
// Replaying a key is safe end to end: the persisted order is the idempotency
// marker, so a second call returns the existing order without reserving
// inventory again, and only re-runs the payment step (itself idempotent)
// when the first attempt left the order unpaid.
//
// Reservation is all-or-nothing: if any line item cannot be reserved, holds
// already taken in this call are released before the error is returned.
func (s *OrderService) CreateOrder(userID string, req CreateOrderRequest) (*models.Order, error) {
	key := req.IdempotencyKey
	if key == "" {
		key = uuid.New().String()
	}
	method := req.PaymentMethod
	if method == "" {
		method = DefaultPaymentMethod
	}

	var order *models.Order
	err := s.locks.WithLock("order:"+key, func() error {
		existing, err := s.orderRepo.GetByIdempotencyKey(key)
		if err != nil {
			return err
		}
		if existing != nil {
			// Idempotency keys are client-supplied; replaying someone
			// else's key must not leak their order.
			if err := s.authorize(userID, existing); err != nil {
				return err
			}
			order = existing
			if existing.Status != models.OrderStatusPending {
				return nil
			}
			// The order was created but payment never completed. Retry just
			// the payment step; the gate reuses the existing payment row.
			return s.settle(existing, method, key)
		}

		order, err = s.initializeOrder(userID, key, req.Items)
		if err != nil {
			return err
		}
		if err := s.settle(order, method, key); err != nil {
			return err
		}

		s.notifier.Notify(userID, notifier.KindOrderConfirmation,
			fmt.Sprintf("Order %s confirmed, total %s.", order.ID, order.TotalAmount.StringFixed(2)))
		s.auditor.RecordChange("order", order.ID, nil, *order)
		s.publishOrderEvent("order.created", order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// initializeOrder reserves inventory for every line item and persists the
// new PENDING order with price snapshots taken at creation time.
func (s *OrderService) initializeOrder(userID, key string, items []OrderItemRequest) (*models.Order, error) {
	var reserved []reservedItem
	rollback := func() {
		for _, r := range reserved {
			if err := s.inventory.Release(r.productID, r.quantity); err != nil {
				log.Printf("Warning: failed to roll back reservation of %d x %s: %v", r.quantity, r.productID, err)
			}
		}
	}

	totalAmount := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			rollback()
			return nil, err
		}
		if err := s.inventory.Reserve(item.ProductID, item.Quantity); err != nil {
			rollback()
			return nil, fmt.Errorf("cannot reserve %d x %s: %w", item.Quantity, product.Name, err)
		}
		reserved = append(reserved, reservedItem{productID: item.ProductID, quantity: item.Quantity})

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Subtotal:  subtotal,
		})
		totalAmount = totalAmount.Add(subtotal)
	}

	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         userID,
		Items:          orderItems,
		TotalAmount:    totalAmount,
		Status:         models.OrderStatusPending,
		IdempotencyKey: key,
	}
	if err := s.orderRepo.Create(order); err != nil {
		rollback()
		return nil, fmt.Errorf("failed to create order in repository: %w", err)
	}
	return order, nil
}

// settle runs the payment step for a PENDING order and, on success, advances
// it PENDING -> PAID -> PROCESSING.
func (s *OrderService) settle(order *models.Order, method, key string) error {
	if _, err := s.payments.ProcessPayment(order.UserID, order.ID, order.TotalAmount, method, key); err != nil {
		return err
	}

	status, err := models.AdvanceStatus(order.Status, models.OrderStatusPaid)
	if err != nil {
		return err
	}
	status, err = models.AdvanceStatus(status, models.OrderStatusProcessing)
	if err != nil {
		return err
	}
	order.Status = status
	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to persist order status: %w", err)
	}
	return nil
}

// CancelOrder cancels an order that has not shipped yet and releases its
// inventory holds. Only the owner or an admin may cancel.
//
// The cancellation runs under the same per-key lock as the order's creation
// and re-reads the row inside it, so a cancel issued while CreateOrder is
// mid-flight waits for the creation to finish instead of interleaving with
// it and being overwritten by the settle step.
func (s *OrderService) CancelOrder(callerID, orderID string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(callerID, order); err != nil {
		return nil, err
	}

	err = s.locks.WithLock("order:"+order.IdempotencyKey, func() error {
		fresh, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		order = fresh
		if order.Status == models.OrderStatusCancelled {
			return nil
		}

		status, err := models.CancelStatus(order.Status)
		if err != nil {
			return err
		}

		before := *order
		for _, item := range order.Items {
			if err := s.inventory.Release(item.ProductID, item.Quantity); err != nil {
				log.Printf("Warning: failed to release %d x %s for cancelled order %s: %v",
					item.Quantity, item.ProductID, order.ID, err)
			}
		}
		order.Status = status
		if err := s.orderRepo.Update(order); err != nil {
			return fmt.Errorf("failed to persist cancellation: %w", err)
		}

		s.notifier.Notify(order.UserID, notifier.KindOrderCancelled,
			fmt.Sprintf("Order %s has been cancelled.", order.ID))
		s.auditor.RecordChange("order", order.ID, before, *order)
		s.publishOrderEvent("order.cancelled", order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus advances an order along the linear progression. This is
// the admin flow; cancellation goes through CancelOrder. Moving to SHIPPED
// notifies the customer; moving to DELIVERED consumes the reserved stock.
//
// Like CancelOrder, the mutation runs under the order's per-key lock with a
// re-read inside, so it serializes with an in-flight creation for the key.
func (s *OrderService) UpdateOrderStatus(orderID string, target models.OrderStatus) (*models.Order, error) {
	if target == models.OrderStatusCancelled {
		return nil, fmt.Errorf("use the cancellation flow to cancel an order: %w", models.ErrInvalidStatusTransition)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	err = s.locks.WithLock("order:"+order.IdempotencyKey, func() error {
		fresh, err := s.orderRepo.GetByID(orderID)
		if err != nil {
			return err
		}
		order = fresh

		status, err := models.AdvanceStatus(order.Status, target)
		if err != nil {
			return err
		}

		if status == models.OrderStatusDelivered {
			if err := s.fulfillItems(order); err != nil {
				return err
			}
		}

		before := *order
		order.Status = status
		if err := s.orderRepo.Update(order); err != nil {
			return fmt.Errorf("failed to persist order status: %w", err)
		}

		if status == models.OrderStatusShipped {
			s.notifier.Notify(order.UserID, notifier.KindOrderShipped,
				fmt.Sprintf("Order %s has shipped.", order.ID))
		}
		s.auditor.RecordChange("order", order.ID, before, *order)
		s.publishOrderEvent("order.status_updated", order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// fulfillItems consumes the reserved stock for every line item. Fulfillment
// is all-or-nothing: if a line fails, lines already consumed in this call
// are restored so the order keeps its holds intact.
func (s *OrderService) fulfillItems(order *models.Order) error {
	var fulfilled []reservedItem
	for _, item := range order.Items {
		if err := s.inventory.Fulfill(item.ProductID, item.Quantity); err != nil {
			for _, done := range fulfilled {
				if restoreErr := s.inventory.Restore(done.productID, done.quantity); restoreErr != nil {
					log.Printf("Warning: failed to restore %d x %s after aborted delivery of order %s: %v",
						done.quantity, done.productID, order.ID, restoreErr)
				}
			}
			return fmt.Errorf("cannot fulfill order %s: %w", order.ID, err)
		}
		fulfilled = append(fulfilled, reservedItem{productID: item.ProductID, quantity: item.Quantity})
	}
	return nil
}

// authorize checks that the caller owns the order or is an administrator.
func (s *OrderService) authorize(callerID string, order *models.Order) error {
	if callerID == order.UserID {
		return nil
	}
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil || !caller.IsAdmin() {
		return fmt.Errorf("user %s may not access order %s: %w", callerID, order.ID, models.ErrAccessDenied)
	}
	return nil
}

// publishOrderEvent emits an order lifecycle event to the message broker.
// Publishing is best-effort; failures are logged and swallowed.
func (s *OrderService) publishOrderEvent(event string, order *models.Order) {
	if s.mqClient == nil {
		return
	}
	payload := map[string]interface{}{
		"event":   event,
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	}
	if err := s.mqClient.PublishJSON(rabbitmq.OrderEventQueue, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event, order.ID, err)
	}
}
