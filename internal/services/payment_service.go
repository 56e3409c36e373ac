package services

import (
	"fmt"
	"log"

	"orderflow/internal/audit"
	"orderflow/internal/models"
	"orderflow/internal/notifier"
	"orderflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentService is the idempotency gate in front of the payment gateway.
// At most one payment row exists per idempotency key; a key whose payment
// already completed is returned as-is with no new side effects.
type PaymentService struct {
	paymentRepo repositories.PaymentRepository
	orderRepo   repositories.OrderRepository
	userRepo    repositories.UserRepository
	gateway     PaymentGateway
	notifier    notifier.Notifier
	auditor     audit.Auditor
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	gateway PaymentGateway,
	n notifier.Notifier,
	auditor audit.Auditor,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		notifier:    n,
		auditor:     auditor,
	}
}

// GetPaymentByID retrieves a single payment. Only the owner of the paid
// order or an admin may read it; the record carries the idempotency key.
func (s *PaymentService) GetPaymentByID(callerID, id string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.GetByID(payment.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(callerID, order); err != nil {
		return nil, err
	}
	return payment, nil
}

// ProcessPayment charges an order. All preconditions are checked before any
// state changes: the order must exist and be PENDING, the caller must be its
// owner or an admin, and amount must be positive and equal the order total.
//
// The idempotency rule: a COMPLETED payment for the key is returned
// unchanged; a non-completed one is reused for this attempt with a fresh
// transaction id; otherwise a new PENDING row is created. The gateway
// outcome (COMPLETED or FAILED) is persisted before returning.
func (s *PaymentService) ProcessPayment(callerID, orderID string, amount decimal.Decimal, method, idempotencyKey string) (*models.Payment, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if !amount.IsPositive() {
		return nil, fmt.Errorf("payment amount must be positive, got %s", amount.StringFixed(2))
	}
	if method == "" {
		return nil, fmt.Errorf("payment method is required")
	}

	if err := s.authorize(callerID, order); err != nil {
		return nil, err
	}

	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("order %s is %s, payment requires PENDING: %w",
			order.ID, order.Status, models.ErrInvalidStatusTransition)
	}
	if !amount.Equal(order.TotalAmount) {
		return nil, fmt.Errorf("amount %s does not match order total %s: %w",
			amount.StringFixed(2), order.TotalAmount.StringFixed(2), models.ErrAmountMismatch)
	}

	payment, err := s.paymentRepo.GetByIdempotencyKey(idempotencyKey)
	if err != nil {
		return nil, err
	}
	if payment != nil && payment.Status == models.PaymentStatusCompleted {
		// Replay of an already-settled payment: no new transaction id, no
		// new notifications.
		return payment, nil
	}
	if payment == nil {
		payment = &models.Payment{
			OrderID:        order.ID,
			Amount:         amount,
			Method:         method,
			IdempotencyKey: idempotencyKey,
		}
	}

	before := *payment
	payment.Status = models.PaymentStatusPending
	payment.TransactionID = uuid.New().String()
	if err := s.paymentRepo.Save(payment); err != nil {
		return nil, fmt.Errorf("failed to record payment attempt: %w", err)
	}

	chargeErr := s.gateway.Charge(amount, method)
	if chargeErr != nil {
		payment.Status = models.PaymentStatusFailed
		if err := s.paymentRepo.Save(payment); err != nil {
			log.Printf("Warning: failed to persist FAILED payment %s: %v", payment.ID, err)
		}
		return payment, fmt.Errorf("gateway rejected charge for order %s: %v: %w",
			order.ID, chargeErr, models.ErrPaymentFailed)
	}

	payment.Status = models.PaymentStatusCompleted
	if err := s.paymentRepo.Save(payment); err != nil {
		return nil, fmt.Errorf("failed to persist completed payment: %w", err)
	}

	s.notifier.Notify(order.UserID, notifier.KindPaymentConfirmation,
		fmt.Sprintf("Payment of %s for order %s was successful.", amount.StringFixed(2), order.ID))
	s.auditor.RecordChange("payment", payment.ID, before, *payment)

	return payment, nil
}

// authorize checks that the caller owns the order or is an administrator.
func (s *PaymentService) authorize(callerID string, order *models.Order) error {
	if callerID == order.UserID {
		return nil
	}
	caller, err := s.userRepo.GetByID(callerID)
	if err != nil || !caller.IsAdmin() {
		return fmt.Errorf("user %s may not access payments for order %s: %w", callerID, order.ID, models.ErrAccessDenied)
	}
	return nil
}
