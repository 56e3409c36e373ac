package services_test

import (
	"errors"
	"testing"

	"orderflow/internal/models"
	"orderflow/internal/notifier"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pendingOrder seeds a PENDING order directly, bypassing the orchestrator,
// so the gate's preconditions can be exercised in isolation.
func pendingOrder(f *fixture, total string) *models.Order {
	order := &models.Order{
		UserID:         customerID,
		TotalAmount:    decimal.RequireFromString(total),
		Status:         models.OrderStatusPending,
		IdempotencyKey: "order-key",
	}
	if err := f.orderRepo.Create(order); err != nil {
		panic(err)
	}
	return order
}

func TestPaymentService_ProcessPayment(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")

	payment, err := f.payments.ProcessPayment(customerID, order.ID,
		decimal.RequireFromString("59.97"), "card", "pay-key")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, order.ID, payment.OrderID)
	assert.NotEmpty(t, payment.TransactionID)
	assert.True(t, payment.Amount.Equal(order.TotalAmount))
	assert.Equal(t, 1, f.notifier.count(notifier.KindPaymentConfirmation))
	assert.Len(t, f.auditor.changes, 1)
}

func TestPaymentService_ProcessPayment_IdempotentReplay(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")
	amount := decimal.RequireFromString("59.97")

	first, err := f.payments.ProcessPayment(customerID, order.ID, amount, "card", "pay-key")
	require.NoError(t, err)
	second, err := f.payments.ProcessPayment(customerID, order.ID, amount, "card", "pay-key")
	require.NoError(t, err)

	// The completed payment is returned unchanged: same row, same
	// transaction id, and no second notification
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, 1, f.paymentRepo.Count())
	assert.Equal(t, 1, f.notifier.count(notifier.KindPaymentConfirmation))
}

func TestPaymentService_ProcessPayment_ReusesFailedRow(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")
	amount := decimal.RequireFromString("59.97")
	f.gateway.errs = []error{errors.New("card declined")}

	failed, err := f.payments.ProcessPayment(customerID, order.ID, amount, "card", "pay-key")
	assert.ErrorIs(t, err, models.ErrPaymentFailed)
	require.NotNil(t, failed)
	assert.Equal(t, models.PaymentStatusFailed, failed.Status)
	assert.Equal(t, 0, f.notifier.count(notifier.KindPaymentConfirmation))

	// The retry reuses the same row with a fresh transaction id
	retried, err := f.payments.ProcessPayment(customerID, order.ID, amount, "card", "pay-key")
	require.NoError(t, err)
	assert.Equal(t, failed.ID, retried.ID)
	assert.NotEqual(t, failed.TransactionID, retried.TransactionID)
	assert.Equal(t, models.PaymentStatusCompleted, retried.Status)
	assert.Equal(t, 1, f.paymentRepo.Count())
}

func TestPaymentService_ProcessPayment_AmountMismatch(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")

	_, err := f.payments.ProcessPayment(customerID, order.ID,
		decimal.RequireFromString("50.00"), "card", "pay-key")
	assert.ErrorIs(t, err, models.ErrAmountMismatch)

	// No payment row was created for the rejected attempt
	assert.Equal(t, 0, f.paymentRepo.Count())
}

func TestPaymentService_ProcessPayment_Preconditions(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")
	amount := decimal.RequireFromString("59.97")

	// Unknown order
	_, err := f.payments.ProcessPayment(customerID, "missing", amount, "card", "k1")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	// Non-positive amount
	_, err = f.payments.ProcessPayment(customerID, order.ID, decimal.Zero, "card", "k2")
	assert.Error(t, err)

	// Missing method
	_, err = f.payments.ProcessPayment(customerID, order.ID, amount, "", "k3")
	assert.Error(t, err)

	// Caller is neither owner nor admin
	_, err = f.payments.ProcessPayment(strangerID, order.ID, amount, "card", "k4")
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	// Admins may pay on behalf of the owner
	payment, err := f.payments.ProcessPayment(adminID, order.ID, amount, "card", "k5")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
}

func TestPaymentService_ProcessPayment_RequiresPendingOrder(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "59.97")
	order.Status = models.OrderStatusProcessing
	require.NoError(t, f.orderRepo.Update(order))

	_, err := f.payments.ProcessPayment(customerID, order.ID,
		decimal.RequireFromString("59.97"), "card", "pay-key")
	assert.ErrorIs(t, err, models.ErrInvalidStatusTransition)
	assert.Equal(t, 0, f.paymentRepo.Count())
}

func TestPaymentService_GetPaymentByID_AccessControl(t *testing.T) {
	f := newFixture()
	order := pendingOrder(f, "50.00")

	payment, err := f.payments.ProcessPayment(customerID, order.ID, order.TotalAmount, "card", "pay-key")
	require.NoError(t, err)

	got, err := f.payments.GetPaymentByID(customerID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)

	// The record carries the idempotency key, so strangers get nothing
	_, err = f.payments.GetPaymentByID(strangerID, payment.ID)
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	_, err = f.payments.GetPaymentByID(adminID, payment.ID)
	assert.NoError(t, err)

	_, err = f.payments.GetPaymentByID(customerID, "missing")
	assert.ErrorIs(t, err, models.ErrPaymentNotFound)
}
