package models

import "errors"

// Domain error kinds. Services wrap these with fmt.Errorf("...: %w", ...)
// so callers can match with errors.Is while still seeing context.
var (
	ErrInsufficientInventory         = errors.New("insufficient inventory")
	ErrInsufficientReservedInventory = errors.New("insufficient reserved inventory")
	ErrInvalidStatusTransition       = errors.New("invalid status transition")
	ErrAmountMismatch                = errors.New("payment amount does not match order total")
	ErrAccessDenied                  = errors.New("access denied")
	ErrOrderNotFound                 = errors.New("order not found")
	ErrProductNotFound               = errors.New("product not found")
	ErrPaymentNotFound               = errors.New("payment not found")
	ErrPaymentFailed                 = errors.New("payment failed")
)
