package services

import (
	"log"

	"github.com/shopspring/decimal"
)

// PaymentGateway executes charges with an external payment provider.
type PaymentGateway interface {
	Charge(amount decimal.Decimal, method string) error
}

// StubGateway is a payment gateway that accepts every charge. It stands in
// for a real provider integration.
type StubGateway struct{}

// NewStubGateway creates a new StubGateway.
func NewStubGateway() *StubGateway {
	return &StubGateway{}
}

// Charge always succeeds.
func (g *StubGateway) Charge(amount decimal.Decimal, method string) error {
	log.Printf("Stub gateway charged %s via %s", amount.StringFixed(2), method)
	return nil
}
