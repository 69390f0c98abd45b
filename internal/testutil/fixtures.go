package testutil

import (
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// NewTestPayment returns an active, uncharged payment.
func NewTestPayment(gateway, total, currency string) *payment.Payment {
	p, err := payment.NewPayment(gateway, decimal.RequireFromString(total), currency)
	if err != nil {
		panic(err)
	}
	return p
}

// NewCapturedPayment returns a payment whose full total has been captured.
func NewCapturedPayment(gateway, total, currency string) *payment.Payment {
	p := NewTestPayment(gateway, total, currency)
	p.ApplyCapture(p.Total)
	return p
}

// NewInactivePayment returns a deactivated payment.
func NewInactivePayment(gateway, total, currency string) *payment.Payment {
	p := NewTestPayment(gateway, total, currency)
	p.IsActive = false
	return p
}
