package gateways

import (
	"context"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentData is the request-scoped snapshot of a payment sent to a
// backend for one call. It is never persisted.
type PaymentData struct {
	PaymentID   uuid.UUID
	Token       string // payment-method token or prior transaction token
	Amount      decimal.Decimal
	Currency    string
	CustomerID  string
	StoreSource bool
	Card        *CardInfo
}

// CardInfo holds non-sensitive card metadata.
type CardInfo struct {
	Brand       string
	FirstDigits string
	LastDigits  string
	ExpMonth    int
	ExpYear     int
}

// GatewayResponse is the normalized outcome a backend returns.
type GatewayResponse struct {
	IsSuccess     bool
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Error         string
	Card          *CardInfo
	Raw           map[string]any
}

// Validate checks the response for structural well-formedness. A response
// failing validation must not be trusted or persisted as-is.
func (r *GatewayResponse) Validate() error {
	if r == nil {
		return errors.ErrInvalidResponse
	}
	if r.TransactionID == "" {
		return errors.NewValidationError("transaction_id", "missing in gateway response")
	}
	if len(r.Currency) != 3 {
		return errors.NewValidationError("currency", "missing or malformed in gateway response")
	}
	if r.Amount.IsNegative() {
		return errors.NewValidationError("amount", "negative in gateway response")
	}
	return nil
}

// Info describes a registered gateway for listing purposes.
type Info struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CustomerSource is a stored payment source attached to a gateway customer.
type CustomerSource struct {
	ID      string
	Gateway string
	Card    *CardInfo
}

// Backend is the capability interface a payment provider integration
// implements. Every call method takes a PaymentData snapshot and returns
// a normalized GatewayResponse or an error.
type Backend interface {
	// Name returns the stable gateway identifier.
	Name() string
	// Authorize places a hold on funds.
	Authorize(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// Capture collects previously authorized funds.
	Capture(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// Refund returns captured funds.
	Refund(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// Void releases an authorization hold.
	Void(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// Confirm completes a pending authorization.
	Confirm(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// Process authorizes and captures in one step.
	Process(ctx context.Context, data PaymentData) (*GatewayResponse, error)
	// ListPaymentSources returns the customer's stored payment sources.
	ListPaymentSources(ctx context.Context, customerID string) ([]CustomerSource, error)
	// GetClientToken issues a token for client-side gateway SDKs.
	GetClientToken(ctx context.Context, data PaymentData) (string, error)
}
