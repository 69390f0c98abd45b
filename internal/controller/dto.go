package controller

import (
	"time"

	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string-encoded decimal amounts,
// validation tags). Controllers convert these to domain types before
// calling business logic.

// CreatePaymentRequest holds the input for creating a payment.
type CreatePaymentRequest struct {
	Gateway    string  `json:"gateway"`
	Total      string  `json:"total" validate:"required"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	CustomerID *string `json:"customer_id,omitempty"`
}

// ChargeRequest holds the input for process and authorize calls, which
// need a payment-method token from the checkout flow.
type ChargeRequest struct {
	Token              string `json:"token" validate:"required"`
	StorePaymentMethod bool   `json:"store_payment_method"`
}

// AmountRequest holds the optional partial amount for capture and
// refund calls. When absent the operation uses the payment's default.
type AmountRequest struct {
	Amount *string `json:"amount,omitempty"`
}

// --- Response DTOs ---

// CardResponse represents stored card metadata in API responses.
type CardResponse struct {
	Brand       string `json:"brand,omitempty"`
	FirstDigits string `json:"first_digits,omitempty"`
	LastDigits  string `json:"last_digits,omitempty"`
	ExpMonth    int    `json:"exp_month,omitempty"`
	ExpYear     int    `json:"exp_year,omitempty"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID             string        `json:"id"`
	Gateway        string        `json:"gateway"`
	IsActive       bool          `json:"is_active"`
	ChargeStatus   string        `json:"charge_status"`
	Total          string        `json:"total"`
	CapturedAmount string        `json:"captured_amount"`
	Currency       string        `json:"currency"`
	CustomerID     *string       `json:"customer_id,omitempty"`
	Card           *CardResponse `json:"card,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TransactionResponse represents a transaction in API responses.
type TransactionResponse struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Kind      string    `json:"kind"`
	Token     string    `json:"token,omitempty"`
	IsSuccess bool      `json:"is_success"`
	Amount    string    `json:"amount"`
	Currency  string    `json:"currency"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// GatewayInfoResponse represents an available gateway backend.
type GatewayInfoResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PaymentSourceResponse represents a stored payment method.
type PaymentSourceResponse struct {
	ID      string        `json:"id"`
	Gateway string        `json:"gateway"`
	Card    *CardResponse `json:"card,omitempty"`
}

// ClientTokenResponse carries the token a frontend needs to initialize
// the gateway's payment form.
type ClientTokenResponse struct {
	ClientToken string `json:"client_token"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromPayment converts a domain payment to API response.
func FromPayment(p *payment.Payment) *PaymentResponse {
	resp := &PaymentResponse{
		ID:             p.ID.String(),
		Gateway:        p.Gateway,
		IsActive:       p.IsActive,
		ChargeStatus:   string(p.ChargeStatus),
		Total:          p.Total.String(),
		CapturedAmount: p.CapturedAmount.String(),
		Currency:       p.Currency,
		CustomerID:     p.CustomerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Card != (payment.CardInfo{}) {
		resp.Card = &CardResponse{
			Brand:       p.Card.Brand,
			FirstDigits: p.Card.FirstDigits,
			LastDigits:  p.Card.LastDigits,
			ExpMonth:    p.Card.ExpMonth,
			ExpYear:     p.Card.ExpYear,
		}
	}
	return resp
}

// FromTransaction converts a domain transaction to API response.
func FromTransaction(t *payment.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:        t.ID.String(),
		PaymentID: t.PaymentID.String(),
		Kind:      string(t.Kind),
		Token:     t.Token,
		IsSuccess: t.IsSuccess,
		Amount:    t.Amount.String(),
		Currency:  t.Currency,
		Error:     t.Error,
		CreatedAt: t.CreatedAt,
	}
}

// FromGatewayInfo converts backend info to API response.
func FromGatewayInfo(info gateways.Info) *GatewayInfoResponse {
	return &GatewayInfoResponse{ID: info.ID, Name: info.Name}
}

// FromCustomerSource converts a stored payment method to API response.
func FromCustomerSource(s gateways.CustomerSource) *PaymentSourceResponse {
	resp := &PaymentSourceResponse{ID: s.ID, Gateway: s.Gateway}
	if s.Card != nil {
		resp.Card = &CardResponse{
			Brand:       s.Card.Brand,
			FirstDigits: s.Card.FirstDigits,
			LastDigits:  s.Card.LastDigits,
			ExpMonth:    s.Card.ExpMonth,
			ExpYear:     s.Card.ExpYear,
		}
	}
	return resp
}
