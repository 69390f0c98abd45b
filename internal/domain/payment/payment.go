package payment

import (
	"time"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChargeStatus represents how much of the payment total has been collected.
type ChargeStatus string

const (
	ChargeStatusNotCharged        ChargeStatus = "not_charged"
	ChargeStatusPartiallyCharged  ChargeStatus = "partially_charged"
	ChargeStatusFullyCharged      ChargeStatus = "fully_charged"
	ChargeStatusPartiallyRefunded ChargeStatus = "partially_refunded"
	ChargeStatusFullyRefunded     ChargeStatus = "fully_refunded"
)

// CardInfo holds non-sensitive card metadata returned by gateways.
type CardInfo struct {
	Brand       string
	FirstDigits string
	LastDigits  string
	ExpMonth    int
	ExpYear     int
}

// Payment represents a customer's payment intent. It is created by the
// calling checkout context; the orchestration layer only mutates the
// captured amount, charge status, activity flag and card metadata, and
// appends transactions.
type Payment struct {
	ID             uuid.UUID
	Gateway        string // backend identifier, may be empty until configured
	IsActive       bool
	ChargeStatus   ChargeStatus
	Total          decimal.Decimal
	CapturedAmount decimal.Decimal
	Currency       string
	Token          string // payment-method token issued during checkout
	CustomerID     *string
	Card           CardInfo
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPayment creates a new payment record.
func NewPayment(gateway string, total decimal.Decimal, currency string) (*Payment, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, errors.NewValidationError("total", "must be greater than 0")
	}
	if len(currency) != 3 {
		return nil, errors.NewValidationError("currency", "must be a 3-letter ISO code")
	}

	now := time.Now()
	return &Payment{
		ID:             uuid.New(),
		Gateway:        gateway,
		IsActive:       true,
		ChargeStatus:   ChargeStatusNotCharged,
		Total:          total,
		CapturedAmount: decimal.Zero,
		Currency:       currency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ChargeAmount returns the amount still available for capture.
func (p *Payment) ChargeAmount() decimal.Decimal {
	return p.Total.Sub(p.CapturedAmount)
}

// CanAuthorize reports whether a new authorization may be requested.
func (p *Payment) CanAuthorize() bool {
	return p.IsActive && p.ChargeStatus == ChargeStatusNotCharged
}

// CanCapture reports whether funds may still be captured.
func (p *Payment) CanCapture() bool {
	return p.IsActive && p.ChargeStatus == ChargeStatusNotCharged
}

// CanVoid reports whether the authorization may be voided.
func (p *Payment) CanVoid() bool {
	return p.IsActive && p.ChargeStatus == ChargeStatusNotCharged
}

// CanRefund reports whether captured funds may be returned.
func (p *Payment) CanRefund() bool {
	switch p.ChargeStatus {
	case ChargeStatusPartiallyCharged, ChargeStatusFullyCharged, ChargeStatusPartiallyRefunded:
		return true
	}
	return false
}

// ApplyCapture records a successful capture of the given amount.
func (p *Payment) ApplyCapture(amount decimal.Decimal) {
	p.CapturedAmount = p.CapturedAmount.Add(amount)
	p.ChargeStatus = ChargeStatusPartiallyCharged
	if p.ChargeAmount().LessThanOrEqual(decimal.Zero) {
		p.ChargeStatus = ChargeStatusFullyCharged
	}
	p.UpdatedAt = time.Now()
}

// ApplyRefund records a successful refund of the given amount. A fully
// refunded payment is deactivated.
func (p *Payment) ApplyRefund(amount decimal.Decimal) {
	p.CapturedAmount = p.CapturedAmount.Sub(amount)
	p.ChargeStatus = ChargeStatusPartiallyRefunded
	if p.CapturedAmount.LessThanOrEqual(decimal.Zero) {
		p.ChargeStatus = ChargeStatusFullyRefunded
		p.IsActive = false
	}
	p.UpdatedAt = time.Now()
}

// ApplyVoid deactivates the payment after a successful void.
func (p *Payment) ApplyVoid() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// UpdateCardDetails stores card metadata carried by a gateway response.
func (p *Payment) UpdateCardDetails(card CardInfo) {
	p.Card = card
	p.UpdatedAt = time.Now()
}
