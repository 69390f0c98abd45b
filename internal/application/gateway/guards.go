package gateway

import (
	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/shopspring/decimal"
)

// Guards run strictly before any backend dispatch. A guard failure aborts
// the call with a PaymentError and never produces a transaction record.

func requireActivePayment(p *payment.Payment) error {
	if !p.IsActive {
		return errors.NewPaymentError(errors.CodeInactive, "This payment is no longer active.")
	}
	return nil
}

func cleanAuthorize(p *payment.Payment) error {
	if !p.CanAuthorize() {
		return errors.NewPaymentError(errors.CodeNotAuthorizable, "Charged payments cannot be authorized again.")
	}
	return nil
}

func cleanCapture(p *payment.Payment, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.NewPaymentError(errors.CodeInvalidAmount, "Amount should be a positive number.")
	}
	if !p.CanCapture() {
		return errors.NewPaymentError(errors.CodeNotCapturable, "This payment cannot be captured.")
	}
	if amount.GreaterThan(p.Total) || amount.GreaterThan(p.ChargeAmount()) {
		return errors.NewPaymentError(errors.CodeInvalidAmount, "Unable to charge more than un-captured amount.")
	}
	return nil
}

func cleanRefund(p *payment.Payment, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return errors.NewPaymentError(errors.CodeInvalidAmount, "Amount should be a positive number.")
	}
	if amount.GreaterThan(p.CapturedAmount) {
		return errors.NewPaymentError(errors.CodeInvalidAmount, "Cannot refund more than captured.")
	}
	if !p.CanRefund() {
		return errors.NewPaymentError(errors.CodeNotRefundable, "This payment cannot be refunded.")
	}
	return nil
}
