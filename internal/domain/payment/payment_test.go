package payment_test

import (
	"testing"

	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNewPayment_Valid(t *testing.T) {
	p, err := payment.NewPayment("sandbox", dec("100.00"), "USD")
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, payment.ChargeStatusNotCharged, p.ChargeStatus)
	assert.Equal(t, "sandbox", p.Gateway)
	assert.True(t, p.CapturedAmount.IsZero())
	assert.True(t, p.Total.Equal(dec("100.00")))
}

func TestNewPayment_InvalidTotal(t *testing.T) {
	_, err := payment.NewPayment("sandbox", dec("0"), "USD")
	assert.Error(t, err)

	_, err = payment.NewPayment("sandbox", dec("-5"), "USD")
	assert.Error(t, err)
}

func TestNewPayment_InvalidCurrency(t *testing.T) {
	_, err := payment.NewPayment("sandbox", dec("10"), "US")
	assert.Error(t, err)

	_, err = payment.NewPayment("sandbox", dec("10"), "")
	assert.Error(t, err)
}

func TestPayment_ChargeAmount(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.CapturedAmount = dec("30.00")
	assert.True(t, p.ChargeAmount().Equal(dec("70.00")))
}

func TestPayment_Capabilities(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	assert.True(t, p.CanAuthorize())
	assert.True(t, p.CanCapture())
	assert.True(t, p.CanVoid())
	assert.False(t, p.CanRefund())

	p.ChargeStatus = payment.ChargeStatusFullyCharged
	assert.False(t, p.CanAuthorize())
	assert.False(t, p.CanCapture())
	assert.False(t, p.CanVoid())
	assert.True(t, p.CanRefund())

	p.ChargeStatus = payment.ChargeStatusFullyRefunded
	assert.False(t, p.CanRefund())

	p.ChargeStatus = payment.ChargeStatusNotCharged
	p.IsActive = false
	assert.False(t, p.CanAuthorize())
	assert.False(t, p.CanCapture())
	assert.False(t, p.CanVoid())
}

func TestPayment_ApplyCapture_Partial(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.ApplyCapture(dec("40.00"))

	assert.True(t, p.CapturedAmount.Equal(dec("40.00")))
	assert.Equal(t, payment.ChargeStatusPartiallyCharged, p.ChargeStatus)
	assert.True(t, p.IsActive)
}

func TestPayment_ApplyCapture_Full(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.ApplyCapture(dec("100.00"))

	assert.True(t, p.CapturedAmount.Equal(dec("100.00")))
	assert.Equal(t, payment.ChargeStatusFullyCharged, p.ChargeStatus)
}

func TestPayment_ApplyRefund_Partial(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.ApplyCapture(dec("100.00"))
	p.ApplyRefund(dec("40.00"))

	assert.True(t, p.CapturedAmount.Equal(dec("60.00")))
	assert.Equal(t, payment.ChargeStatusPartiallyRefunded, p.ChargeStatus)
	assert.True(t, p.IsActive)
}

func TestPayment_ApplyRefund_Full_Deactivates(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.ApplyCapture(dec("100.00"))
	p.ApplyRefund(dec("100.00"))

	assert.True(t, p.CapturedAmount.IsZero())
	assert.Equal(t, payment.ChargeStatusFullyRefunded, p.ChargeStatus)
	assert.False(t, p.IsActive)
}

func TestPayment_ApplyVoid(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.ApplyVoid()
	assert.False(t, p.IsActive)
}

func TestPayment_UpdateCardDetails(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	p.UpdateCardDetails(payment.CardInfo{
		Brand:       "visa",
		FirstDigits: "411111",
		LastDigits:  "1111",
		ExpMonth:    12,
		ExpYear:     2030,
	})
	assert.Equal(t, "visa", p.Card.Brand)
	assert.Equal(t, "1111", p.Card.LastDigits)
}

func TestNewTransaction(t *testing.T) {
	p, _ := payment.NewPayment("sandbox", dec("100.00"), "USD")
	errMsg := "declined"
	txn := payment.NewTransaction(p.ID, payment.KindAuth, "tok-1", false, dec("100.00"), "USD", &errMsg, map[string]any{"code": "51"})

	assert.Equal(t, p.ID, txn.PaymentID)
	assert.Equal(t, payment.KindAuth, txn.Kind)
	assert.False(t, txn.IsSuccess)
	require.NotNil(t, txn.Error)
	assert.Equal(t, "declined", *txn.Error)
	assert.NotZero(t, txn.ID)
	assert.False(t, txn.CreatedAt.IsZero())
}
