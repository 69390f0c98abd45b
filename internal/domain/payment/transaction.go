package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the semantic category of one gateway interaction.
type TransactionKind string

const (
	KindAuth    TransactionKind = "auth"
	KindCapture TransactionKind = "capture"
	KindRefund  TransactionKind = "refund"
	KindVoid    TransactionKind = "void"
	KindConfirm TransactionKind = "confirm"
)

// Transaction is an append-only audit record of one gateway interaction.
// It is never mutated after creation; both successful and failed calls
// produce one.
type Transaction struct {
	ID              uuid.UUID
	PaymentID       uuid.UUID
	Kind            TransactionKind
	Token           string // gateway-issued id used to chain follow-up calls
	IsSuccess       bool
	Amount          decimal.Decimal
	Currency        string
	Error           *string
	GatewayResponse map[string]any
	CreatedAt       time.Time
}

// NewTransaction creates a transaction record for one gateway interaction.
func NewTransaction(
	paymentID uuid.UUID,
	kind TransactionKind,
	token string,
	isSuccess bool,
	amount decimal.Decimal,
	currency string,
	errMsg *string,
	response map[string]any,
) *Transaction {
	return &Transaction{
		ID:              uuid.New(),
		PaymentID:       paymentID,
		Kind:            kind,
		Token:           token,
		IsSuccess:       isSuccess,
		Amount:          amount,
		Currency:        currency,
		Error:           errMsg,
		GatewayResponse: response,
		CreatedAt:       time.Now(),
	}
}
