package payment

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for payment and transaction persistence.
type Repository interface {
	// Create persists a new payment
	Create(ctx context.Context, payment *Payment) error

	// GetByID retrieves a payment by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// Update writes back the mutable payment fields (captured amount,
	// charge status, activity, card metadata)
	Update(ctx context.Context, payment *Payment) error

	// AddTransaction appends a transaction to the payment's audit trail
	AddTransaction(ctx context.Context, txn *Transaction) error

	// LatestSuccessfulTransaction returns the most recent successful
	// transaction of the given kind, or nil when none exists
	LatestSuccessfulTransaction(ctx context.Context, paymentID uuid.UUID, kind TransactionKind) (*Transaction, error)

	// ListTransactions returns the payment's transactions, newest first
	ListTransactions(ctx context.Context, paymentID uuid.UUID) ([]*Transaction, error)
}
