package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a transactional outbox record for a gateway transaction event.
// It is written in the same database transaction as the transaction record
// itself and published to the event stream by the worker.
type Entry struct {
	ID            uuid.UUID
	PaymentID     uuid.UUID
	TransactionID uuid.UUID
	EventType     string
	Payload       map[string]any
	Status        Status
	RetryCount    int
	MaxRetries    int
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// EventTransactionRecorded is emitted for every persisted transaction,
// successful or failed.
const EventTransactionRecorded = "transaction.recorded"

func NewEntry(paymentID, transactionID uuid.UUID, eventType string, payload map[string]any) *Entry {
	return &Entry{
		ID:            uuid.New(),
		PaymentID:     paymentID,
		TransactionID: transactionID,
		EventType:     eventType,
		Payload:       payload,
		Status:        StatusPending,
		RetryCount:    0,
		MaxRetries:    5,
		CreatedAt:     time.Now(),
	}
}

// Exhausted reports whether the entry has used up its publish attempts.
func (e *Entry) Exhausted() bool {
	return e.RetryCount >= e.MaxRetries
}
