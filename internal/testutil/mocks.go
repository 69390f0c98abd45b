package testutil

import (
	"context"
	"sync"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/domain/outbox"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/google/uuid"
)

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu           sync.Mutex
	payments     map[uuid.UUID]*payment.Payment
	transactions map[uuid.UUID][]*payment.Transaction

	AddTransactionCalls int
	UpdateCalls         int

	CreateFunc                      func(ctx context.Context, p *payment.Payment) error
	GetByIDFunc                     func(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	UpdateFunc                      func(ctx context.Context, p *payment.Payment) error
	AddTransactionFunc              func(ctx context.Context, txn *payment.Transaction) error
	LatestSuccessfulTransactionFunc func(ctx context.Context, paymentID uuid.UUID, kind payment.TransactionKind) (*payment.Transaction, error)
	ListTransactionsFunc            func(ctx context.Context, paymentID uuid.UUID) ([]*payment.Transaction, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments:     make(map[uuid.UUID]*payment.Payment),
		transactions: make(map[uuid.UUID][]*payment.Transaction),
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, errors.ErrPaymentNotFound
	}
	return p, nil
}

func (m *MockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
	return nil
}

func (m *MockPaymentRepository) AddTransaction(ctx context.Context, txn *payment.Transaction) error {
	m.mu.Lock()
	m.AddTransactionCalls++
	m.mu.Unlock()
	if m.AddTransactionFunc != nil {
		return m.AddTransactionFunc(ctx, txn)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[txn.PaymentID] = append(m.transactions[txn.PaymentID], txn)
	return nil
}

func (m *MockPaymentRepository) LatestSuccessfulTransaction(ctx context.Context, paymentID uuid.UUID, kind payment.TransactionKind) (*payment.Transaction, error) {
	if m.LatestSuccessfulTransactionFunc != nil {
		return m.LatestSuccessfulTransactionFunc(ctx, paymentID, kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txns := m.transactions[paymentID]
	for i := len(txns) - 1; i >= 0; i-- {
		if txns[i].Kind == kind && txns[i].IsSuccess {
			return txns[i], nil
		}
	}
	return nil, nil
}

func (m *MockPaymentRepository) ListTransactions(ctx context.Context, paymentID uuid.UUID) ([]*payment.Transaction, error) {
	if m.ListTransactionsFunc != nil {
		return m.ListTransactionsFunc(ctx, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	txns := m.transactions[paymentID]
	out := make([]*payment.Transaction, len(txns))
	for i, txn := range txns {
		out[len(txns)-1-i] = txn
	}
	return out, nil
}

// Transactions returns the recorded transactions for a payment in
// insertion order.
func (m *MockPaymentRepository) Transactions(paymentID uuid.UUID) []*payment.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*payment.Transaction(nil), m.transactions[paymentID]...)
}

// --- Transaction Manager Mock ---

// MockTransactionManager executes the callback without a real database
// transaction.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Outbox Repository Mock ---

// MockOutboxRepository is a mock implementation of outbox.Repository.
type MockOutboxRepository struct {
	mu      sync.Mutex
	Entries []*outbox.Entry

	InsertFunc        func(ctx context.Context, entry *outbox.Entry) error
	GetPendingFunc    func(ctx context.Context, limit int) ([]*outbox.Entry, error)
	MarkPublishedFunc func(ctx context.Context, id uuid.UUID) error
	MarkFailedFunc    func(ctx context.Context, id uuid.UUID) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Insert(ctx context.Context, entry *outbox.Entry) error {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, entry)
	return nil
}

func (m *MockOutboxRepository) GetPending(ctx context.Context, limit int) ([]*outbox.Entry, error) {
	if m.GetPendingFunc != nil {
		return m.GetPendingFunc(ctx, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var pending []*outbox.Entry
	for _, e := range m.Entries {
		if e.Status == outbox.StatusPending && len(pending) < limit {
			pending = append(pending, e)
		}
	}
	return pending, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			e.Status = outbox.StatusPublished
		}
	}
	return nil
}

func (m *MockOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	if m.MarkFailedFunc != nil {
		return m.MarkFailedFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.ID == id {
			e.RetryCount++
			if e.Exhausted() {
				e.Status = outbox.StatusFailed
			}
		}
	}
	return nil
}

// --- Gateway Backend Stub ---

// StubBackend is a scripted gateways.Backend for orchestration tests.
// Unset call funcs default to a successful normalized response.
type StubBackend struct {
	BackendName string

	AuthorizeFunc          func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	CaptureFunc            func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	RefundFunc             func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	VoidFunc               func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	ConfirmFunc            func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	ProcessFunc            func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error)
	ListPaymentSourcesFunc func(ctx context.Context, customerID string) ([]gateways.CustomerSource, error)
	GetClientTokenFunc     func(ctx context.Context, data gateways.PaymentData) (string, error)
}

func NewStubBackend(name string) *StubBackend {
	return &StubBackend{BackendName: name}
}

func (s *StubBackend) Name() string { return s.BackendName }

func (s *StubBackend) ok(data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	return &gateways.GatewayResponse{
		IsSuccess:     true,
		TransactionID: "stub-" + uuid.New().String()[:8],
		Amount:        data.Amount,
		Currency:      data.Currency,
		Raw:           map[string]any{"stub": true},
	}, nil
}

func (s *StubBackend) Authorize(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.AuthorizeFunc != nil {
		return s.AuthorizeFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) Capture(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.CaptureFunc != nil {
		return s.CaptureFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) Refund(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.RefundFunc != nil {
		return s.RefundFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) Void(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.VoidFunc != nil {
		return s.VoidFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) Confirm(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.ConfirmFunc != nil {
		return s.ConfirmFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) Process(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
	if s.ProcessFunc != nil {
		return s.ProcessFunc(ctx, data)
	}
	return s.ok(data)
}

func (s *StubBackend) ListPaymentSources(ctx context.Context, customerID string) ([]gateways.CustomerSource, error) {
	if s.ListPaymentSourcesFunc != nil {
		return s.ListPaymentSourcesFunc(ctx, customerID)
	}
	return nil, nil
}

func (s *StubBackend) GetClientToken(ctx context.Context, data gateways.PaymentData) (string, error) {
	if s.GetClientTokenFunc != nil {
		return s.GetClientTokenFunc(ctx, data)
	}
	return "stub-client-token", nil
}
