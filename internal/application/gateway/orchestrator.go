package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/cassiomorais/gateway/internal/infrastructure/observability"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	// errorMsg is the fixed user-facing message substituted for any
	// gateway failure. Internal detail only ever reaches the logs.
	errorMsg = "Oops! Something went wrong."

	// genericTransactionError is surfaced when a failed transaction
	// carries no error of its own.
	genericTransactionError = "Transaction was unsuccessful"

	defaultCallTimeout = 30 * time.Second
)

// Orchestrator composes guard, dispatch, error classification and
// transaction persistence into the public payment operations. Each
// operation is a strictly sequential pipeline; the only blocking step is
// the backend call.
type Orchestrator struct {
	repo        payment.Repository
	registry    *gateways.Registry
	txManager   TransactionManager
	outbox      OutboxWriter
	logger      zerolog.Logger
	metrics     *observability.Metrics
	callTimeout time.Duration
}

type Option func(*Orchestrator)

// WithCallTimeout caps the duration of a single backend call.
func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.callTimeout = d }
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	repo payment.Repository,
	registry *gateways.Registry,
	txManager TransactionManager,
	outboxWriter OutboxWriter,
	logger zerolog.Logger,
	metrics *observability.Metrics,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		repo:        repo,
		registry:    registry,
		txManager:   txManager,
		outbox:      outboxWriter,
		logger:      logger,
		metrics:     metrics,
		callTimeout: defaultCallTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ListGateways returns the registered gateways. No payment state is read,
// so the active-payment guard does not apply.
func (o *Orchestrator) ListGateways() []gateways.Info {
	return o.registry.List()
}

// ListPaymentSources returns the stored payment sources of a gateway
// customer.
func (o *Orchestrator) ListPaymentSources(ctx context.Context, gatewayName, customerID string) ([]gateways.CustomerSource, error) {
	backend, _, err := o.registry.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return backend.ListPaymentSources(callCtx, customerID)
}

// GetClientToken issues a client-side token for the payment's gateway.
func (o *Orchestrator) GetClientToken(ctx context.Context, p *payment.Payment) (string, error) {
	backend, _, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return "", err
	}
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return backend.GetClientToken(callCtx, buildPaymentData(p, p.Token, p.Total, false))
}

// buildPaymentData takes the request-scoped snapshot handed to a backend.
func buildPaymentData(p *payment.Payment, token string, amount decimal.Decimal, storeSource bool) gateways.PaymentData {
	data := gateways.PaymentData{
		PaymentID:   p.ID,
		Token:       token,
		Amount:      amount,
		Currency:    p.Currency,
		StoreSource: storeSource,
	}
	if p.CustomerID != nil {
		data.CustomerID = *p.CustomerID
	}
	if p.Card != (payment.CardInfo{}) {
		card := gateways.CardInfo(p.Card)
		data.Card = &card
	}
	return data
}

// priorTransactionToken looks up the gateway token of the most recent
// successful transaction of the given kind. Follow-up operations must not
// be dispatched without it.
func (o *Orchestrator) priorTransactionToken(ctx context.Context, p *payment.Payment, kind payment.TransactionKind) (string, error) {
	txn, err := o.repo.LatestSuccessfulTransaction(ctx, p.ID, kind)
	if err != nil {
		return "", fmt.Errorf("look up prior %s transaction: %w", kind, err)
	}
	if txn == nil {
		return "", errors.NewPaymentError(
			errors.CodeMissingTransaction,
			fmt.Sprintf("Cannot find successful %s transaction.", kind),
		)
	}
	return txn.Token, nil
}

// raiseIfUnsuccessful converts a failed transaction into a PaymentError.
// The transaction is returned either way; callers needing the durable
// record on failure have it at hand.
func raiseIfUnsuccessful(txn *payment.Transaction) (*payment.Transaction, error) {
	if txn.IsSuccess {
		return txn, nil
	}
	msg := genericTransactionError
	if txn.Error != nil && *txn.Error != "" {
		msg = *txn.Error
	}
	return txn, errors.NewPaymentError(errors.CodeGatewayError, msg)
}

func (o *Orchestrator) observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	o.metrics.OperationsTotal.WithLabelValues(operation, outcome).Inc()
	o.metrics.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
