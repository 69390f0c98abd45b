package gateway

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cassiomorais/gateway/internal/domain/outbox"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type backendCall func(ctx context.Context) (*gateways.GatewayResponse, error)

// fetchGatewayResponse wraps exactly one backend invocation. Any
// validation failure or unexpected backend error is logged with detail
// and replaced by the fixed generic message; the pair (nil, errorMsg)
// still flows into transaction recording so the failed attempt is never
// silently dropped.
func (o *Orchestrator) fetchGatewayResponse(
	ctx context.Context,
	p *payment.Payment,
	operation string,
	breaker *gobreaker.CircuitBreaker[*gateways.GatewayResponse],
	call backendCall,
) (*gateways.GatewayResponse, string) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("payment.id", p.ID.String()),
		attribute.String("payment.gateway", p.Gateway),
		attribute.String("payment.operation", operation),
	)

	// The call outlives caller cancellation: an aborted request must not
	// discard an in-flight charge, so only the configured timeout bounds it.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.callTimeout)
	defer cancel()

	resp, err := breaker.Execute(func() (*gateways.GatewayResponse, error) {
		return call(callCtx)
	})
	o.metrics.CircuitBreakerState.WithLabelValues(breaker.Name()).Set(float64(breaker.State()))
	result := "success"
	if err != nil {
		result = "failure"
	}
	o.metrics.CircuitBreakerRequests.WithLabelValues(breaker.Name(), result).Inc()
	if err != nil {
		o.metrics.GatewayErrors.WithLabelValues(p.Gateway).Inc()
		o.logger.Error().
			Err(err).
			Str("payment_id", p.ID.String()).
			Str("gateway", p.Gateway).
			Str("operation", operation).
			Msg("error encountered while executing payment gateway")
		return nil, errorMsg
	}
	if err := resp.Validate(); err != nil {
		o.metrics.GatewayErrors.WithLabelValues(p.Gateway).Inc()
		o.logger.Error().
			Err(err).
			Str("payment_id", p.ID.String()).
			Str("gateway", p.Gateway).
			Str("operation", operation).
			Msg("gateway response validation failed")
		return nil, errorMsg
	}
	return resp, ""
}

// recordTransaction builds the transaction record from the classified
// (response, error) pair, persists it, applies post-processing to the
// payment and writes the outbox event, all in one database transaction so
// a crash never leaves an unreflected state change.
func (o *Orchestrator) recordTransaction(
	ctx context.Context,
	p *payment.Payment,
	kind payment.TransactionKind,
	data gateways.PaymentData,
	resp *gateways.GatewayResponse,
	errMsg string,
) (*payment.Transaction, error) {
	token := data.Token
	amount := data.Amount
	currency := data.Currency
	var raw map[string]any
	var txnErr *string

	if resp != nil {
		token = resp.TransactionID
		amount = resp.Amount
		currency = resp.Currency
		raw = resp.Raw
		if resp.Error != "" {
			e := resp.Error
			txnErr = &e
		}
	}
	if errMsg != "" {
		e := errMsg
		txnErr = &e
	}
	isSuccess := errMsg == "" && resp != nil && resp.IsSuccess

	txn := payment.NewTransaction(p.ID, kind, token, isSuccess, amount, currency, txnErr, raw)

	// Persistence must survive caller abort: a response that arrives after
	// the client disconnects is still a real charge and must be recorded.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.callTimeout)
	defer cancel()

	err := o.txManager.WithTransaction(persistCtx, func(txCtx context.Context) error {
		if err := o.repo.AddTransaction(txCtx, txn); err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		o.postprocess(p, txn, resp)
		if err := o.repo.Update(txCtx, p); err != nil {
			return fmt.Errorf("update payment: %w", err)
		}
		return o.outbox.Insert(txCtx, outbox.NewEntry(
			p.ID, txn.ID, outbox.EventTransactionRecorded,
			map[string]any{
				"kind":       string(txn.Kind),
				"is_success": txn.IsSuccess,
				"amount":     txn.Amount.String(),
				"currency":   txn.Currency,
			},
		))
	})
	if err != nil {
		return nil, err
	}
	o.metrics.TransactionsTotal.WithLabelValues(string(txn.Kind), strconv.FormatBool(txn.IsSuccess)).Inc()
	return txn, nil
}

// postprocess applies the payment-state effects of a recorded transaction.
// Failed transactions leave the payment untouched.
func (o *Orchestrator) postprocess(p *payment.Payment, txn *payment.Transaction, resp *gateways.GatewayResponse) {
	if !txn.IsSuccess {
		return
	}
	switch txn.Kind {
	case payment.KindCapture:
		p.ApplyCapture(txn.Amount)
		if resp != nil && resp.Card != nil {
			p.UpdateCardDetails(payment.CardInfo(*resp.Card))
		}
	case payment.KindVoid:
		p.ApplyVoid()
	case payment.KindRefund:
		p.ApplyRefund(txn.Amount)
	}
}
