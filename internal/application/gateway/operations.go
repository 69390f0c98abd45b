package gateway

import (
	"context"
	"time"

	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/shopspring/decimal"
)

// Process authorizes and captures in one step. No prior transaction is
// required; the recorded kind is CAPTURE, same as a direct capture.
func (o *Orchestrator) Process(ctx context.Context, p *payment.Payment, token string, storeSource bool) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("process", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, p.Total, storeSource)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "process", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Process(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindCapture, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}

// Authorize places a hold on the payment total.
func (o *Orchestrator) Authorize(ctx context.Context, p *payment.Payment, token string, storeSource bool) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("authorize", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	if err = cleanAuthorize(p); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, p.Total, storeSource)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "authorize", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Authorize(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindAuth, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}

// Capture collects previously authorized funds. A nil amount captures the
// full remaining charge amount. Requires a prior successful AUTH.
func (o *Orchestrator) Capture(ctx context.Context, p *payment.Payment, amount *decimal.Decimal, storeSource bool) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("capture", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	amt := p.ChargeAmount()
	if amount != nil {
		amt = *amount
	}
	if err = cleanCapture(p, amt); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	token, err := o.priorTransactionToken(ctx, p, payment.KindAuth)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, amt, storeSource)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "capture", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Capture(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindCapture, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}

// Refund returns captured funds. A nil amount refunds the full captured
// amount. Requires a prior successful CAPTURE.
func (o *Orchestrator) Refund(ctx context.Context, p *payment.Payment, amount *decimal.Decimal) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("refund", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	amt := p.CapturedAmount
	if amount != nil {
		amt = *amount
	}
	if err = cleanRefund(p, amt); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	token, err := o.priorTransactionToken(ctx, p, payment.KindCapture)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, amt, false)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "refund", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Refund(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindRefund, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}

// Void releases an authorization hold. Requires a prior successful AUTH.
func (o *Orchestrator) Void(ctx context.Context, p *payment.Payment) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("void", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	token, err := o.priorTransactionToken(ctx, p, payment.KindAuth)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, p.Total, false)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "void", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Void(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindVoid, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}

// Confirm completes a pending authorization. Requires a prior successful
// AUTH.
func (o *Orchestrator) Confirm(ctx context.Context, p *payment.Payment) (txn *payment.Transaction, err error) {
	defer func(start time.Time) { o.observe("confirm", start, err) }(time.Now())

	if err = requireActivePayment(p); err != nil {
		return nil, err
	}
	backend, breaker, err := o.registry.Resolve(p.Gateway)
	if err != nil {
		return nil, err
	}
	token, err := o.priorTransactionToken(ctx, p, payment.KindAuth)
	if err != nil {
		return nil, err
	}
	data := buildPaymentData(p, token, p.Total, false)
	resp, errMsg := o.fetchGatewayResponse(ctx, p, "confirm", breaker, func(c context.Context) (*gateways.GatewayResponse, error) {
		return backend.Confirm(c, data)
	})
	txn, err = o.recordTransaction(ctx, p, payment.KindConfirm, data, resp, errMsg)
	if err != nil {
		return nil, err
	}
	return raiseIfUnsuccessful(txn)
}
