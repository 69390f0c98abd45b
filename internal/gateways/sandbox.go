package gateways

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/google/uuid"
)

// SandboxBackend is an in-process gateway used in tests and local runs.
// It can simulate latency, declines and timeouts.
type SandboxBackend struct {
	name        string
	failureRate float64 // 0.0 to 1.0
	latency     time.Duration
	timeoutRate float64 // 0.0 to 1.0
}

type SandboxOption func(*SandboxBackend)

func WithFailureRate(rate float64) SandboxOption {
	return func(b *SandboxBackend) { b.failureRate = rate }
}

func WithLatency(d time.Duration) SandboxOption {
	return func(b *SandboxBackend) { b.latency = d }
}

func WithTimeoutRate(rate float64) SandboxOption {
	return func(b *SandboxBackend) { b.timeoutRate = rate }
}

func NewSandboxBackend(name string, opts ...SandboxOption) *SandboxBackend {
	b := &SandboxBackend{
		name:        name,
		failureRate: 0.0,
		latency:     100 * time.Millisecond,
		timeoutRate: 0.0,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *SandboxBackend) Name() string { return b.name }

func (b *SandboxBackend) call(ctx context.Context, kind string, data PaymentData) (*GatewayResponse, error) {
	// Simulate latency
	select {
	case <-time.After(b.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if rand.Float64() < b.timeoutRate {
		return nil, domainErrors.ErrGatewayTimeout
	}

	if rand.Float64() < b.failureRate {
		return &GatewayResponse{
			IsSuccess:     false,
			TransactionID: b.txnID(kind),
			Amount:        data.Amount,
			Currency:      data.Currency,
			Error:         fmt.Sprintf("%s: simulated %s decline for payment %s", b.name, kind, data.PaymentID),
			Raw:           map[string]any{"simulated": true, "kind": kind},
		}, nil
	}

	resp := &GatewayResponse{
		IsSuccess:     true,
		TransactionID: b.txnID(kind),
		Amount:        data.Amount,
		Currency:      data.Currency,
		Raw:           map[string]any{"simulated": true, "kind": kind},
	}
	if kind == "capture" || kind == "process" {
		resp.Card = &CardInfo{
			Brand:       "visa",
			FirstDigits: "411111",
			LastDigits:  "1111",
			ExpMonth:    12,
			ExpYear:     time.Now().Year() + 4,
		}
	}
	return resp, nil
}

func (b *SandboxBackend) txnID(kind string) string {
	return fmt.Sprintf("%s_%s_%s", b.name, kind, uuid.New().String()[:8])
}

func (b *SandboxBackend) Authorize(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "auth", data)
}

func (b *SandboxBackend) Capture(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "capture", data)
}

func (b *SandboxBackend) Refund(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "refund", data)
}

func (b *SandboxBackend) Void(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "void", data)
}

func (b *SandboxBackend) Confirm(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "confirm", data)
}

func (b *SandboxBackend) Process(ctx context.Context, data PaymentData) (*GatewayResponse, error) {
	return b.call(ctx, "process", data)
}

func (b *SandboxBackend) ListPaymentSources(ctx context.Context, customerID string) ([]CustomerSource, error) {
	select {
	case <-time.After(b.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []CustomerSource{
		{
			ID:      fmt.Sprintf("%s_src_%s", b.name, customerID),
			Gateway: b.name,
			Card: &CardInfo{
				Brand:      "visa",
				LastDigits: "1111",
				ExpMonth:   12,
				ExpYear:    time.Now().Year() + 4,
			},
		},
	}, nil
}

func (b *SandboxBackend) GetClientToken(ctx context.Context, data PaymentData) (string, error) {
	select {
	case <-time.After(b.latency):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("%s_client_%s", b.name, uuid.New().String()[:8]), nil
}
