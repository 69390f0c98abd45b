package gateways_test

import (
	"context"
	"testing"

	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sandboxData() gateways.PaymentData {
	return gateways.PaymentData{
		PaymentID: uuid.New(),
		Token:     "tok-1",
		Amount:    decimal.RequireFromString("42.00"),
		Currency:  "USD",
	}
}

func TestSandbox_Authorize_Success(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0), gateways.WithFailureRate(0))

	resp, err := b.Authorize(context.Background(), sandboxData())
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess)
	assert.NotEmpty(t, resp.TransactionID)
	assert.NoError(t, resp.Validate())
}

func TestSandbox_Capture_CarriesCardInfo(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0), gateways.WithFailureRate(0))

	resp, err := b.Capture(context.Background(), sandboxData())
	require.NoError(t, err)
	require.NotNil(t, resp.Card)
	assert.Equal(t, "visa", resp.Card.Brand)
}

func TestSandbox_Decline(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0), gateways.WithFailureRate(1.0))

	resp, err := b.Process(context.Background(), sandboxData())
	require.NoError(t, err)
	assert.False(t, resp.IsSuccess)
	assert.NotEmpty(t, resp.Error)
}

func TestSandbox_Timeout(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0), gateways.WithTimeoutRate(1.0))

	_, err := b.Void(context.Background(), sandboxData())
	assert.Error(t, err)
}

func TestSandbox_CancelledContext(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.Refund(ctx, sandboxData())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSandbox_ListPaymentSources(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0))

	sources, err := b.ListPaymentSources(context.Background(), "cus-1")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "sandbox", sources[0].Gateway)
}

func TestSandbox_GetClientToken(t *testing.T) {
	b := gateways.NewSandboxBackend("sandbox", gateways.WithLatency(0))

	token, err := b.GetClientToken(context.Background(), sandboxData())
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestGatewayResponse_Validate(t *testing.T) {
	tests := []struct {
		name    string
		resp    *gateways.GatewayResponse
		wantErr bool
	}{
		{"valid", &gateways.GatewayResponse{TransactionID: "t1", Currency: "USD"}, false},
		{"nil", nil, true},
		{"missing transaction id", &gateways.GatewayResponse{Currency: "USD"}, true},
		{"bad currency", &gateways.GatewayResponse{TransactionID: "t1", Currency: "USDX"}, true},
		{"negative amount", &gateways.GatewayResponse{TransactionID: "t1", Currency: "USD", Amount: decimal.RequireFromString("-1")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resp.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
