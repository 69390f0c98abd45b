package gateways_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Resolve_Known(t *testing.T) {
	r := gateways.NewRegistry(gateways.NewSandboxBackend("stripe"))

	b, breaker, err := r.Resolve("stripe")
	require.NoError(t, err)
	assert.Equal(t, "stripe", b.Name())
	assert.NotNil(t, breaker)
}

func TestRegistry_Resolve_Unknown(t *testing.T) {
	r := gateways.NewRegistry(gateways.NewSandboxBackend("stripe"))

	_, _, err := r.Resolve("braintree")
	assert.ErrorIs(t, err, errors.ErrGatewayNotConfigured)
}

func TestRegistry_Resolve_Unset(t *testing.T) {
	r := gateways.NewRegistry(gateways.NewSandboxBackend("stripe"))

	_, _, err := r.Resolve("")
	assert.ErrorIs(t, err, errors.ErrGatewayNotConfigured)
}

func TestRegistry_DefaultBackends(t *testing.T) {
	r := gateways.NewRegistry()

	_, _, err := r.Resolve("sandbox")
	assert.NoError(t, err)
	_, _, err = r.Resolve("sandbox-alt")
	assert.NoError(t, err)
}

func TestRegistry_BreakerSettings_AreApplied(t *testing.T) {
	// With a threshold of 2, the breaker trips after two failed calls and
	// the third is rejected without reaching the backend.
	r := gateways.NewRegistryWithBreaker(
		gateways.BreakerSettings{Threshold: 2, Timeout: time.Minute},
		gateways.NewSandboxBackend("stripe"),
	)

	_, breaker, err := r.Resolve("stripe")
	require.NoError(t, err)

	fail := func() (*gateways.GatewayResponse, error) {
		return nil, stderrors.New("backend down")
	}
	for i := 0; i < 2; i++ {
		_, err := breaker.Execute(fail)
		require.EqualError(t, err, "backend down")
	}

	_, err = breaker.Execute(fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestRegistry_BreakerSettings_ZeroValuesFallBack(t *testing.T) {
	r := gateways.NewRegistryWithBreaker(
		gateways.BreakerSettings{},
		gateways.NewSandboxBackend("stripe"),
	)

	_, breaker, err := r.Resolve("stripe")
	require.NoError(t, err)
	// A single failure must not trip the default 10-request threshold.
	_, err = breaker.Execute(func() (*gateways.GatewayResponse, error) {
		return nil, stderrors.New("backend down")
	})
	require.EqualError(t, err, "backend down")
	_, err = breaker.Execute(func() (*gateways.GatewayResponse, error) {
		return &gateways.GatewayResponse{IsSuccess: true, TransactionID: "t1", Currency: "USD"}, nil
	})
	assert.NoError(t, err)
}

func TestRegistry_List_Deterministic(t *testing.T) {
	r := gateways.NewRegistry(
		gateways.NewSandboxBackend("paypal"),
		gateways.NewSandboxBackend("adyen"),
		gateways.NewSandboxBackend("stripe"),
	)

	first := r.List()
	second := r.List()

	require.Len(t, first, 3)
	assert.Equal(t, "adyen", first[0].ID)
	assert.Equal(t, "paypal", first[1].ID)
	assert.Equal(t, "stripe", first[2].ID)
	assert.Equal(t, first, second)
}
