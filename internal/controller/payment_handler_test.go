package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appGateway "github.com/cassiomorais/gateway/internal/application/gateway"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/cassiomorais/gateway/internal/gateways"
	"github.com/cassiomorais/gateway/internal/infrastructure/observability"
	"github.com/cassiomorais/gateway/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerEnv struct {
	repo    *testutil.MockPaymentRepository
	handler *PaymentController
}

func newHandlerEnv(t *testing.T, backend gateways.Backend) *handlerEnv {
	t.Helper()
	repo := testutil.NewMockPaymentRepository()
	orch := appGateway.NewOrchestrator(
		repo,
		gateways.NewRegistry(backend),
		testutil.NewMockTransactionManager(),
		testutil.NewMockOutboxRepository(),
		zerolog.Nop(),
		observability.NewMetrics("test", prometheus.NewRegistry()),
		appGateway.WithCallTimeout(time.Second),
	)
	return &handlerEnv{repo: repo, handler: NewPaymentController(orch, repo)}
}

// paramRequest builds a request carrying the chi {id} URL parameter.
func paramRequest(method, target, id string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func (e *handlerEnv) addPayment(t *testing.T, p *payment.Payment) {
	t.Helper()
	require.NoError(t, e.repo.Create(context.Background(), p))
}

func TestPaymentController_CreatePayment(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))

	body, _ := json.Marshal(CreatePaymentRequest{
		Gateway:  "sandbox",
		Total:    "100.00",
		Currency: "USD",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	env.handler.CreatePayment(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PaymentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "sandbox", resp.Gateway)
	assert.Equal(t, "not_charged", resp.ChargeStatus)
	assert.True(t, resp.IsActive)
	assert.Equal(t, "100", resp.Total)
}

func TestPaymentController_CreatePayment_InvalidTotal(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))

	body, _ := json.Marshal(CreatePaymentRequest{
		Gateway:  "sandbox",
		Total:    "-5.00",
		Currency: "USD",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	env.handler.CreatePayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentController_GetPayment_NotFound(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))

	req := paramRequest(http.MethodGet, "/api/v1/payments/x", uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	env.handler.GetPayment(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentController_GetPayment_NilWithoutError(t *testing.T) {
	// A repository answering (nil, nil) for a missing payment must still
	// produce a 404, never a dereference.
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))
	env.repo.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
		return nil, nil
	}

	req := paramRequest(http.MethodGet, "/api/v1/payments/x", uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	env.handler.GetPayment(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPaymentController_GetPayment_InvalidID(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))

	req := paramRequest(http.MethodGet, "/api/v1/payments/x", "not-a-uuid", nil)
	rec := httptest.NewRecorder()

	env.handler.GetPayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentController_ProcessPayment(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))
	p := testutil.NewTestPayment("sandbox", "100.00", "USD")
	env.addPayment(t, p)

	body, _ := json.Marshal(ChargeRequest{Token: "tok-123"})
	req := paramRequest(http.MethodPost, "/api/v1/payments/x/process", p.ID.String(), body)
	rec := httptest.NewRecorder()

	env.handler.ProcessPayment(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "capture", resp.Kind)
	assert.True(t, resp.IsSuccess)
}

func TestPaymentController_ProcessPayment_MissingToken(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))
	p := testutil.NewTestPayment("sandbox", "100.00", "USD")
	env.addPayment(t, p)

	req := paramRequest(http.MethodPost, "/api/v1/payments/x/process", p.ID.String(), []byte(`{}`))
	rec := httptest.NewRecorder()

	env.handler.ProcessPayment(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentController_CapturePayment_NoPriorAuth(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))
	p := testutil.NewTestPayment("sandbox", "100.00", "USD")
	env.addPayment(t, p)

	req := paramRequest(http.MethodPost, "/api/v1/payments/x/capture", p.ID.String(), nil)
	rec := httptest.NewRecorder()

	env.handler.CapturePayment(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	json.NewDecoder(rec.Body).Decode(&resp)
	assert.Equal(t, "missing_transaction", resp.Code)
}

func TestPaymentController_AuthorizePayment_BackendFault(t *testing.T) {
	backend := testutil.NewStubBackend("sandbox")
	backend.AuthorizeFunc = func(ctx context.Context, data gateways.PaymentData) (*gateways.GatewayResponse, error) {
		return nil, errors.New("connection reset")
	}
	env := newHandlerEnv(t, backend)
	p := testutil.NewTestPayment("sandbox", "100.00", "USD")
	env.addPayment(t, p)

	body, _ := json.Marshal(ChargeRequest{Token: "tok-123"})
	req := paramRequest(http.MethodPost, "/api/v1/payments/x/authorize", p.ID.String(), body)
	rec := httptest.NewRecorder()

	env.handler.AuthorizePayment(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	// The failed transaction record rides along with the error.
	var resp struct {
		ErrorResponse
		Transaction *TransactionResponse `json:"transaction"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "gateway_error", resp.Code)
	require.NotNil(t, resp.Transaction)
	assert.Equal(t, "auth", resp.Transaction.Kind)
	assert.False(t, resp.Transaction.IsSuccess)
}

func TestPaymentController_ListTransactions(t *testing.T) {
	env := newHandlerEnv(t, testutil.NewStubBackend("sandbox"))
	p := testutil.NewTestPayment("sandbox", "100.00", "USD")
	env.addPayment(t, p)

	body, _ := json.Marshal(ChargeRequest{Token: "tok-123"})
	req := paramRequest(http.MethodPost, "/api/v1/payments/x/process", p.ID.String(), body)
	env.handler.ProcessPayment(httptest.NewRecorder(), req)

	listReq := paramRequest(http.MethodGet, "/api/v1/payments/x/transactions", p.ID.String(), nil)
	rec := httptest.NewRecorder()
	env.handler.ListTransactions(rec, listReq)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "capture", resp[0].Kind)
}

func TestGatewayController_ListGateways(t *testing.T) {
	orch := appGateway.NewOrchestrator(
		testutil.NewMockPaymentRepository(),
		gateways.NewRegistry(testutil.NewStubBackend("sandbox")),
		testutil.NewMockTransactionManager(),
		testutil.NewMockOutboxRepository(),
		zerolog.Nop(),
		observability.NewMetrics("test2", prometheus.NewRegistry()),
	)
	handler := NewGatewayController(orch)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/gateways", nil)
	rec := httptest.NewRecorder()

	handler.ListGateways(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp []*GatewayInfoResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "sandbox", resp[0].ID)
}
