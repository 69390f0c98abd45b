package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		payload      any
		expectedBody string
	}{
		{
			name:         "simple map",
			status:       http.StatusOK,
			payload:      map[string]string{"message": "hello"},
			expectedBody: `{"message":"hello"}`,
		},
		{
			name:         "struct",
			status:       http.StatusCreated,
			payload:      struct{ ID string }{ID: "123"},
			expectedBody: `{"ID":"123"}`,
		},
		{
			name:         "error response",
			status:       http.StatusBadRequest,
			payload:      ErrorResponse{Error: "bad request", Code: "invalid_input"},
			expectedBody: `{"error":"bad request","code":"invalid_input"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSON(w, tt.status, tt.payload)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestWriteError_ValidationError(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")

	writeError(w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "validation_error", response.Code)
	assert.Contains(t, response.Error, "currency")
}

func TestWriteError_DomainErrors(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "payment not found",
			err:            domainErrors.ErrPaymentNotFound,
			expectedStatus: http.StatusNotFound,
			expectedCode:   "not_found",
		},
		{
			name:           "gateway not configured",
			err:            domainErrors.ErrGatewayNotConfigured,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "gateway_not_configured",
		},
		{
			name:           "gateway unavailable",
			err:            domainErrors.ErrGatewayUnavailable,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   "gateway_unavailable",
		},
		{
			name:           "lock acquisition failed",
			err:            domainErrors.ErrLockAcquisitionFailed,
			expectedStatus: http.StatusConflict,
			expectedCode:   "payment_locked",
		},
		{
			name:           "invalid input",
			err:            domainErrors.ErrInvalidInput,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeError(w, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ErrorResponse
			err := json.NewDecoder(w.Body).Decode(&response)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedCode, response.Code)
		})
	}
}

func TestWriteError_LockFailed_CustomMessage(t *testing.T) {
	w := httptest.NewRecorder()
	writeError(w, domainErrors.ErrLockAcquisitionFailed)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response ErrorResponse
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "another operation is running on this payment, please retry", response.Error)
	assert.Equal(t, "payment_locked", response.Code)
}

func TestWriteError_PaymentError_Precondition(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainErrors.NewPaymentError(domainErrors.CodeInactive, "This payment is no longer active.")

	writeError(w, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response ErrorResponse
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "inactive", response.Code)
	assert.Equal(t, "This payment is no longer active.", response.Error)
}

func TestWriteError_PaymentError_GatewayFault(t *testing.T) {
	w := httptest.NewRecorder()
	err := domainErrors.NewPaymentError(domainErrors.CodeGatewayError, "Oops! Something went wrong.")

	writeError(w, err)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var response ErrorResponse
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "gateway_error", response.Code)
}

func TestWriteError_UnknownError_FallbackToInternalServerError(t *testing.T) {
	w := httptest.NewRecorder()
	err := errors.New("unexpected error")

	writeError(w, err)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response ErrorResponse
	json.NewDecoder(w.Body).Decode(&response)
	assert.Equal(t, "internal_error", response.Code)
	assert.Equal(t, "internal server error", response.Error)
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"token":"tok-123","store_payment_method":true}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var result ChargeRequest
	err := decodeAndValidate(req, &result)

	require.NoError(t, err)
	assert.Equal(t, "tok-123", result.Token)
	assert.True(t, result.StorePaymentMethod)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	body := `{invalid json}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var result ChargeRequest
	err := decodeAndValidate(req, &result)

	assert.Error(t, err)
	var validationErr *domainErrors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "body", validationErr.Field)
	assert.Contains(t, validationErr.Message, "invalid JSON")
}

func TestDecodeAndValidate_ValidationFailure_RequiredField(t *testing.T) {
	body := `{"token":""}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var result ChargeRequest
	err := decodeAndValidate(req, &result)

	assert.Error(t, err)
	var validationErr *domainErrors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Message, "validation failed")
}

func TestDecodeAndValidate_ValidationFailure_CurrencyLength(t *testing.T) {
	body := `{"gateway":"sandbox","total":"100.00","currency":"USDT"}`
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))

	var result CreatePaymentRequest
	err := decodeAndValidate(req, &result)

	assert.Error(t, err)
	var validationErr *domainErrors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "Currency", validationErr.Field)
}

func TestDecodeAndValidate_EmptyBody(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte{}))

	var result ChargeRequest
	err := decodeAndValidate(req, &result)

	assert.Error(t, err)
}
