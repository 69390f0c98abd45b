package errors

import (
	"errors"
	"fmt"
)

var (
	// Payment errors
	ErrPaymentNotFound = errors.New("payment not found")

	// Gateway errors
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")
	ErrGatewayUnavailable   = errors.New("payment gateway unavailable")
	ErrGatewayTimeout       = errors.New("gateway request timeout")
	ErrGatewayRejected      = errors.New("rejected by payment gateway")
	ErrInvalidResponse      = errors.New("malformed gateway response")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
	ErrLockNotHeld           = errors.New("lock not held")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// PaymentErrorCode discriminates the reasons an orchestration call can be
// rejected or fail. Precondition codes never produce a transaction record;
// CodeGatewayError always does.
type PaymentErrorCode string

const (
	CodeInactive           PaymentErrorCode = "inactive"
	CodeNotAuthorizable    PaymentErrorCode = "not_authorizable"
	CodeNotCapturable      PaymentErrorCode = "not_capturable"
	CodeNotRefundable      PaymentErrorCode = "not_refundable"
	CodeInvalidAmount      PaymentErrorCode = "invalid_amount"
	CodeMissingTransaction PaymentErrorCode = "missing_transaction"
	CodeGatewayError       PaymentErrorCode = "gateway_error"
)

// PaymentError is the single transactional error type surfaced by the
// orchestrator. The code tells precondition rejections apart from failed
// gateway calls without inspecting storage.
type PaymentError struct {
	Code    PaymentErrorCode
	Message string
}

func (e *PaymentError) Error() string {
	return e.Message
}

// NewPaymentError creates a new payment error.
func NewPaymentError(code PaymentErrorCode, message string) *PaymentError {
	return &PaymentError{Code: code, Message: message}
}

// IsPrecondition reports whether the error was raised before any backend
// dispatch, meaning no transaction was recorded for the call.
func (e *PaymentError) IsPrecondition() bool {
	return e.Code != CodeGatewayError
}

// ValidationError represents a request validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
