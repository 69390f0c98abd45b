package controller

import (
	"errors"
	"net/http"

	appGateway "github.com/cassiomorais/gateway/internal/application/gateway"
	domainErrors "github.com/cassiomorais/gateway/internal/domain/errors"
	"github.com/cassiomorais/gateway/internal/domain/payment"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	orchestrator *appGateway.Orchestrator
	paymentRepo  payment.Repository
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(
	orchestrator *appGateway.Orchestrator,
	paymentRepo payment.Repository,
) *PaymentController {
	return &PaymentController{
		orchestrator: orchestrator,
		paymentRepo:  paymentRepo,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	total, err := decimal.NewFromString(req.Total)
	if err != nil {
		writeError(w, domainErrors.NewValidationError("total", "must be a decimal number"))
		return
	}

	p, err := payment.NewPayment(req.Gateway, total, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	p.CustomerID = req.CustomerID

	if err := h.paymentRepo.Create(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromPayment(p))
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, FromPayment(p))
}

// ListTransactions handles GET /api/v1/payments/{id}/transactions
func (h *PaymentController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	txns, err := h.paymentRepo.ListTransactions(r.Context(), p.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*TransactionResponse, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, FromTransaction(txn))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProcessPayment handles POST /api/v1/payments/{id}/process
func (h *PaymentController) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	var req ChargeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.orchestrator.Process(r.Context(), p, req.Token, req.StorePaymentMethod)
	h.writeOperationResult(w, txn, err)
}

// AuthorizePayment handles POST /api/v1/payments/{id}/authorize
func (h *PaymentController) AuthorizePayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	var req ChargeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.orchestrator.Authorize(r.Context(), p, req.Token, req.StorePaymentMethod)
	h.writeOperationResult(w, txn, err)
}

// CapturePayment handles POST /api/v1/payments/{id}/capture
func (h *PaymentController) CapturePayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	amount, err := h.decodeAmount(r)
	if err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.orchestrator.Capture(r.Context(), p, amount, false)
	h.writeOperationResult(w, txn, err)
}

// RefundPayment handles POST /api/v1/payments/{id}/refund
func (h *PaymentController) RefundPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	amount, err := h.decodeAmount(r)
	if err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.orchestrator.Refund(r.Context(), p, amount)
	h.writeOperationResult(w, txn, err)
}

// VoidPayment handles POST /api/v1/payments/{id}/void
func (h *PaymentController) VoidPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	txn, err := h.orchestrator.Void(r.Context(), p)
	h.writeOperationResult(w, txn, err)
}

// ConfirmPayment handles POST /api/v1/payments/{id}/confirm
func (h *PaymentController) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	txn, err := h.orchestrator.Confirm(r.Context(), p)
	h.writeOperationResult(w, txn, err)
}

// GetClientToken handles GET /api/v1/payments/{id}/client-token
func (h *PaymentController) GetClientToken(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadPayment(w, r)
	if !ok {
		return
	}

	token, err := h.orchestrator.GetClientToken(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ClientTokenResponse{ClientToken: token})
}

// --- helpers ---

func (h *PaymentController) loadPayment(w http.ResponseWriter, r *http.Request) (*payment.Payment, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return nil, false
	}

	p, err := h.paymentRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	if p == nil {
		writeError(w, domainErrors.ErrPaymentNotFound)
		return nil, false
	}
	return p, true
}

// decodeAmount reads the optional amount body. An empty body means the
// operation uses the payment's default amount.
func (h *PaymentController) decodeAmount(r *http.Request) (*decimal.Decimal, error) {
	if r.ContentLength == 0 {
		return nil, nil
	}

	var req AmountRequest
	if err := decodeAndValidate(r, &req); err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, nil
	}

	amount, err := decimal.NewFromString(*req.Amount)
	if err != nil {
		return nil, domainErrors.NewValidationError("amount", "must be a decimal number")
	}
	return &amount, nil
}

// writeOperationResult renders one orchestration outcome. A failed
// gateway call still produced a transaction record, so the record is
// included alongside the error.
func (h *PaymentController) writeOperationResult(w http.ResponseWriter, txn *payment.Transaction, err error) {
	if err != nil {
		if txn != nil {
			var paymentErr *domainErrors.PaymentError
			if errors.As(err, &paymentErr) {
				writeJSON(w, http.StatusBadGateway, struct {
					ErrorResponse
					Transaction *TransactionResponse `json:"transaction"`
				}{
					ErrorResponse: ErrorResponse{Error: paymentErr.Message, Code: string(paymentErr.Code)},
					Transaction:   FromTransaction(txn),
				})
				return
			}
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromTransaction(txn))
}
