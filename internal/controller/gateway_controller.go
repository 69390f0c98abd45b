package controller

import (
	"net/http"

	appGateway "github.com/cassiomorais/gateway/internal/application/gateway"
	"github.com/go-chi/chi/v5"
)

// GatewayController exposes the configured payment backends.
type GatewayController struct {
	orchestrator *appGateway.Orchestrator
}

func NewGatewayController(orchestrator *appGateway.Orchestrator) *GatewayController {
	return &GatewayController{orchestrator: orchestrator}
}

// ListGateways handles GET /api/v1/gateways
func (h *GatewayController) ListGateways(w http.ResponseWriter, r *http.Request) {
	infos := h.orchestrator.ListGateways()
	resp := make([]*GatewayInfoResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, FromGatewayInfo(info))
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListPaymentSources handles GET /api/v1/gateways/{name}/customers/{customerID}/sources
func (h *GatewayController) ListPaymentSources(w http.ResponseWriter, r *http.Request) {
	gatewayName := chi.URLParam(r, "name")
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "customer id is required", Code: "invalid_id"})
		return
	}

	sources, err := h.orchestrator.ListPaymentSources(r.Context(), gatewayName, customerID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentSourceResponse, 0, len(sources))
	for _, s := range sources {
		resp = append(resp, FromCustomerSource(s))
	}
	writeJSON(w, http.StatusOK, resp)
}
