package interfaces

import (
	"encoding/json"
	"net/http"

	"campus/internal/pkg/apperr"
	"campus/internal/service/checkout/application"
	"campus/internal/service/checkout/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// CheckoutHandler 封装结算服务的 HTTP 处理器。
type CheckoutHandler struct {
	service *application.CheckoutApplicationService
}

func NewCheckoutHandler(service *application.CheckoutApplicationService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CheckoutHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/checkout", h.checkout)
}

type checkoutRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "malformed request body", err))
		return
	}

	items := make([]domain.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.CheckoutItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	view, err := h.service.Checkout(ctx, application.CheckoutCommand{
		Tenant:  r.Header.Get("X-Tenant-ID"),
		BuyerID: r.Header.Get("X-User-ID"),
		Items:   items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(view)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
