package interfaces

import (
	"encoding/json"
	"net/http"
	"time"

	"campus/internal/pkg/apperr"
	"campus/internal/service/reservation/application"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// ReservationHandler 封装预约服务的 HTTP 处理器。
// 租户与用户身份由上游网关认证后通过头部传入。
type ReservationHandler struct {
	service *application.ReservationService
}

func NewReservationHandler(service *application.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *ReservationHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/reservations", h.handle)
}

func (h *ReservationHandler) handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodDelete:
		h.cancel(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type createReservationRequest struct {
	ResourceID string    `json:"resourceId"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
}

func (h *ReservationHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.Wrap(apperr.KindValidation, "malformed request body", err))
		return
	}

	view, err := h.service.Create(ctx, application.CreateReservationCommand{
		ResourceID: req.ResourceID,
		Tenant:     r.Header.Get("X-Tenant-ID"),
		UserID:     r.Header.Get("X-User-ID"),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(view)
}

func (h *ReservationHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, apperr.New(apperr.KindValidation, "reservation id is required"))
		return
	}

	err := h.service.Cancel(ctx, application.CancelReservationCommand{
		ReservationID: id,
		Tenant:        r.Header.Get("X-Tenant-ID"),
		UserID:        r.Header.Get("X-User-ID"),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	json.NewEncoder(w).Encode(map[string]string{
		"error": err.Error(),
		"kind":  apperr.KindOf(err).String(),
	})
}
