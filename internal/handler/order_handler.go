package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles checkout and fulfilment endpoints.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders. The order is always created for
// the authenticated caller.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req model.OrderCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}
	req.UserID = identity.UserID

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, "Order placed", order)
}

// Get handles GET /api/orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid order id")
		return
	}

	order, err := h.service.GetByID(r.Context(), identity.UserID, identity.Role, id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Order", order)
}

// GetByNumber handles GET /api/orders/number/{orderNumber}.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	order, err := h.service.GetByOrderNumber(r.Context(), identity.UserID, identity.Role, r.PathValue("orderNumber"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Order", order)
}

// ListMine handles GET /api/orders.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())
	limit, offset := pageParams(r)

	orders, err := h.service.ListByUser(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Orders", model.NewPage(orders, limit, offset))
}

// Cancel handles POST /api/orders/{id}/cancel.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid order id")
		return
	}

	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	// The body is optional here.
	_ = decodeBody(r, &req)

	order, err := h.service.Cancel(r.Context(), identity.UserID, identity.Role, id, req.Reason)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Order cancelled", order)
}

// List handles GET /api/admin/orders with an optional status filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	status := model.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Orders", model.NewPage(orders, limit, offset))
}

// UpdateStatus handles PATCH /api/admin/orders/{id}/status?status=.
// Tracking details travel on the optional trackingNumber and
// shippingCarrier parameters.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid order id")
		return
	}

	status := model.OrderStatus(r.URL.Query().Get("status"))
	if status == "" {
		writeBadRequest(w, "status parameter is required")
		return
	}

	var trackingNumber, carrier *string
	if v := r.URL.Query().Get("trackingNumber"); v != "" {
		trackingNumber = &v
	}
	if v := r.URL.Query().Get("shippingCarrier"); v != "" {
		carrier = &v
	}

	order, err := h.service.UpdateStatus(r.Context(), id, status, trackingNumber, carrier)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Order status updated", order)
}

// UpdateTracking handles PATCH /api/admin/orders/{id}/tracking.
func (h *OrderHandler) UpdateTracking(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid order id")
		return
	}

	trackingNumber := r.URL.Query().Get("trackingNumber")
	carrier := r.URL.Query().Get("shippingCarrier")
	if trackingNumber == "" || carrier == "" {
		writeBadRequest(w, "trackingNumber and shippingCarrier parameters are required")
		return
	}

	order, err := h.service.UpdateTracking(r.Context(), id, trackingNumber, carrier)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Tracking info updated", order)
}
