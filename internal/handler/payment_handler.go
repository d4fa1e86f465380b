package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	service service.PaymentService
	logger  zerolog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(service service.PaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		logger:  logger.With().Str("handler", "payment").Logger(),
	}
}

// Create handles POST /api/payments.
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req model.PaymentCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	payment, err := h.service.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, "Payment created", payment)
}

// Process handles POST /api/payments/{id}/process.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid payment id")
		return
	}

	payment, err := h.service.Process(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	message := "Payment completed"
	if payment.Status == model.PaymentFailed {
		message = "Payment failed"
	}

	writeSuccess(w, http.StatusOK, message, payment)
}

// Get handles GET /api/payments/{id}.
func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid payment id")
		return
	}

	payment, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Payment", payment)
}

// GetByOrder handles GET /api/orders/{id}/payment.
func (h *PaymentHandler) GetByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid order id")
		return
	}

	payment, err := h.service.GetByOrderID(r.Context(), orderID)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Payment", payment)
}

// Refund handles POST /api/admin/payments/{id}/refund.
func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid payment id")
		return
	}

	var req struct {
		Reason *string `json:"reason,omitempty"`
	}
	// The body is optional here.
	_ = decodeBody(r, &req)

	payment, err := h.service.Refund(r.Context(), id, req.Reason)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Payment refunded", payment)
}
