package handler

import (
	"net/http"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ReviewHandler handles product review endpoints.
type ReviewHandler struct {
	service service.ReviewService
	logger  zerolog.Logger
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(service service.ReviewService, logger zerolog.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  logger.With().Str("handler", "review").Logger(),
	}
}

// Create handles POST /api/reviews.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req model.ReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	review, err := h.service.Create(r.Context(), identity.UserID, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, "Review submitted", review)
}

// ByProduct handles GET /api/products/{id}/reviews.
func (h *ReviewHandler) ByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid product id")
		return
	}

	limit, offset := pageParams(r)
	reviews, err := h.service.ListByProduct(r.Context(), productID, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Reviews", model.NewPage(reviews, limit, offset))
}

// Mine handles GET /api/reviews.
func (h *ReviewHandler) Mine(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())
	limit, offset := pageParams(r)

	reviews, err := h.service.ListByUser(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Reviews", model.NewPage(reviews, limit, offset))
}

// Update handles PUT /api/reviews/{id}.
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid review id")
		return
	}

	var req model.ReviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	review, err := h.service.Update(r.Context(), identity.UserID, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Review updated", review)
}

// Delete handles DELETE /api/reviews/{id}.
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid review id")
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, identity.Role, id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Review deleted", nil)
}

// MarkHelpful handles POST /api/reviews/{id}/helpful.
func (h *ReviewHandler) MarkHelpful(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid review id")
		return
	}

	review, err := h.service.MarkHelpful(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Review marked helpful", review)
}

// Approve handles POST /api/admin/reviews/{id}/approve.
func (h *ReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid review id")
		return
	}

	review, err := h.service.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Review approved", review)
}
