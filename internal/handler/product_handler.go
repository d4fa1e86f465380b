package handler

import (
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles catalogue product endpoints.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/products. A q parameter switches to keyword
// search, categoryId filters by category.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)

	var (
		products []model.Product
		err      error
	)

	switch {
	case r.URL.Query().Get("q") != "":
		products, err = h.service.Search(r.Context(), r.URL.Query().Get("q"), limit, offset)
	case r.URL.Query().Get("categoryId") != "":
		var categoryID int64
		categoryID, err = strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
		if err != nil {
			writeBadRequest(w, "Invalid category id")
			return
		}
		products, err = h.service.ListByCategory(r.Context(), categoryID, limit, offset)
	default:
		products, err = h.service.List(r.Context(), limit, offset)
	}
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Products", model.NewPage(products, limit, offset))
}

// Featured handles GET /api/products/featured.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := pageParams(r)

	products, err := h.service.ListFeatured(r.Context(), limit)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Featured products", products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid product id")
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Product", product)
}

// GetBySlug handles GET /api/products/slug/{slug}.
func (h *ProductHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Product", product)
}

// BySeller handles GET /api/products/seller/{id}.
func (h *ProductHandler) BySeller(w http.ResponseWriter, r *http.Request) {
	sellerID, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid seller id")
		return
	}

	limit, offset := pageParams(r)
	products, err := h.service.ListBySeller(r.Context(), sellerID, limit, offset)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Products", model.NewPage(products, limit, offset))
}

// Create handles POST /api/seller/products. Sellers create products
// under their own account; admins may create for any seller.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	var req model.ProductCreateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	if identity.Role != model.RoleAdmin {
		req.SellerID = identity.UserID
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusCreated, "Product created", product)
}

// Update handles PUT /api/seller/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid product id")
		return
	}

	var req model.ProductUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeBadRequest(w, "Invalid request body")
		return
	}

	product, err := h.service.Update(r.Context(), identity.UserID, identity.Role, id, &req)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Product updated", product)
}

// AdjustStock handles PATCH /api/seller/products/{id}/stock.
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid product id")
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := decodeBody(r, &req); err != nil || req.Delta == 0 {
		writeBadRequest(w, "A non-zero delta is required")
		return
	}

	product, err := h.service.AdjustStock(r.Context(), identity.UserID, identity.Role, id, req.Delta)
	if err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Stock adjusted", product)
}

// Archive handles DELETE /api/seller/products/{id}.
func (h *ProductHandler) Archive(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.IdentityFrom(r.Context())

	id, err := pathID(r, "id")
	if err != nil {
		writeBadRequest(w, "Invalid product id")
		return
	}

	if err := h.service.Archive(r.Context(), identity.UserID, identity.Role, id); err != nil {
		writeError(w, err, h.logger)
		return
	}

	writeSuccess(w, http.StatusOK, "Product archived", nil)
}
