// Package router wires handlers, middleware and routes.
package router

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/model"
	"storefront/internal/token"

	"github.com/rs/zerolog"
)

// Handlers bundles every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Address  *handler.AddressHandler
	Category *handler.CategoryHandler
	Product  *handler.ProductHandler
	Cart     *handler.CartHandler
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
	Review   *handler.ReviewHandler
}

// New creates the HTTP router with all routes and middleware
// configured.
func New(h Handlers, tokens *token.Provider, authCfg config.AuthConfig, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	auth := middleware.Auth(tokens, logger)
	sellerOnly := middleware.RequireRole(model.RoleSeller, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	loginLimit := middleware.RateLimit(authCfg.LoginRatePerMinute, authCfg.LoginRateBurst, logger)

	authed := func(fn http.HandlerFunc) http.Handler { return auth(fn) }
	seller := func(fn http.HandlerFunc) http.Handler { return auth(sellerOnly(fn)) }
	admin := func(fn http.HandlerFunc) http.Handler { return auth(adminOnly(fn)) }
	limited := func(fn http.HandlerFunc) http.Handler { return loginLimit(fn) }

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Authentication. Credential endpoints are rate limited per IP.
	mux.Handle("POST /api/auth/register", limited(h.Auth.Register))
	mux.Handle("POST /api/auth/register/otp", limited(h.Auth.RequestRegistrationOTP))
	mux.Handle("POST /api/auth/register/otp/verify", limited(h.Auth.RegisterWithOTP))
	mux.Handle("POST /api/auth/login", limited(h.Auth.Login))
	mux.Handle("POST /api/auth/otp", limited(h.Auth.RequestOTP))
	mux.Handle("POST /api/auth/otp/login", limited(h.Auth.LoginWithOTP))
	mux.HandleFunc("POST /api/auth/refresh", h.Auth.Refresh)
	mux.Handle("POST /api/auth/logout", authed(h.Auth.Logout))

	// Public catalogue.
	mux.HandleFunc("GET /api/products", h.Product.List)
	mux.HandleFunc("GET /api/products/featured", h.Product.Featured)
	mux.HandleFunc("GET /api/products/slug/{slug}", h.Product.GetBySlug)
	mux.HandleFunc("GET /api/products/seller/{id}", h.Product.BySeller)
	mux.HandleFunc("GET /api/products/{id}", h.Product.Get)
	mux.HandleFunc("GET /api/products/{id}/reviews", h.Review.ByProduct)

	mux.HandleFunc("GET /api/categories", h.Category.List)
	mux.HandleFunc("GET /api/categories/slug/{slug}", h.Category.GetBySlug)
	mux.HandleFunc("GET /api/categories/{id}", h.Category.Get)
	mux.HandleFunc("GET /api/categories/{id}/children", h.Category.Children)

	// Profile.
	mux.Handle("GET /api/users/me", authed(h.User.Me))
	mux.Handle("PUT /api/users/me", authed(h.User.UpdateMe))
	mux.Handle("DELETE /api/users/me", authed(h.User.DeleteMe))
	mux.Handle("POST /api/users/me/password", authed(h.User.ChangePassword))

	// Address book.
	mux.Handle("POST /api/addresses", authed(h.Address.Create))
	mux.Handle("GET /api/addresses", authed(h.Address.List))
	mux.Handle("GET /api/addresses/{id}", authed(h.Address.Get))
	mux.Handle("PUT /api/addresses/{id}", authed(h.Address.Update))
	mux.Handle("PATCH /api/addresses/{id}/default", authed(h.Address.SetDefault))
	mux.Handle("DELETE /api/addresses/{id}", authed(h.Address.Delete))

	// Cart.
	mux.Handle("GET /api/cart", authed(h.Cart.Get))
	mux.Handle("DELETE /api/cart", authed(h.Cart.Clear))
	mux.Handle("POST /api/cart/items", authed(h.Cart.AddItem))
	mux.Handle("PUT /api/cart/items/{productId}", authed(h.Cart.UpdateItem))
	mux.Handle("DELETE /api/cart/items/{productId}", authed(h.Cart.RemoveItem))

	// Orders.
	mux.Handle("POST /api/orders", authed(h.Order.Create))
	mux.Handle("GET /api/orders", authed(h.Order.ListMine))
	mux.Handle("GET /api/orders/number/{orderNumber}", authed(h.Order.GetByNumber))
	mux.Handle("GET /api/orders/{id}", authed(h.Order.Get))
	mux.Handle("POST /api/orders/{id}/cancel", authed(h.Order.Cancel))
	mux.Handle("GET /api/orders/{id}/payment", authed(h.Payment.GetByOrder))

	// Payments.
	mux.Handle("POST /api/payments", authed(h.Payment.Create))
	mux.Handle("GET /api/payments/{id}", authed(h.Payment.Get))
	mux.Handle("POST /api/payments/{id}/process", authed(h.Payment.Process))

	// Reviews.
	mux.Handle("POST /api/reviews", authed(h.Review.Create))
	mux.Handle("GET /api/reviews", authed(h.Review.Mine))
	mux.Handle("PUT /api/reviews/{id}", authed(h.Review.Update))
	mux.Handle("DELETE /api/reviews/{id}", authed(h.Review.Delete))
	mux.Handle("POST /api/reviews/{id}/helpful", authed(h.Review.MarkHelpful))
	mux.Handle("PATCH /api/reviews/{id}/approve", admin(h.Review.Approve))

	// Seller catalogue management.
	mux.Handle("POST /api/seller/products", seller(h.Product.Create))
	mux.Handle("PUT /api/seller/products/{id}", seller(h.Product.Update))
	mux.Handle("PATCH /api/seller/products/{id}/stock", seller(h.Product.AdjustStock))
	mux.Handle("DELETE /api/seller/products/{id}", seller(h.Product.Archive))

	// Admin.
	mux.Handle("GET /api/admin/users", admin(h.User.List))
	mux.Handle("POST /api/admin/categories", admin(h.Category.Create))
	mux.Handle("PUT /api/admin/categories/{id}", admin(h.Category.Update))
	mux.Handle("DELETE /api/admin/categories/{id}", admin(h.Category.Delete))
	mux.Handle("GET /api/admin/orders", admin(h.Order.List))
	mux.Handle("PATCH /api/admin/orders/{id}/status", admin(h.Order.UpdateStatus))
	mux.Handle("PATCH /api/admin/orders/{id}/tracking", admin(h.Order.UpdateTracking))
	mux.Handle("POST /api/admin/payments/{id}/refund", admin(h.Payment.Refund))

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var root http.Handler = mux
	root = middleware.CORS(root)
	root = middleware.Logging(logger)(root)
	root = middleware.RequestID(root)
	root = middleware.Recovery(logger)(root)

	return root
}
