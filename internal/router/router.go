package router

import (
	"net/http"

	"gemkart/internal/handler"
	"gemkart/internal/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	cartHandler *handler.CartHandler,
	orderHandler *handler.OrderHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", promhttp.Handler())

	// Cart routes
	mux.HandleFunc("GET /api/cart", cartHandler.Get)
	mux.HandleFunc("DELETE /api/cart", cartHandler.Clear)
	mux.HandleFunc("POST /api/cart/items", cartHandler.AddItem)
	mux.HandleFunc("PUT /api/cart/items/{itemId}", cartHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/cart/items/{itemId}", cartHandler.RemoveItem)
	mux.HandleFunc("POST /api/cart/validate", cartHandler.Validate)
	mux.HandleFunc("POST /api/cart/coupon", cartHandler.ApplyCoupon)
	mux.HandleFunc("DELETE /api/cart/coupon", cartHandler.RemoveCoupon)

	// Order routes; tracking is public
	mux.HandleFunc("POST /api/orders", orderHandler.Create)
	mux.HandleFunc("GET /api/orders", orderHandler.List)
	mux.HandleFunc("GET /api/orders/{orderId}", orderHandler.GetByID)
	mux.HandleFunc("POST /api/orders/{orderId}/cancel", orderHandler.Cancel)
	mux.HandleFunc("POST /api/orders/{orderId}/return", orderHandler.RequestReturn)
	mux.HandleFunc("GET /api/orders/track/{orderNumber}", orderHandler.Track)

	// Apply middleware in order: Recovery -> Logging -> Metrics -> CORS
	// -> APIKeyAuth -> UserIdentity
	var h http.Handler = mux
	h = middleware.UserIdentity(logger)(h)
	h = middleware.APIKeyAuth(apiKey, logger)(h)
	h = middleware.CORS(h)
	h = middleware.Metrics(mux)(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
