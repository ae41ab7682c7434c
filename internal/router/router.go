package router

import (
	"net/http"

	"product-catalog/internal/handler"
	"product-catalog/internal/middleware"

	"github.com/rs/zerolog"
)

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	wizardHandler *handler.WizardHandler,
	logger zerolog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	// Product list
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/local", productHandler.Added)

	// Add-product wizard
	mux.HandleFunc("POST /api/wizard", wizardHandler.Start)
	mux.HandleFunc("GET /api/wizard/{id}", wizardHandler.Get)
	mux.HandleFunc("GET /api/wizard/{id}/review", wizardHandler.Review)
	mux.HandleFunc("POST /api/wizard/{id}/submit", wizardHandler.Submit)
	mux.HandleFunc("POST /api/wizard/{id}/confirm", wizardHandler.Confirm)
	mux.HandleFunc("POST /api/wizard/{id}/cancel", wizardHandler.Cancel)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS
	var handler http.Handler = mux
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(logger)(handler)

	return handler
}
