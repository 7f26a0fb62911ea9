package router

import (
	"net/http"

	"stockroom/internal/handler"
	"stockroom/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// New creates the HTTP router with all routes and middleware configured.
func New(
	orderHandler *handler.OrderHandler,
	inventoryHandler *handler.InventoryHandler,
	notificationHandler *handler.NotificationHandler,
	apiKey string,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(apiKey, logger))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Place)
			r.Get("/{id}", orderHandler.GetByID)
			r.Post("/{id}/cancel", orderHandler.Cancel)
			r.Post("/{id}/status", orderHandler.UpdateStatus)
			r.Post("/{id}/payment", orderHandler.ConfirmPayment)
		})

		r.Post("/advance", orderHandler.Advance)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", inventoryHandler.ListProducts)
			r.Get("/low-stock", inventoryHandler.ListLowStock)
			r.Get("/{id}", inventoryHandler.GetProduct)
			r.Get("/{id}/batches", inventoryHandler.ListBatches)
			r.Post("/{id}/batches", inventoryHandler.AddBatch)
		})

		r.Delete("/batches/{id}", inventoryHandler.RemoveBatch)

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.ListUnread)
			r.Post("/{id}/read", notificationHandler.MarkRead)
			r.Post("/read-all", notificationHandler.MarkAllRead)
		})
	})

	return r
}
