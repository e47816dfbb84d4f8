package httpapi

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers HTTP routes and returns the handler with middleware.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Use(WithRequestID, WithLogging)

	r.Route("/products", func(r chi.Router) {
		r.Get("/", app.listProductsHandler)
		r.Post("/", app.createProductHandler)
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", app.getProductHandler)
			r.Put("/", app.updateProductHandler)
			r.Delete("/", app.deleteProductHandler)
			r.Post("/update_stock", app.updateStockHandler)
		})
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", app.listOrdersHandler)
		r.Post("/", app.createOrderHandler)
		r.Route("/{orderID}", func(r chi.Router) {
			r.Get("/", app.getOrderHandler)
			r.Put("/", app.updateOrderHandler)
			r.Delete("/", app.deleteOrderHandler)
		})
	})

	r.Get("/healthz", app.healthHandler)
	r.Get("/debug/metrics", app.metricsHandler)
	r.Handle("/debug/vars", expvar.Handler())
	r.Get("/openapi.yaml", app.openapiHandler)
	r.Get("/docs", app.docsHandler)
	return r
}
