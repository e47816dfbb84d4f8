package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fairyhunter13/order-stock-service/internal/config"
	httpopenapi "github.com/fairyhunter13/order-stock-service/internal/http/openapi"
	"github.com/fairyhunter13/order-stock-service/internal/model"
	"github.com/fairyhunter13/order-stock-service/internal/order"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

type App struct {
	Cfg     config.Config
	Store   *store.Store
	Orders  *order.Service
	Rates   order.RateSource
	started time.Time
}

func NewApp(cfg config.Config, st *store.Store, svc *order.Service, rates order.RateSource) *App {
	return &App{Cfg: cfg, Store: st, Orders: svc, Rates: rates, started: time.Now()}
}

// decodeJSON enforces the JSON content type and strict field checking
// before decoding the request body into dst. It writes the error
// response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		WriteJSONError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected application/json")
		return false
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type productRequest struct {
	Name  string   `json:"name"`
	Price *float64 `json:"price"`
	Stock *int64   `json:"stock"`
}

func (pr *productRequest) validate(w http.ResponseWriter) bool {
	switch {
	case pr.Name == "":
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "name is required")
	case pr.Price == nil:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "price is required")
	case *pr.Price < 0:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "price must be >= 0")
	case pr.Stock == nil:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock is required")
	case *pr.Stock < 0:
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock must be >= 0")
	default:
		return true
	}
	return false
}

func (a *App) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	var out []model.Product
	_ = a.Store.View(func(tx *store.Tx) error {
		out = tx.Products()
		return nil
	})
	if out == nil {
		out = []model.Product{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) createProductHandler(w http.ResponseWriter, r *http.Request) {
	var pr productRequest
	if !decodeJSON(w, r, &pr) {
		return
	}
	if !pr.validate(w) {
		return
	}
	p := model.Product{ID: uuid.NewString(), Name: pr.Name, Price: *pr.Price, Stock: *pr.Stock}
	_ = a.Store.Update(func(tx *store.Tx) error {
		tx.PutProduct(p)
		return nil
	})
	writeJSON(w, http.StatusCreated, p)
}

func (a *App) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	var p model.Product
	var ok bool
	_ = a.Store.View(func(tx *store.Tx) error {
		p, ok = tx.Product(id)
		return nil
	})
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	var pr productRequest
	if !decodeJSON(w, r, &pr) {
		return
	}
	if !pr.validate(w) {
		return
	}
	var found bool
	var p model.Product
	_ = a.Store.Update(func(tx *store.Tx) error {
		if _, found = tx.Product(id); !found {
			return nil
		}
		p = model.Product{ID: id, Name: pr.Name, Price: *pr.Price, Stock: *pr.Stock}
		tx.PutProduct(p)
		return nil
	})
	if !found {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *App) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	var found bool
	_ = a.Store.Update(func(tx *store.Tx) error {
		found = tx.DeleteProduct(id)
		return nil
	})
	if !found {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) updateStockHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productID")
	var body struct {
		Stock *int64 `json:"stock"`
	}
	if !decodeJSON(w, r, &body) {
		return
	}
	if body.Stock == nil {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock is required")
		return
	}
	if *body.Stock < 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "stock must be >= 0")
		return
	}
	var found bool
	var p model.Product
	_ = a.Store.Update(func(tx *store.Tx) error {
		if p, found = tx.Product(id); !found {
			return nil
		}
		p.Stock = *body.Stock
		tx.PutProduct(p)
		return nil
	})
	if !found {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type lineItemRequest struct {
	Product  string `json:"product"`
	Quantity int64  `json:"quantity"`
}

type orderRequest struct {
	Details []lineItemRequest `json:"details"`
	Version uint64            `json:"version,omitempty"`
}

// lineItems validates the boundary payload shape; domain rules
// (duplicates, stock) belong to the order package.
func (req *orderRequest) lineItems(w http.ResponseWriter) ([]model.LineItem, bool) {
	items := make([]model.LineItem, 0, len(req.Details))
	for _, d := range req.Details {
		if d.Product == "" {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "product is required in every detail")
			return nil, false
		}
		if d.Quantity < 1 {
			WriteJSONError(w, http.StatusBadRequest, "validation_error", "quantity must be >= 1")
			return nil, false
		}
		items = append(items, model.LineItem{ProductID: d.Product, Quantity: d.Quantity})
	}
	return items, true
}

func (a *App) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	views, err := a.Orders.ListOrders()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *App) createOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Details) == 0 {
		WriteJSONError(w, http.StatusBadRequest, "validation_error", "details must not be empty")
		return
	}
	items, ok := req.lineItems(w)
	if !ok {
		return
	}
	v, err := a.Orders.CreateOrder(items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (a *App) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	v, err := a.Orders.GetOrder(chi.URLParam(r, "orderID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *App) updateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	items, ok := req.lineItems(w)
	if !ok {
		return
	}
	v, err := a.Orders.UpdateOrder(chi.URLParam(r, "orderID"), req.Version, items)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *App) deleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.Orders.DeleteOrder(chi.URLParam(r, "orderID")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) metricsHandler(w http.ResponseWriter, r *http.Request) {
	products, orders := a.Store.Counts()
	rateAvailable := false
	if a.Rates != nil {
		_, rateAvailable = a.Rates.Rate()
	}
	m := map[string]any{
		"products":       products,
		"orders":         orders,
		"rate_available": rateAvailable,
		"uptime_sec":     time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *App) openapiHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(httpopenapi.YAML)
}

func (a *App) docsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	html := `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui'
      });
    </script>
  </body>
</html>`
	_, _ = w.Write([]byte(html))
}
