// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/order-stock-service/internal/order"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonError{Error: message, Details: details})
}

// writeDomainError maps the order error taxonomy onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		dup      *order.DuplicateProductError
		ins      *order.InsufficientStockError
		nf       *order.NotFoundError
		conflict *order.ConflictError
	)
	switch {
	case errors.As(err, &dup):
		WriteJSONError(w, http.StatusBadRequest, "duplicate_product", dup.Error())
	case errors.As(err, &ins):
		WriteJSONError(w, http.StatusBadRequest, "insufficient_stock", ins.Error())
	case errors.As(err, &nf):
		WriteJSONError(w, http.StatusNotFound, "not_found", nf.Error())
	case errors.As(err, &conflict):
		WriteJSONError(w, http.StatusConflict, "conflict", conflict.Error())
	default:
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
