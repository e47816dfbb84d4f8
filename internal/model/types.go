// Package model defines domain types used by the service.
package model

import "time"

// Product is a catalog entry together with its available stock.
type Product struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int64   `json:"stock"`
}

// LineItem commits a quantity of one product to an order. Within one
// order no two line items reference the same product.
type LineItem struct {
	ProductID string `json:"product"`
	Quantity  int64  `json:"quantity"`
}

// Order owns its line items; they are stored and deleted with it.
// Version increases on every successful update and backs optimistic
// concurrency checks.
type Order struct {
	ID       string     `json:"id"`
	DateTime time.Time  `json:"date_time"`
	Items    []LineItem `json:"details"`
	Version  uint64     `json:"version"`
}
