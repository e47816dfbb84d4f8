// Package store implements the in-memory product and order store.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/fairyhunter13/order-stock-service/internal/model"
)

// ErrNotFound is returned when a referenced product does not exist.
var ErrNotFound = errors.New("not found")

// ErrNegativeStock is returned when a stock adjustment would take a
// product's stock below zero. No mutation happens in that case.
var ErrNegativeStock = errors.New("stock would become negative")

// Store keeps products and orders behind a single lock. A write
// transaction is the serializable unit of work for reconciliation:
// validation reads and stock adjustments made inside one Update call
// observe and mutate the same consistent snapshot.
type Store struct {
	mu       sync.RWMutex
	products map[string]model.Product
	orders   map[string]model.Order
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		products: make(map[string]model.Product),
		orders:   make(map[string]model.Order),
	}
}

// Tx is a handle on the store valid only for the duration of the View
// or Update call that produced it.
type Tx struct {
	s        *Store
	writable bool
}

// View runs fn under the read lock. fn must not retain the Tx.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s})
}

// Update runs fn under the write lock. If fn returns an error the
// caller must not have mutated anything through the Tx yet; the store
// does not keep an undo log.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&Tx{s: s, writable: true})
}

// Counts reports how many products and orders exist.
func (s *Store) Counts() (products, orders int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), len(s.orders)
}

func (tx *Tx) mustWrite() {
	if !tx.writable {
		panic("store: write on read-only transaction")
	}
}

// Product returns a copy of the product with the given id.
func (tx *Tx) Product(id string) (model.Product, bool) {
	p, ok := tx.s.products[id]
	return p, ok
}

// Products returns all products ordered by id.
func (tx *Tx) Products() []model.Product {
	out := make([]model.Product, 0, len(tx.s.products))
	for _, p := range tx.s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PutProduct inserts or replaces a product.
func (tx *Tx) PutProduct(p model.Product) {
	tx.mustWrite()
	tx.s.products[p.ID] = p
}

// DeleteProduct removes a product from the catalog. Line items
// referencing it are removed from every order without restocking,
// mirroring a cascading foreign key.
func (tx *Tx) DeleteProduct(id string) bool {
	tx.mustWrite()
	if _, ok := tx.s.products[id]; !ok {
		return false
	}
	delete(tx.s.products, id)
	for oid, o := range tx.s.orders {
		kept := o.Items[:0:0]
		for _, it := range o.Items {
			if it.ProductID != id {
				kept = append(kept, it)
			}
		}
		if len(kept) != len(o.Items) {
			o.Items = kept
			tx.s.orders[oid] = o
		}
	}
	return true
}

// AdjustStock applies a signed relative adjustment to a product's
// stock. A zero delta is a no-op. The adjustment is refused, with no
// mutation, when the product is missing or the result would be
// negative.
func (tx *Tx) AdjustStock(id string, delta int64) error {
	tx.mustWrite()
	p, ok := tx.s.products[id]
	if !ok {
		return ErrNotFound
	}
	if delta == 0 {
		return nil
	}
	next := p.Stock + delta
	if next < 0 {
		return ErrNegativeStock
	}
	p.Stock = next
	tx.s.products[id] = p
	return nil
}

// Order returns a copy of the order with the given id, its line items
// included.
func (tx *Tx) Order(id string) (model.Order, bool) {
	o, ok := tx.s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return copyOrder(o), true
}

// Orders returns all orders sorted by creation time, oldest first.
func (tx *Tx) Orders() []model.Order {
	out := make([]model.Order, 0, len(tx.s.orders))
	for _, o := range tx.s.orders {
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateTime.Equal(out[j].DateTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].DateTime.Before(out[j].DateTime)
	})
	return out
}

// PutOrder inserts or replaces an order together with its line items.
func (tx *Tx) PutOrder(o model.Order) {
	tx.mustWrite()
	tx.s.orders[o.ID] = copyOrder(o)
}

// DeleteOrder removes an order and its line items.
func (tx *Tx) DeleteOrder(id string) bool {
	tx.mustWrite()
	if _, ok := tx.s.orders[id]; !ok {
		return false
	}
	delete(tx.s.orders, id)
	return true
}

func copyOrder(o model.Order) model.Order {
	items := make([]model.LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
