package order

import "fmt"

// DuplicateProductError reports a product referenced more than once in
// one submitted line-item set.
type DuplicateProductError struct {
	ProductID string
	Name      string
}

func (e *DuplicateProductError) Error() string {
	return fmt.Sprintf("product %s is duplicated", label(e.Name, e.ProductID))
}

// InsufficientStockError reports a requested quantity exceeding the
// product's available stock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
		label(e.Name, e.ProductID), e.Requested, e.Available)
}

// NotFoundError reports a missing product or order reference.
type NotFoundError struct {
	Kind string // "product" or "order"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// ConflictError reports a version mismatch on a concurrent order update.
type ConflictError struct {
	OrderID  string
	Expected uint64
	Current  uint64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order %s version conflict: expected %d, current %d",
		e.OrderID, e.Expected, e.Current)
}

func label(name, id string) string {
	if name != "" {
		return name
	}
	return id
}
