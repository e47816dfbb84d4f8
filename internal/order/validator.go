package order

import (
	"github.com/fairyhunter13/order-stock-service/internal/model"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

// Validate checks a candidate line-item set against the stock snapshot
// visible through tx. It mutates nothing and runs identically for
// order creation and order update.
//
// Entries are scanned left to right. For a given entry a duplicate
// product reference is reported before an insufficient-stock
// condition. The stock comparison always uses the product's current
// stock, not a value speculatively adjusted by this operation.
func Validate(tx *store.Tx, items []model.LineItem) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		p, ok := tx.Product(it.ProductID)
		if !ok {
			return &NotFoundError{Kind: "product", ID: it.ProductID}
		}
		if _, dup := seen[it.ProductID]; dup {
			return &DuplicateProductError{ProductID: p.ID, Name: p.Name}
		}
		seen[it.ProductID] = struct{}{}
		if it.Quantity > p.Stock {
			return &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: it.Quantity,
				Available: p.Stock,
			}
		}
	}
	return nil
}
