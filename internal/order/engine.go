package order

import (
	"errors"

	"github.com/fairyhunter13/order-stock-service/internal/model"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

// stockDelta is a signed adjustment to one product's available stock.
type stockDelta struct {
	productID string
	delta     int64
}

// diff reconciles an order's committed line items against a full
// replacement set. It partitions the incoming set three ways against
// the previous one, keyed by product:
//
//   - new product: debit the incoming quantity
//   - matched product: delta = previous - incoming, emitted even when
//     zero; the line item carries the incoming quantity
//   - product absent from incoming: full restock of the previous
//     quantity, line item dropped
//
// The returned items are exactly the incoming set. Create is
// diff(nil, items); delete is diff(items, nil).
func diff(previous, incoming []model.LineItem) (items []model.LineItem, deltas []stockDelta) {
	prevQty := make(map[string]int64, len(previous))
	for _, it := range previous {
		prevQty[it.ProductID] = it.Quantity
	}
	items = make([]model.LineItem, 0, len(incoming))
	kept := make(map[string]struct{}, len(incoming))
	for _, it := range incoming {
		items = append(items, model.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
		kept[it.ProductID] = struct{}{}
		if q, ok := prevQty[it.ProductID]; ok {
			deltas = append(deltas, stockDelta{productID: it.ProductID, delta: q - it.Quantity})
		} else {
			deltas = append(deltas, stockDelta{productID: it.ProductID, delta: -it.Quantity})
		}
	}
	for _, it := range previous {
		if _, ok := kept[it.ProductID]; !ok {
			deltas = append(deltas, stockDelta{productID: it.ProductID, delta: it.Quantity})
		}
	}
	return items, deltas
}

// applyDeltas commits a batch of stock adjustments through tx. Every
// delta is verified before any is applied, so a failure leaves stock
// untouched. Restocking a product that has since left the catalog is
// skipped rather than failed.
func applyDeltas(tx *store.Tx, deltas []stockDelta) error {
	for _, d := range deltas {
		p, ok := tx.Product(d.productID)
		if !ok {
			if d.delta > 0 {
				continue
			}
			return &NotFoundError{Kind: "product", ID: d.productID}
		}
		if p.Stock+d.delta < 0 {
			return &InsufficientStockError{
				ProductID: p.ID,
				Name:      p.Name,
				Requested: -d.delta,
				Available: p.Stock,
			}
		}
	}
	for _, d := range deltas {
		if err := tx.AdjustStock(d.productID, d.delta); err != nil {
			if errors.Is(err, store.ErrNotFound) && d.delta > 0 {
				continue
			}
			return err
		}
	}
	return nil
}
