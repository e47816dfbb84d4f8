// Package order implements the order lifecycle and the reconciliation
// of line-item changes against product stock. For every product,
// available stock plus the quantities committed to existing orders is
// conserved across create, update, and delete.
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/order-stock-service/internal/model"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

// RateSource supplies the current display-currency exchange rate.
// The second return is false when no rate is available; order reads
// still succeed in that case.
type RateSource interface {
	Rate() (float64, bool)
}

// View is an order decorated with display totals. TotalUSD is nil
// when no exchange rate is available.
type View struct {
	ID       string           `json:"id"`
	DateTime time.Time        `json:"date_time"`
	Items    []model.LineItem `json:"details"`
	Version  uint64           `json:"version"`
	Total    float64          `json:"total"`
	TotalUSD *float64         `json:"total_usd"`
}

// Service orchestrates order create, update, and delete. Validation
// and reconciliation run inside a single store write transaction, so
// the stock check and the applied deltas always see one snapshot.
type Service struct {
	st    *store.Store
	rates RateSource
}

// NewService constructs a Service. rates may be nil, in which case
// converted totals are never reported.
func NewService(st *store.Store, rates RateSource) *Service {
	return &Service{st: st, rates: rates}
}

// CreateOrder validates the candidate set and commits a new order,
// debiting each product's stock by the ordered quantity.
func (s *Service) CreateOrder(items []model.LineItem) (View, error) {
	var out View
	err := s.st.Update(func(tx *store.Tx) error {
		if err := Validate(tx, items); err != nil {
			return err
		}
		final, deltas := diff(nil, items)
		if err := applyDeltas(tx, deltas); err != nil {
			return err
		}
		o := model.Order{
			ID:       uuid.NewString(),
			DateTime: time.Now().UTC(),
			Items:    final,
			Version:  1,
		}
		tx.PutOrder(o)
		out = s.view(tx, o)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return out, nil
}

// UpdateOrder replaces the order's entire line-item set with items and
// applies the net stock deltas. expectedVersion enables optimistic
// locking: pass the version from a previous read to fail with a
// ConflictError if the order changed in between, or 0 to skip the
// check. The stock-sufficiency check uses raw current stock; quantity
// already committed to this same order is not excluded.
func (s *Service) UpdateOrder(id string, expectedVersion uint64, items []model.LineItem) (View, error) {
	var out View
	err := s.st.Update(func(tx *store.Tx) error {
		prev, ok := tx.Order(id)
		if !ok {
			return &NotFoundError{Kind: "order", ID: id}
		}
		if expectedVersion != 0 && expectedVersion != prev.Version {
			return &ConflictError{OrderID: id, Expected: expectedVersion, Current: prev.Version}
		}
		if err := Validate(tx, items); err != nil {
			return err
		}
		final, deltas := diff(prev.Items, items)
		if err := applyDeltas(tx, deltas); err != nil {
			return err
		}
		o := model.Order{
			ID:       prev.ID,
			DateTime: time.Now().UTC(),
			Items:    final,
			Version:  prev.Version + 1,
		}
		tx.PutOrder(o)
		out = s.view(tx, o)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return out, nil
}

// DeleteOrder restocks every committed quantity and removes the order
// together with its line items.
func (s *Service) DeleteOrder(id string) error {
	return s.st.Update(func(tx *store.Tx) error {
		prev, ok := tx.Order(id)
		if !ok {
			return &NotFoundError{Kind: "order", ID: id}
		}
		_, deltas := diff(prev.Items, nil)
		if err := applyDeltas(tx, deltas); err != nil {
			return err
		}
		tx.DeleteOrder(id)
		return nil
	})
}

// GetOrder returns one order with its display totals.
func (s *Service) GetOrder(id string) (View, error) {
	var out View
	err := s.st.View(func(tx *store.Tx) error {
		o, ok := tx.Order(id)
		if !ok {
			return &NotFoundError{Kind: "order", ID: id}
		}
		out = s.view(tx, o)
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return out, nil
}

// ListOrders returns every order with display totals, oldest first.
func (s *Service) ListOrders() ([]View, error) {
	var out []View
	err := s.st.View(func(tx *store.Tx) error {
		for _, o := range tx.Orders() {
			out = append(out, s.view(tx, o))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []View{}
	}
	return out, nil
}

func (s *Service) view(tx *store.Tx, o model.Order) View {
	total := decimal.Zero
	for _, it := range o.Items {
		p, ok := tx.Product(it.ProductID)
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(p.Price).Mul(decimal.NewFromInt(it.Quantity)))
	}
	v := View{
		ID:       o.ID,
		DateTime: o.DateTime,
		Items:    o.Items,
		Version:  o.Version,
	}
	v.Total, _ = total.Float64()
	if s.rates != nil {
		if rate, ok := s.rates.Rate(); ok {
			usd, _ := total.Mul(decimal.NewFromFloat(rate)).Float64()
			v.TotalUSD = &usd
		}
	}
	return v
}
