package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/order-stock-service/internal/model"
	"github.com/fairyhunter13/order-stock-service/internal/store"
)

type fixedRate struct {
	rate float64
	ok   bool
}

func (f fixedRate) Rate() (float64, bool) { return f.rate, f.ok }

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st := store.New()
	err := st.Update(func(tx *store.Tx) error {
		tx.PutProduct(model.Product{ID: "p1", Name: "Product 1", Price: 3.00, Stock: 30})
		tx.PutProduct(model.Product{ID: "p2", Name: "Product 2", Price: 5.00, Stock: 5})
		tx.PutProduct(model.Product{ID: "p3", Name: "Product 3", Price: 1.00, Stock: 10})
		return nil
	})
	require.NoError(t, err)
	return st
}

func stockOf(t *testing.T, st *store.Store, id string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.View(func(tx *store.Tx) error {
		p, ok := tx.Product(id)
		require.True(t, ok, "product %s", id)
		n = p.Stock
		return nil
	}))
	return n
}

// committed sums the quantities of one product across all orders.
func committed(t *testing.T, st *store.Store, id string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, st.View(func(tx *store.Tx) error {
		for _, o := range tx.Orders() {
			for _, it := range o.Items {
				if it.ProductID == id {
					n += it.Quantity
				}
			}
		}
		return nil
	}))
	return n
}

func TestCreateOrderDebitsStock(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p3", Quantity: 1},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, v.ID)
	assert.Equal(t, uint64(1), v.Version)
	assert.Len(t, v.Items, 2)

	assert.Equal(t, int64(28), stockOf(t, st, "p1"))
	assert.Equal(t, int64(9), stockOf(t, st, "p3"))
}

func TestCreateOrderDuplicateProduct(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	// stock is plentiful for both entries; the duplicate still wins
	_, err := svc.CreateOrder([]model.LineItem{
		{ProductID: "p3", Quantity: 1},
		{ProductID: "p3", Quantity: 2},
	})
	var dup *DuplicateProductError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "p3", dup.ProductID)
	assert.Contains(t, err.Error(), "is duplicated")

	// nothing was written
	assert.Equal(t, int64(10), stockOf(t, st, "p3"))
	assert.Equal(t, int64(0), committed(t, st, "p3"))
}

func TestCreateOrderInsufficientStockBoundaries(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	_, err := svc.CreateOrder([]model.LineItem{{ProductID: "p3", Quantity: 1000}})
	var ins *InsufficientStockError
	require.ErrorAs(t, err, &ins)
	assert.Equal(t, int64(1000), ins.Requested)
	assert.Equal(t, int64(10), ins.Available)

	_, err = svc.CreateOrder([]model.LineItem{{ProductID: "p3", Quantity: 11}})
	require.ErrorAs(t, err, &ins)

	_, err = svc.CreateOrder([]model.LineItem{{ProductID: "p3", Quantity: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stockOf(t, st, "p3"))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	_, err := svc.CreateOrder([]model.LineItem{{ProductID: "ghost", Quantity: 1}})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "product", nf.Kind)
	assert.Equal(t, "ghost", nf.ID)
}

func TestDeleteOrderRestocks(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 15}})
	require.NoError(t, err)
	assert.Equal(t, int64(15), stockOf(t, st, "p1"))

	require.NoError(t, svc.DeleteOrder(v.ID))
	assert.Equal(t, int64(30), stockOf(t, st, "p1"))

	_, err = svc.GetOrder(v.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestUpdateOrderDiff(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 15}})
	require.NoError(t, err)
	require.Equal(t, int64(15), stockOf(t, st, "p1"))

	got, err := svc.UpdateOrder(v.ID, 0, []model.LineItem{
		{ProductID: "p1", Quantity: 10},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)

	// p1 restocked by the 15-10 difference, p2 debited by 2
	assert.Equal(t, int64(20), stockOf(t, st, "p1"))
	assert.Equal(t, int64(3), stockOf(t, st, "p2"))

	require.Len(t, got.Items, 2)
	assert.Equal(t, model.LineItem{ProductID: "p1", Quantity: 10}, got.Items[0])
	assert.Equal(t, model.LineItem{ProductID: "p2", Quantity: 2}, got.Items[1])
	assert.Equal(t, uint64(2), got.Version)
}

func TestUpdateOrderRemovesAbsentProducts(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{
		{ProductID: "p1", Quantity: 5},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)

	got, err := svc.UpdateOrder(v.ID, 0, []model.LineItem{{ProductID: "p1", Quantity: 5}})
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, int64(5), stockOf(t, st, "p2"))
}

func TestUpdateOrderEmptySetClearsAndRestocks(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 7}})
	require.NoError(t, err)

	got, err := svc.UpdateOrder(v.ID, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, got.Items)
	assert.Equal(t, int64(30), stockOf(t, st, "p1"))
}

func TestUpdateOrderVersionConflict(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)

	_, err = svc.UpdateOrder(v.ID, v.Version, []model.LineItem{{ProductID: "p1", Quantity: 2}})
	require.NoError(t, err)

	// stale version from the first read
	_, err = svc.UpdateOrder(v.ID, v.Version, []model.LineItem{{ProductID: "p1", Quantity: 3}})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, v.ID, conflict.OrderID)

	// stock untouched by the rejected update
	assert.Equal(t, int64(28), stockOf(t, st, "p1"))
}

func TestStockConservation(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	check := func() {
		t.Helper()
		assert.Equal(t, int64(30), stockOf(t, st, "p1")+committed(t, st, "p1"))
		assert.Equal(t, int64(5), stockOf(t, st, "p2")+committed(t, st, "p2"))
		assert.Equal(t, int64(10), stockOf(t, st, "p3")+committed(t, st, "p3"))
	}

	a, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 15}})
	require.NoError(t, err)
	check()

	b, err := svc.CreateOrder([]model.LineItem{
		{ProductID: "p1", Quantity: 4},
		{ProductID: "p3", Quantity: 10},
	})
	require.NoError(t, err)
	check()

	_, err = svc.UpdateOrder(a.ID, 0, []model.LineItem{
		{ProductID: "p1", Quantity: 10},
		{ProductID: "p2", Quantity: 2},
	})
	require.NoError(t, err)
	check()

	require.NoError(t, svc.DeleteOrder(b.ID))
	check()

	require.NoError(t, svc.DeleteOrder(a.ID))
	check()
	assert.Equal(t, int64(30), stockOf(t, st, "p1"))
}

func TestValidateIsIdempotent(t *testing.T) {
	st := seedStore(t)
	items := []model.LineItem{
		{ProductID: "p1", Quantity: 2},
		{ProductID: "p2", Quantity: 2},
	}
	require.NoError(t, st.View(func(tx *store.Tx) error {
		require.NoError(t, Validate(tx, items))
		require.NoError(t, Validate(tx, items))
		return nil
	}))

	bad := []model.LineItem{{ProductID: "p2", Quantity: 50}}
	require.NoError(t, st.View(func(tx *store.Tx) error {
		first := Validate(tx, bad)
		second := Validate(tx, bad)
		var ins *InsufficientStockError
		require.ErrorAs(t, first, &ins)
		assert.Equal(t, first.Error(), second.Error())
		return nil
	}))
}

func TestOrderTotals(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, fixedRate{rate: 200, ok: true})

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 15}})
	require.NoError(t, err)
	assert.Equal(t, 45.0, v.Total)
	require.NotNil(t, v.TotalUSD)
	assert.Equal(t, 9000.0, *v.TotalUSD)
}

func TestOrderTotalsWithoutRate(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, fixedRate{ok: false})

	v, err := svc.CreateOrder([]model.LineItem{{ProductID: "p2", Quantity: 2}})
	require.NoError(t, err)
	assert.Equal(t, 10.0, v.Total)
	assert.Nil(t, v.TotalUSD)
}

func TestListOrders(t *testing.T) {
	st := seedStore(t)
	svc := NewService(st, nil)

	views, err := svc.ListOrders()
	require.NoError(t, err)
	assert.Empty(t, views)

	_, err = svc.CreateOrder([]model.LineItem{{ProductID: "p1", Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.CreateOrder([]model.LineItem{{ProductID: "p2", Quantity: 1}})
	require.NoError(t, err)

	views, err = svc.ListOrders()
	require.NoError(t, err)
	assert.Len(t, views, 2)
}
