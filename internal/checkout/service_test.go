package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore meniru kontrak CreateOrderTx: decrement per line, rollback
// total kalau ada line yang gagal di tengah.
type memStore struct {
	stock   map[string]int
	orders  map[string]shop.Order
	nextID  int
	failErr error // paksa kegagalan storage
}

func newMemStore(stock map[string]int) *memStore {
	return &memStore{stock: stock, orders: map[string]shop.Order{}}
}

func (m *memStore) CreateOrderTx(_ context.Context, in shop.NewOrder) (string, error) {
	if m.failErr != nil {
		return "", m.failErr
	}

	applied := make([]shop.OrderLine, 0, len(in.Lines))
	rollback := func() {
		for _, l := range applied {
			m.stock[l.ProductID] += l.Qty
		}
	}
	for _, l := range in.Lines {
		avail, ok := m.stock[l.ProductID]
		if !ok {
			rollback()
			return "", &shop.ProductNotFoundError{ProductID: l.ProductID}
		}
		if avail < l.Qty {
			rollback()
			return "", &shop.InsufficientStockError{ProductID: l.ProductID, Requested: l.Qty, Available: avail}
		}
		m.stock[l.ProductID] -= l.Qty
		applied = append(applied, l)
	}

	m.nextID++
	id := fmt.Sprintf("order-%d", m.nextID)
	m.orders[id] = shop.Order{
		ID: id, UserRef: in.UserRef, Status: shop.StatusPaid,
		TotalCents: in.TotalCents, Lines: in.Lines,
		Address: in.Address, Phone: in.Phone,
		PaymentMethod: in.PaymentMethod, PaymentProof: in.PaymentProof,
	}
	return id, nil
}

func cartWith(entries ...shop.CartEntry) *shop.Cart {
	c := shop.NewCart()
	for _, e := range entries {
		c.Add(e.Product, e.Qty)
	}
	return c
}

func TestCheckoutSuccessScenario(t *testing.T) {
	// cart = [A 500x2, B 300x1], stock(A)=5, stock(B)=1
	store := newMemStore(map[string]int{"A": 5, "B": 1})
	svc := &Service{Store: store}

	cart := cartWith(
		shop.CartEntry{Product: shop.Product{ID: "A", Name: "Hoodie", PriceCents: 500}, Qty: 2},
		shop.CartEntry{Product: shop.Product{ID: "B", Name: "Tee", PriceCents: 300}, Qty: 1},
	)

	res, err := svc.Checkout(context.Background(), Input{
		UserRef: "alice", Cart: cart,
		Address: "Jl. Sudirman 1", Phone: "0812",
		PaymentMethod: shop.PaymentCOD,
	})
	require.NoError(t, err)
	assert.Equal(t, 1300, res.TotalCents)
	assert.Equal(t, 3, store.stock["A"])
	assert.Equal(t, 0, store.stock["B"])
	assert.Equal(t, 0, cart.Len(), "cart harus dikosongkan setelah sukses")

	o := store.orders[res.OrderID]
	assert.Equal(t, shop.StatusPaid, o.Status)
	assert.Equal(t, "alice", o.UserRef)
	require.Len(t, o.Lines, 2)
}

func TestCheckoutInsufficientStockScenario(t *testing.T) {
	// cart = [C 100x3], stock(C)=2 -> gagal, tidak ada efek apa pun
	store := newMemStore(map[string]int{"C": 2})
	svc := &Service{Store: store}

	cart := cartWith(shop.CartEntry{Product: shop.Product{ID: "C", PriceCents: 100}, Qty: 3})

	_, err := svc.Checkout(context.Background(), Input{
		UserRef: "bob", Cart: cart, PaymentMethod: shop.PaymentCOD,
	})

	var insufficient *shop.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "C", insufficient.ProductID)
	assert.Equal(t, 3, insufficient.Requested)
	assert.Equal(t, 2, insufficient.Available)

	assert.Empty(t, store.orders, "tidak boleh ada order terbentuk")
	assert.Equal(t, 2, store.stock["C"], "stok tidak boleh berubah")
	assert.Equal(t, 1, cart.Len(), "cart tidak boleh dikosongkan saat gagal")
}

func TestCheckoutAtomicityMidwayFailure(t *testing.T) {
	// line kedua gagal -> decrement line pertama harus batal juga
	store := newMemStore(map[string]int{"A": 10, "B": 0})
	svc := &Service{Store: store}

	cart := cartWith(
		shop.CartEntry{Product: shop.Product{ID: "A", PriceCents: 100}, Qty: 2},
		shop.CartEntry{Product: shop.Product{ID: "B", PriceCents: 200}, Qty: 1},
	)

	_, err := svc.Checkout(context.Background(), Input{UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentCOD})

	var insufficient *shop.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 10, store.stock["A"], "stok line sebelum titik gagal harus utuh")
	assert.Empty(t, store.orders)
}

func TestCheckoutEmptyCartFailsFast(t *testing.T) {
	store := newMemStore(map[string]int{})
	svc := &Service{Store: store}

	_, err := svc.Checkout(context.Background(), Input{UserRef: "u", Cart: shop.NewCart(), PaymentMethod: shop.PaymentCOD})
	assert.ErrorIs(t, err, shop.ErrEmptyCart)

	_, err = svc.Checkout(context.Background(), Input{UserRef: "u", Cart: nil, PaymentMethod: shop.PaymentCOD})
	assert.ErrorIs(t, err, shop.ErrEmptyCart)
}

func TestCheckoutRequiresAuth(t *testing.T) {
	svc := &Service{Store: newMemStore(nil)}
	cart := cartWith(shop.CartEntry{Product: shop.Product{ID: "A", PriceCents: 1}, Qty: 1})

	_, err := svc.Checkout(context.Background(), Input{UserRef: "", Cart: cart})
	assert.ErrorIs(t, err, shop.ErrNotAuthenticated)
}

func TestCheckoutTransferRequiresProof(t *testing.T) {
	store := newMemStore(map[string]int{"A": 5})
	svc := &Service{Store: store}
	cart := cartWith(shop.CartEntry{Product: shop.Product{ID: "A", PriceCents: 100}, Qty: 1})

	_, err := svc.Checkout(context.Background(), Input{
		UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentTransfer,
	})
	assert.ErrorIs(t, err, shop.ErrPaymentProofRequired)
	assert.Equal(t, 1, cart.Len())

	// payment method kosong default ke transfer -> tetap butuh bukti
	_, err = svc.Checkout(context.Background(), Input{UserRef: "u", Cart: cart})
	assert.ErrorIs(t, err, shop.ErrPaymentProofRequired)

	res, err := svc.Checkout(context.Background(), Input{
		UserRef: "u", Cart: cart,
		PaymentMethod: shop.PaymentTransfer, PaymentProofRef: "/uploads/slip-1.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/slip-1.jpg", store.orders[res.OrderID].PaymentProof)
}

func TestCheckoutInvalidPaymentMethod(t *testing.T) {
	svc := &Service{Store: newMemStore(map[string]int{"A": 5})}
	cart := cartWith(shop.CartEntry{Product: shop.Product{ID: "A", PriceCents: 100}, Qty: 1})

	_, err := svc.Checkout(context.Background(), Input{
		UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentMethod("paypal"),
	})
	assert.Error(t, err)
	assert.Equal(t, 1, cart.Len())
}

func TestCheckoutStorageFailureBecomesTxAborted(t *testing.T) {
	store := newMemStore(map[string]int{"A": 5})
	store.failErr = errors.New("connection reset")
	svc := &Service{Store: store}
	cart := cartWith(shop.CartEntry{Product: shop.Product{ID: "A", PriceCents: 100}, Qty: 1})

	_, err := svc.Checkout(context.Background(), Input{UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentCOD})

	var aborted *shop.TxAbortedError
	require.ErrorAs(t, err, &aborted)
	assert.ErrorContains(t, aborted.Err, "connection reset")
	assert.Equal(t, 1, cart.Len(), "caller tidak boleh berasumsi partial success")
}

func TestCheckoutTotalFromSnapshotNotCatalog(t *testing.T) {
	store := newMemStore(map[string]int{"A": 5})
	svc := &Service{Store: store}

	p := shop.Product{ID: "A", Name: "Hoodie", PriceCents: 500}
	cart := cartWith(shop.CartEntry{Product: p, Qty: 2})

	res, err := svc.Checkout(context.Background(), Input{UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentCOD})
	require.NoError(t, err)

	// P3/P5: repricing & rename setelah checkout tidak mengubah order lama
	p.PriceCents = 9999
	p.Name = "Renamed"

	o := store.orders[res.OrderID]
	assert.Equal(t, 1000, o.TotalCents)
	assert.Equal(t, 500, o.Lines[0].PriceCents)
	assert.Equal(t, "Hoodie", o.Lines[0].Name)

	sum := 0
	for _, l := range o.Lines {
		sum += l.SubtotalCents()
	}
	assert.Equal(t, o.TotalCents, sum, "total == sum(line subtotal)")
}

func TestCheckoutMergesDuplicateLines(t *testing.T) {
	store := newMemStore(map[string]int{"A": 5})
	svc := &Service{Store: store}

	cart := shop.NewCart()
	cart.Add(shop.Product{ID: "A", PriceCents: 100}, 2)
	cart.Add(shop.Product{ID: "A", PriceCents: 100}, 1)

	res, err := svc.Checkout(context.Background(), Input{UserRef: "u", Cart: cart, PaymentMethod: shop.PaymentCOD})
	require.NoError(t, err)
	require.Len(t, store.orders[res.OrderID].Lines, 1)
	assert.Equal(t, 3, store.orders[res.OrderID].Lines[0].Qty)
	assert.Equal(t, 2, store.stock["A"])
}
