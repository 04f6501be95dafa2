package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ariefcatur/go-shop-orders.git/internal/checkout"
	"github.com/ariefcatur/go-shop-orders.git/internal/lifecycle"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

type ShopHandler struct {
	Checkout  *checkout.Service
	Lifecycle *lifecycle.Service
	Catalog   *shop.Repo
	Redis     *redis.Client
}

func (h *ShopHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.doCheckout)
	r.Get("/orders", h.listOrders)
	r.Get("/orders/{id}", h.getOrder)
	r.Get("/orders/{id}/status", h.getStatus)
	r.Put("/orders/{id}/status", h.setStatus)
	r.Get("/products", h.listProducts)
	r.Post("/products/{id}/restock", h.restock)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr: semua error domain keluar sebagai body terstruktur, tidak ada
// yang bocor sebagai failure mentah.
func writeErr(w http.ResponseWriter, err error) {
	var insufficient *shop.InsufficientStockError
	var notFound *shop.ProductNotFoundError
	var invalid *shop.InvalidTransitionError
	var aborted *shop.TxAbortedError

	switch {
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient_stock",
			"product_id": insufficient.ProductID,
			"requested":  insufficient.Requested,
			"available":  insufficient.Available,
		})
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": "product_not_found", "product_id": notFound.ProductID,
		})
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": "invalid_transition", "from": invalid.From, "to": invalid.To,
		})
	case errors.Is(err, shop.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "order_not_found"})
	case errors.Is(err, shop.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not_authenticated"})
	case errors.Is(err, shop.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty_cart"})
	case errors.Is(err, shop.ErrPaymentProofRequired):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payment_proof_required"})
	case errors.As(err, &aborted):
		// "order tidak jadi dibuat" — caller jangan berasumsi partial success
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "transaction_aborted"})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
}

type CheckoutItem struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}

type CheckoutReq struct {
	UserRef       string         `json:"user_ref"`
	Items         []CheckoutItem `json:"items"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone"`
	PaymentMethod string         `json:"payment_method"`
	PaymentProof  string         `json:"payment_proof,omitempty"`
}

type CheckoutResp struct {
	OrderID    string `json:"order_id"`
	TotalCents int    `json:"total_cents"`
}

// doCheckout: cart dipegang client; request bawa snapshot line (harga
// dicapture saat add-to-cart). Duplikat product_id di-merge oleh cart.
func (h *ShopHandler) doCheckout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	cart := shop.NewCart()
	for _, it := range req.Items {
		if it.Qty <= 0 || it.ProductID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid line for product %q", it.ProductID)})
			return
		}
		cart.Add(shop.Product{ID: it.ProductID, Name: it.Name, PriceCents: it.PriceCents}, it.Qty)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Checkout.Checkout(ctx, checkout.Input{
		UserRef:         req.UserRef,
		Cart:            cart,
		Address:         req.Address,
		Phone:           req.Phone,
		PaymentMethod:   shop.PaymentMethod(req.PaymentMethod),
		PaymentProofRef: req.PaymentProof,
		TraceID:         r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CheckoutResp{OrderID: res.OrderID, TotalCents: res.TotalCents})
}

// listOrders: ?user= filter opsional; terbaru dulu (history customer &
// view admin pakai endpoint yang sama).
func (h *ShopHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	out, err := h.Lifecycle.History(ctx, r.URL.Query().Get("user"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if out == nil {
		out = []shop.Order{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ShopHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Lifecycle.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// getStatus: polling customer. Cache Redis dulu, fallback DB.
func (h *ShopHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeJSON(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	o, err := h.Lifecycle.Get(ctx, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	body := map[string]any{"status": o.Status}
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, fmt.Sprintf(`{"status":%q}`, o.Status), redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, body)
}

type SetStatusReq struct {
	Status string `json:"status"`
}

func (h *ShopHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing status"})
		return
	}
	st, err := shop.ParseStatus(req.Status)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ch, err := h.Lifecycle.SetStatus(ctx, chi.URLParam(r, "id"), st)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"order_id": ch.OrderID,
		"status":   st,
		"changed":  ch.Changed, // false = retry/no-op idempoten
	})
}

func (h *ShopHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	ps, err := h.Catalog.ListProducts(ctx, r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if ps == nil {
		ps = []shop.Product{}
	}
	writeJSON(w, http.StatusOK, ps)
}

type RestockReq struct {
	Qty int `json:"qty"`
}

// restock: koreksi stok manual oleh admin, satu-satunya jalur increment.
func (h *ShopHandler) restock(w http.ResponseWriter, r *http.Request) {
	var req RestockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Qty <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "qty must be > 0"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	productID := chi.URLParam(r, "id")
	if err := h.Catalog.Restock(ctx, productID, req.Qty); err != nil {
		writeErr(w, err)
		return
	}
	p, err := h.Catalog.GetProduct(ctx, productID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
