package shop

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

type NewOrder struct {
	UserRef       string
	Lines         []OrderLine
	TotalCents    int
	Address       string
	Phone         string
	PaymentMethod PaymentMethod
	PaymentProof  string
}

// CreateOrderTx: insert order snapshot + guarded decrement per line dalam
// SATU transaksi. Kalau ada line yang kurang stok, semuanya rollback —
// tidak ada order setengah jadi, tidak ada stok yang keburu berkurang.
func (r *Repo) CreateOrderTx(ctx context.Context, in NewOrder) (orderID string, err error) {
	items, err := json.Marshal(in.Lines)
	if err != nil {
		return "", err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID = uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, user_ref, status, total_cents, items, address, phone, payment_method, payment_proof)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, orderID, in.UserRef, string(StatusPaid), in.TotalCents, items, in.Address, in.Phone, string(in.PaymentMethod), in.PaymentProof)
	if err != nil {
		return "", err
	}

	for _, l := range in.Lines {
		if err := decrementStock(ctx, tx, l.ProductID, l.Qty); err != nil {
			return "", err // rollback via defer
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orderID, nil
}

// decrementStock: guarded, read-check-write jadi satu langkah atomik.
// Conditional update + cek affected rows mencegah stok nembus nol saat
// dua checkout rebutan produk yang sama.
func decrementStock(ctx context.Context, tx pgx.Tx, productID string, qty int) error {
	ct, err := tx.Exec(ctx, `
		UPDATE products SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock >= $2
	`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// guard gagal: bedakan produk hilang vs stok kurang
	var available int
	err = tx.QueryRow(ctx, `SELECT stock FROM products WHERE id = $1`, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}
	return &InsufficientStockError{ProductID: productID, Requested: qty, Available: available}
}

type StatusChange struct {
	OrderID string
	UserRef string
	From    Status
	To      Status
	Changed bool // false = idempotent no-op (same-state)
}

// UpdateStatus: lock row order -> validasi tabel transisi -> tulis.
// Same-state sukses sebagai no-op (retry admin tidak boleh jadi error),
// skip/mundur ditolak dengan InvalidTransitionError.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, to Status) (StatusChange, error) {
	ch := StatusChange{OrderID: orderID, To: to}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ch, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from string
	err = tx.QueryRow(ctx, `SELECT status, user_ref FROM orders WHERE id = $1 FOR UPDATE`, orderID).
		Scan(&from, &ch.UserRef)
	if errors.Is(err, pgx.ErrNoRows) {
		return ch, ErrOrderNotFound
	}
	if err != nil {
		return ch, err
	}
	ch.From = Status(from)

	if ch.From == to {
		return ch, nil // no-op, tidak perlu commit
	}
	if !CanTransition(ch.From, to) {
		return ch, &InvalidTransitionError{From: ch.From, To: to}
	}

	if _, err := tx.Exec(ctx, `UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`, orderID, string(to)); err != nil {
		return ch, err
	}
	if err := tx.Commit(ctx); err != nil {
		return ch, err
	}
	ch.Changed = true
	return ch, nil
}

const orderCols = `id, user_ref, status, total_cents, items, address, phone, payment_method, payment_proof, created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var items []byte
	err := row.Scan(&o.ID, &o.UserRef, &o.Status, &o.TotalCents, &items,
		&o.Address, &o.Phone, &o.PaymentMethod, &o.PaymentProof, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(items, &o.Lines); err != nil {
		return o, fmt.Errorf("decode order %s items: %w", o.ID, err)
	}
	return o, nil
}

func (r *Repo) GetOrder(ctx context.Context, orderID string) (Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id = $1`, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return o, ErrOrderNotFound
	}
	return o, err
}

// ListOrders: terbaru dulu. userRef kosong = semua order (view admin).
func (r *Repo) ListOrders(ctx context.Context, userRef string) ([]Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders ORDER BY created_at DESC`
	args := []any{}
	if userRef != "" {
		q = `SELECT ` + orderCols + ` FROM orders WHERE user_ref = $1 ORDER BY created_at DESC`
		args = append(args, userRef)
	}
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
