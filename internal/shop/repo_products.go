package shop

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const productCols = `id, name, price_cents, stock, img, model, category, created_at, updated_at`

func (r *Repo) GetProduct(ctx context.Context, productID string) (Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id = $1`, productID).
		Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.Img, &p.Model3D, &p.Category, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, &ProductNotFoundError{ProductID: productID}
	}
	return p, err
}

// ListProducts: read side buat storefront. q = substring nama,
// category = match persis; dua-duanya opsional.
func (r *Repo) ListProducts(ctx context.Context, q, category string) ([]Product, error) {
	query := `SELECT ` + productCols + ` FROM products`
	args := []any{}
	where := ""
	if q != "" {
		args = append(args, "%"+q+"%")
		where = ` WHERE name ILIKE $1`
	}
	if category != "" {
		args = append(args, category)
		if where == "" {
			where = ` WHERE category = $1`
		} else {
			where += ` AND category = $2`
		}
	}
	rows, err := r.DB.Query(ctx, query+where+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.Img, &p.Model3D, &p.Category, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Restock: increment tanpa guard, HANYA untuk koreksi admin (restock
// manual). Jalur lain tidak boleh menyentuh stock di luar checkout.
func (r *Repo) Restock(ctx context.Context, productID string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET stock = stock + $2, updated_at = now()
		WHERE id = $1
	`, productID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return &ProductNotFoundError{ProductID: productID}
	}
	return nil
}
