package postgres

import (
	"context"
	"database/sql"

	"github.com/craftline/backoffice/internal/domain/product"
)

// ProductRepository implements admin.ProductRepository for catalog management.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, price_cents, stock, image_path FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.Stock, &p.ImagePath); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (name, price_cents, stock, image_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		p.Name, p.PriceCents, p.Stock, p.ImagePath).Scan(&id)
	return id, err
}

// Delete removes cart and order-item references first so the product row can
// go without foreign key errors.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE product_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE product_id = $1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return tx.Commit()
}

func (r *ProductRepository) AdjustStock(ctx context.Context, id int64, delta int) error {
	var (
		res sql.Result
		err error
	)
	if delta >= 0 {
		res, err = r.db.ExecContext(ctx,
			`UPDATE products SET stock = stock + $2 WHERE id = $1`, id, delta)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE products SET stock = GREATEST(stock - $2, 0) WHERE id = $1`, id, -delta)
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return product.ErrNotFound
	}
	return nil
}
