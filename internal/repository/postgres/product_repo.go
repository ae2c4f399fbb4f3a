package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type productRepo struct {
	db *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) domain.ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, name, sku, category, price, stock, status, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Category, &p.Price, &p.Stock,
		&p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) Create(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, sku, category, price, stock, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	err := r.db.QueryRow(ctx, query,
		p.Name, p.SKU, p.Category, p.Price, p.Stock, p.Status, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("Product with this SKU already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProduct(r.db.QueryRow(ctx, query, id))
}

func (r *productRepo) Fetch(ctx context.Context, category string, limit, offset int) ([]domain.Product, int64, error) {
	where := ""
	var args []any
	if category != "" {
		args = append(args, category)
		where = " WHERE category = $1"
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY name LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, *p)
	}
	return products, total, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $2, sku = $3, category = $4, price = $5, status = $6, updated_at = $7
              WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, p.ID, p.Name, p.SKU, p.Category, p.Price, p.Status, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("product not found")
	}
	return nil
}

// AdjustStock relies on the stock >= 0 check constraint: a decrement that
// would go negative fails atomically instead of racing a read.
func (r *productRepo) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	query := `UPDATE products SET stock = stock + $2, updated_at = now() WHERE id = $1 RETURNING stock`
	var stock int
	err := r.db.QueryRow(ctx, query, id, delta).Scan(&stock)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
			return 0, apperror.Conflict("insufficient stock")
		}
		return 0, err
	}
	return stock, nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("product not found")
	}
	return nil
}
