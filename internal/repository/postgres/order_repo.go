package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type orderRepo struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepo{db: db}
}

const orderSelect = `
	SELECT o.id, o.store_id, s.name, o.customer_id, p.name, o.status,
	       o.total, o.items_count, o.created_at, o.updated_at, o.deleted_at
	FROM orders o
	JOIN stores s ON s.id = o.store_id
	JOIN profiles p ON p.id = o.customer_id`

func scanOrder(row interface{ Scan(...any) error }) (*domain.Order, error) {
	var o domain.Order
	err := row.Scan(
		&o.ID, &o.StoreID, &o.StoreName, &o.CustomerID, &o.CustomerName,
		&o.Status, &o.Total, &o.ItemsCount, &o.CreatedAt, &o.UpdatedAt, &o.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Reference = domain.OrderReference(o.ID)
	return &o, nil
}

// CreateWithItems inserts the order and its lines and decrements stock, all
// in one transaction: either the whole order lands or nothing does.
func (r *orderRepo) CreateWithItems(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (store_id, customer_id, status, total, items_count, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		o.StoreID, o.CustomerID, o.Status, o.Total, o.ItemsCount, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if err != nil {
		return err
	}

	for i := range items {
		it := &items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity, price)
             VALUES ($1, $2, $3, $4) RETURNING id`,
			it.OrderID, it.ProductID, it.Quantity, it.Price,
		).Scan(&it.ID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			it.ProductID, it.Quantity)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
				return apperror.Conflict(fmt.Sprintf("insufficient stock for product %d", it.ProductID))
			}
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := orderSelect + ` WHERE o.id = $1 AND o.deleted_at IS NULL`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

func (r *orderRepo) GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	query := `SELECT oi.id, oi.order_id, oi.product_id, pr.name, oi.quantity, oi.price
              FROM order_items oi
              JOIN products pr ON pr.id = oi.product_id
              WHERE oi.order_id = $1
              ORDER BY oi.id`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *orderRepo) Fetch(ctx context.Context, filter domain.OrderFilter, limit, offset int) ([]domain.Order, int64, error) {
	conds := []string{"o.deleted_at IS NULL"}
	var args []any
	if filter.StoreID != 0 {
		args = append(args, filter.StoreID)
		conds = append(conds, fmt.Sprintf("o.store_id = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("o.customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("o.status = $%d", len(args)))
	}
	where := " WHERE " + strings.Join(conds, " AND ")

	var total int64
	countQuery := `SELECT count(*) FROM orders o` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("%s%s ORDER BY o.created_at DESC LIMIT $%d OFFSET $%d",
		orderSelect, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	return orders, total, rows.Err()
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("order not found")
	}
	return nil
}

func (r *orderRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("order not found")
	}
	return nil
}

func (r *orderRepo) Restore(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("order not found in trash")
	}
	return nil
}

func (r *orderRepo) FetchDeleted(ctx context.Context) ([]domain.Order, error) {
	query := orderSelect + ` WHERE o.deleted_at IS NOT NULL ORDER BY o.deleted_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *orderRepo) Purge(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("order not found in trash")
	}
	return tx.Commit(ctx)
}
