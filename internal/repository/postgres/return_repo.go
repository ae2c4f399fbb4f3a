package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type returnRepo struct {
	db *pgxpool.Pool
}

func NewReturnRepository(db *pgxpool.Pool) domain.ReturnRepository {
	return &returnRepo{db: db}
}

const returnSelect = `
	SELECT r.id, r.order_id, r.customer_id, p.name, r.reason, r.item_ids,
	       r.status, r.created_at, r.updated_at
	FROM returns r
	JOIN profiles p ON p.id = r.customer_id`

func scanReturn(row interface{ Scan(...any) error }) (*domain.Return, error) {
	var (
		ret domain.Return
		ids pq.Int64Array
	)
	err := row.Scan(
		&ret.ID, &ret.OrderID, &ret.CustomerID, &ret.CustomerName,
		&ret.Reason, &ids, &ret.Status, &ret.CreatedAt, &ret.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ret.ItemIDs = []int64(ids)
	ret.ItemsCount = len(ret.ItemIDs)
	ret.OrderReference = domain.OrderReference(ret.OrderID)
	return &ret, nil
}

func (r *returnRepo) Create(ctx context.Context, ret *domain.Return) error {
	query := `INSERT INTO returns (order_id, customer_id, reason, item_ids, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRow(ctx, query,
		ret.OrderID, ret.CustomerID, ret.Reason, pq.Int64Array(ret.ItemIDs),
		ret.Status, ret.CreatedAt, ret.UpdatedAt,
	).Scan(&ret.ID)
}

func (r *returnRepo) GetByID(ctx context.Context, id int64) (*domain.Return, error) {
	query := returnSelect + ` WHERE r.id = $1`
	return scanReturn(r.db.QueryRow(ctx, query, id))
}

func (r *returnRepo) Fetch(ctx context.Context, customerID string, limit, offset int) ([]domain.Return, int64, error) {
	where := ""
	var args []any
	if customerID != "" {
		args = append(args, customerID)
		where = " WHERE r.customer_id = $1"
	}

	var total int64
	countQuery := `SELECT count(*) FROM returns r` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	var query string
	if where == "" {
		query = returnSelect + ` ORDER BY r.created_at DESC LIMIT $1 OFFSET $2`
	} else {
		query = returnSelect + where + ` ORDER BY r.created_at DESC LIMIT $2 OFFSET $3`
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var returns []domain.Return
	for rows.Next() {
		ret, err := scanReturn(rows)
		if err != nil {
			return nil, 0, err
		}
		returns = append(returns, *ret)
	}
	return returns, total, rows.Err()
}

func (r *returnRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReturnStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE returns SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("return not found")
	}
	return nil
}
