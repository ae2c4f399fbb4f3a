package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type storeRepo struct {
	db *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) domain.StoreRepository {
	return &storeRepo{db: db}
}

const storeSelect = `
	SELECT s.id, s.name, s.address, s.dealer_id, p.name, s.status,
	       (SELECT count(*) FROM orders o WHERE o.store_id = s.id AND o.deleted_at IS NULL),
	       s.created_at, s.updated_at, s.deleted_at
	FROM stores s
	JOIN profiles p ON p.id = s.dealer_id`

func scanStore(row interface{ Scan(...any) error }) (*domain.Store, error) {
	var s domain.Store
	err := row.Scan(
		&s.ID, &s.Name, &s.Address, &s.DealerID, &s.DealerName, &s.Status,
		&s.OrdersCount, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *storeRepo) Create(ctx context.Context, s *domain.Store) error {
	query := `INSERT INTO stores (name, address, dealer_id, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	return r.db.QueryRow(ctx, query,
		s.Name, s.Address, s.DealerID, s.Status, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
}

func (r *storeRepo) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	query := storeSelect + ` WHERE s.id = $1 AND s.deleted_at IS NULL`
	return scanStore(r.db.QueryRow(ctx, query, id))
}

func (r *storeRepo) Fetch(ctx context.Context, dealerID string, limit, offset int) ([]domain.Store, int64, error) {
	where := ` WHERE s.deleted_at IS NULL`
	countWhere := ` WHERE deleted_at IS NULL`
	var args []any
	if dealerID != "" {
		args = append(args, dealerID)
		where += fmt.Sprintf(" AND s.dealer_id = $%d", len(args))
		countWhere += fmt.Sprintf(" AND dealer_id = $%d", len(args))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM stores`+countWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("%s%s ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d",
		storeSelect, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, 0, err
		}
		stores = append(stores, *s)
	}
	return stores, total, rows.Err()
}

func (r *storeRepo) Update(ctx context.Context, s *domain.Store) error {
	query := `UPDATE stores SET name = $2, address = $3, status = $4, updated_at = $5
              WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, s.ID, s.Name, s.Address, s.Status, s.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("store not found")
	}
	return nil
}

func (r *storeRepo) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE stores SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("store not found")
	}
	return nil
}

func (r *storeRepo) Restore(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE stores SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("store not found in trash")
	}
	return nil
}

func (r *storeRepo) FetchDeleted(ctx context.Context) ([]domain.Store, error) {
	query := storeSelect + ` WHERE s.deleted_at IS NOT NULL ORDER BY s.deleted_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []domain.Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, *s)
	}
	return stores, rows.Err()
}

func (r *storeRepo) Purge(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM stores WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("store not found in trash")
	}
	return nil
}
