package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type dealerRepo struct {
	db *pgxpool.Pool
}

func NewDealerRepository(db *pgxpool.Pool) domain.DealerRepository {
	return &dealerRepo{db: db}
}

// dealerSelect joins profiles for name/email; stores_count is live, not a
// maintained counter.
const dealerSelect = `
	SELECT d.id, p.name, p.email, d.region, coalesce(d.phone, ''), d.status,
	       (SELECT count(*) FROM stores s WHERE s.dealer_id = d.id AND s.deleted_at IS NULL),
	       d.created_at, d.updated_at, d.deleted_at
	FROM dealers d
	JOIN profiles p ON p.id = d.id`

func scanDealer(row interface{ Scan(...any) error }) (*domain.Dealer, error) {
	var d domain.Dealer
	err := row.Scan(
		&d.ID, &d.Name, &d.Email, &d.Region, &d.Phone, &d.Status,
		&d.StoresCount, &d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dealerRepo) Create(ctx context.Context, d *domain.Dealer) error {
	query := `INSERT INTO dealers (id, region, phone, status, created_at, updated_at)
              VALUES ($1, $2, nullif($3, ''), $4, $5, $6)`
	_, err := r.db.Exec(ctx, query, d.ID, d.Region, d.Phone, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("Dealer already registered")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *dealerRepo) GetByID(ctx context.Context, id string) (*domain.Dealer, error) {
	query := dealerSelect + ` WHERE d.id = $1 AND d.deleted_at IS NULL`
	return scanDealer(r.db.QueryRow(ctx, query, id))
}

func (r *dealerRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Dealer, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM dealers WHERE deleted_at IS NULL`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := dealerSelect + ` WHERE d.deleted_at IS NULL ORDER BY d.created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var dealers []domain.Dealer
	for rows.Next() {
		d, err := scanDealer(rows)
		if err != nil {
			return nil, 0, err
		}
		dealers = append(dealers, *d)
	}
	return dealers, total, rows.Err()
}

func (r *dealerRepo) Update(ctx context.Context, d *domain.Dealer) error {
	query := `UPDATE dealers SET region = $2, phone = nullif($3, ''), status = $4, updated_at = $5
              WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.db.Exec(ctx, query, d.ID, d.Region, d.Phone, d.Status, d.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("dealer not found")
	}
	return nil
}

func (r *dealerRepo) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE dealers SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("dealer not found")
	}
	return nil
}

func (r *dealerRepo) Restore(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE dealers SET deleted_at = NULL WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("dealer not found in trash")
	}
	return nil
}

func (r *dealerRepo) FetchDeleted(ctx context.Context) ([]domain.Dealer, error) {
	query := dealerSelect + ` WHERE d.deleted_at IS NOT NULL ORDER BY d.deleted_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dealers []domain.Dealer
	for rows.Next() {
		d, err := scanDealer(rows)
		if err != nil {
			return nil, err
		}
		dealers = append(dealers, *d)
	}
	return dealers, rows.Err()
}

func (r *dealerRepo) Purge(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM dealers WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("dealer not found in trash")
	}
	return nil
}
