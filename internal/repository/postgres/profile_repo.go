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

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type profileRepo struct {
	db *pgxpool.Pool
}

func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, name, email, role, coalesce(avatar_url, ''), coalesce(phone, ''), coalesce(address, ''), status, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Role, &p.AvatarURL,
		&p.Phone, &p.Address, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (id, name, email, role, phone, address, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, nullif($5, ''), nullif($6, ''), $7, $8, $9)`
	_, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Email, p.Role, p.Phone, p.Address, p.Status, p.CreatedAt, p.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRow(ctx, query, id))
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.db.QueryRow(ctx, query, email))
}

func (r *profileRepo) Fetch(ctx context.Context, filter domain.ProfileFilter, limit, offset int) ([]domain.Profile, int64, error) {
	var (
		conds []string
		args  []any
	)
	if filter.Role != "" {
		args = append(args, filter.Role)
		conds = append(conds, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, filter.Email)
		conds = append(conds, fmt.Sprintf("email = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM profiles%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		profileColumns, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

func (r *profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET name = $2, phone = nullif($3, ''), address = nullif($4, ''), updated_at = $5 WHERE id = $1`
	_, err := r.db.Exec(ctx, query, p.ID, p.Name, p.Phone, p.Address, p.UpdatedAt)
	return err
}

func (r *profileRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	query := `UPDATE profiles SET status = $2, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (r *profileRepo) SetAvatar(ctx context.Context, id string, png []byte) error {
	query := `UPDATE profiles SET avatar = $2, avatar_url = $3, updated_at = now() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, png, fmt.Sprintf("/v1/users/%s/avatar", id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("user not found")
	}
	return nil
}

func (r *profileRepo) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	query := `SELECT avatar FROM profiles WHERE id = $1 AND avatar IS NOT NULL`
	var data []byte
	if err := r.db.QueryRow(ctx, query, id).Scan(&data); err != nil {
		return nil, err
	}
	return data, nil
}

// ProfileStoreAdapter exposes the repository under the narrower interface the
// session manager consumes.
type ProfileStoreAdapter struct {
	Repo domain.ProfileRepository
}

func (a ProfileStoreAdapter) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	return a.Repo.GetByID(ctx, id)
}

func (a ProfileStoreAdapter) InsertProfile(ctx context.Context, p *domain.Profile) error {
	return a.Repo.Create(ctx, p)
}

func (a ProfileStoreAdapter) QueryProfiles(ctx context.Context, filter domain.ProfileFilter) ([]domain.Profile, error) {
	profiles, _, err := a.Repo.Fetch(ctx, filter, 50, 0)
	return profiles, err
}
