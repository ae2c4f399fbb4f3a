package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type invoiceRepo struct {
	db *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) domain.InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceSelect = `
	SELECT i.id, i.order_id, i.customer_id, p.name, i.total, i.due_date,
	       i.status, i.created_at, i.updated_at
	FROM invoices i
	JOIN profiles p ON p.id = i.customer_id`

func scanInvoice(row interface{ Scan(...any) error }) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := row.Scan(
		&inv.ID, &inv.OrderID, &inv.CustomerID, &inv.CustomerName,
		&inv.Total, &inv.DueDate, &inv.Status, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.OrderReference = domain.OrderReference(inv.OrderID)
	return &inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (order_id, customer_id, total, due_date, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	return r.db.QueryRow(ctx, query,
		inv.OrderID, inv.CustomerID, inv.Total, inv.DueDate,
		inv.Status, inv.CreatedAt, inv.UpdatedAt,
	).Scan(&inv.ID)
}

func (r *invoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	query := invoiceSelect + ` WHERE i.id = $1`
	return scanInvoice(r.db.QueryRow(ctx, query, id))
}

func (r *invoiceRepo) Fetch(ctx context.Context, customerID string, status domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, int64, error) {
	var (
		conds []string
		args  []any
	)
	if customerID != "" {
		args = append(args, customerID)
		conds = append(conds, fmt.Sprintf("i.customer_id = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("i.status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	countQuery := `SELECT count(*) FROM invoices i` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf("%s%s ORDER BY i.created_at DESC LIMIT $%d OFFSET $%d",
		invoiceSelect, where, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE invoices SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("invoice not found")
	}
	return nil
}
