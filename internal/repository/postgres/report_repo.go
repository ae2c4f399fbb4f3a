package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"cddiller-backend/internal/domain"
)

type reportRepo struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) domain.ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) Summary(ctx context.Context) (*domain.SummaryReport, error) {
	var s domain.SummaryReport

	query := `SELECT
		(SELECT count(*) FROM profiles),
		(SELECT count(*) FROM profiles WHERE role = 'superadmin'),
		(SELECT count(*) FROM profiles WHERE role = 'admin'),
		(SELECT count(*) FROM profiles WHERE role = 'warehouse'),
		(SELECT count(*) FROM profiles WHERE role = 'dealer'),
		(SELECT count(*) FROM profiles WHERE role = 'agent'),
		(SELECT count(*) FROM profiles WHERE role = 'store'),
		(SELECT count(*) FROM profiles WHERE status = 'active'),
		(SELECT count(*) FROM profiles WHERE status = 'inactive'),
		(SELECT count(*) FROM profiles WHERE status = 'pending'),
		(SELECT count(*) FROM dealers WHERE deleted_at IS NULL),
		(SELECT count(*) FROM stores WHERE deleted_at IS NULL),
		(SELECT count(*) FROM orders WHERE deleted_at IS NULL),
		(SELECT coalesce(sum(total), 0) FROM orders WHERE deleted_at IS NULL AND status <> 'cancelled'),
		(SELECT count(*) FROM returns WHERE status = 'pending'),
		(SELECT count(*) FROM invoices WHERE status = 'pending')`

	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalUsers,
		&s.UsersByRole.Superadmin, &s.UsersByRole.Admin, &s.UsersByRole.Warehouse,
		&s.UsersByRole.Dealer, &s.UsersByRole.Agent, &s.UsersByRole.Store,
		&s.UsersByStatus.Active, &s.UsersByStatus.Inactive, &s.UsersByStatus.Pending,
		&s.TotalDealers, &s.TotalStores, &s.TotalOrders, &s.TotalRevenue,
		&s.OpenReturns, &s.UnpaidInvoices,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// MonthlySales returns all twelve months; months with no orders come back
// as zero so the chart never has holes.
func (r *reportRepo) MonthlySales(ctx context.Context, year int) ([]domain.MonthlySales, error) {
	query := `SELECT extract(month FROM created_at)::int AS m, coalesce(sum(total), 0)
              FROM orders
              WHERE deleted_at IS NULL AND status <> 'cancelled'
                AND extract(year FROM created_at) = $1
              GROUP BY m`
	rows, err := r.db.Query(ctx, query, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byMonth := make(map[int]float64, 12)
	for rows.Next() {
		var (
			m     int
			sales float64
		)
		if err := rows.Scan(&m, &sales); err != nil {
			return nil, err
		}
		byMonth[m] = sales
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]domain.MonthlySales, 0, 12)
	for m := 1; m <= 12; m++ {
		out = append(out, domain.MonthlySales{
			Month: time.Month(m).String()[:3],
			Sales: byMonth[m],
		})
	}
	return out, nil
}

func (r *reportRepo) TopProducts(ctx context.Context, limit int) ([]domain.TopProduct, error) {
	query := `SELECT pr.name, coalesce(sum(oi.price * oi.quantity), 0) AS sales
              FROM order_items oi
              JOIN products pr ON pr.id = oi.product_id
              JOIN orders o ON o.id = oi.order_id
              WHERE o.deleted_at IS NULL AND o.status <> 'cancelled'
              GROUP BY pr.name
              ORDER BY sales DESC
              LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []domain.TopProduct
	for rows.Next() {
		var p domain.TopProduct
		if err := rows.Scan(&p.Name, &p.Sales); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *reportRepo) TopDealers(ctx context.Context, limit int) ([]domain.TopDealer, error) {
	query := `SELECT p.name, coalesce(sum(o.total), 0) AS sales
              FROM orders o
              JOIN stores s ON s.id = o.store_id
              JOIN profiles p ON p.id = s.dealer_id
              WHERE o.deleted_at IS NULL AND o.status <> 'cancelled'
              GROUP BY p.name
              ORDER BY sales DESC
              LIMIT $1`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dealers []domain.TopDealer
	var grand float64
	for rows.Next() {
		var d domain.TopDealer
		if err := rows.Scan(&d.Name, &d.Sales); err != nil {
			return nil, err
		}
		grand += d.Sales
		dealers = append(dealers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if grand > 0 {
		for i := range dealers {
			dealers[i].Percentage = dealers[i].Sales / grand * 100
		}
	}
	return dealers, nil
}
