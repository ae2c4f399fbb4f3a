package domain

import "context"

// SummaryReport backs the dashboard stat cards.
type SummaryReport struct {
	TotalUsers   int64 `json:"total_users"`
	UsersByRole  struct {
		Superadmin int64 `json:"superadmin"`
		Admin      int64 `json:"admin"`
		Warehouse  int64 `json:"warehouse"`
		Dealer     int64 `json:"dealer"`
		Agent      int64 `json:"agent"`
		Store      int64 `json:"store"`
	} `json:"users_by_role"`
	UsersByStatus struct {
		Active   int64 `json:"active"`
		Inactive int64 `json:"inactive"`
		Pending  int64 `json:"pending"`
	} `json:"users_by_status"`
	TotalDealers  int64   `json:"total_dealers"`
	TotalStores   int64   `json:"total_stores"`
	TotalOrders   int64   `json:"total_orders"`
	TotalRevenue  float64 `json:"total_revenue"`
	OpenReturns   int64   `json:"open_returns"`
	UnpaidInvoices int64  `json:"unpaid_invoices"`
}

// MonthlySales is one point of the 12-month sales chart.
type MonthlySales struct {
	Month string  `json:"month"` // "Jan" ... "Dec"
	Sales float64 `json:"sales"`
}

type TopProduct struct {
	Name  string  `json:"name"`
	Sales float64 `json:"sales"`
}

type TopDealer struct {
	Name       string  `json:"name"`
	Sales      float64 `json:"sales"`
	Percentage float64 `json:"percentage"`
}

type ReportRepository interface {
	Summary(ctx context.Context) (*SummaryReport, error)
	MonthlySales(ctx context.Context, year int) ([]MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	TopDealers(ctx context.Context, limit int) ([]TopDealer, error)
}

type ReportUsecase interface {
	Summary(ctx context.Context) (*SummaryReport, error)
	MonthlySales(ctx context.Context, year int) ([]MonthlySales, error)
	TopProducts(ctx context.Context, limit int) ([]TopProduct, error)
	TopDealers(ctx context.Context, limit int) ([]TopDealer, error)
	// ExportOrders renders the current order book as a spreadsheet.
	// Returns the file bytes and a suggested filename.
	ExportOrders(ctx context.Context, filter OrderFilter) ([]byte, string, error)
}
