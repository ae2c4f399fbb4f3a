package domain

import (
	"context"
	"time"
)

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "pending"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is issued from a delivered order; the total is copied at issue
// time so later order edits never change a billed amount.
type Invoice struct {
	ID             int64         `json:"id"`
	OrderID        int64         `json:"order_id"`
	OrderReference string        `json:"order_reference,omitempty"`
	CustomerID     string        `json:"customer_id"`
	CustomerName   string        `json:"customer_name,omitempty"`
	Total          float64       `json:"total"`
	DueDate        time.Time     `json:"due_date"`
	Status         InvoiceStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func (i *Invoice) Overdue(now time.Time) bool {
	return i.Status == InvoicePending && now.After(i.DueDate)
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, id int64) (*Invoice, error)
	Fetch(ctx context.Context, customerID string, status InvoiceStatus, limit, offset int) ([]Invoice, int64, error)
	UpdateStatus(ctx context.Context, id int64, status InvoiceStatus) error
}

type InvoiceUsecase interface {
	List(ctx context.Context, customerID string, status InvoiceStatus, page, pageSize int) ([]Invoice, int64, error)
	Get(ctx context.Context, id int64) (*Invoice, error)
	IssueForOrder(ctx context.Context, orderID int64, dueDate time.Time) (*Invoice, error)
	MarkPaid(ctx context.Context, id int64) error
}
