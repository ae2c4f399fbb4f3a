package domain

import (
	"context"
	"time"
)

type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

// Return records items sent back against an order. ItemIDs reference the
// order_items rows being returned; approving a return restocks them.
type Return struct {
	ID             int64        `json:"id"`
	OrderID        int64        `json:"order_id"`
	OrderReference string       `json:"order_reference,omitempty"`
	CustomerID     string       `json:"customer_id"`
	CustomerName   string       `json:"customer_name,omitempty"`
	Reason         string       `json:"reason"`
	ItemIDs        []int64      `json:"item_ids"`
	ItemsCount     int          `json:"items_count"`
	Status         ReturnStatus `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type ReturnRepository interface {
	Create(ctx context.Context, r *Return) error
	GetByID(ctx context.Context, id int64) (*Return, error)
	Fetch(ctx context.Context, customerID string, limit, offset int) ([]Return, int64, error)
	UpdateStatus(ctx context.Context, id int64, status ReturnStatus) error
}

type ReturnUsecase interface {
	List(ctx context.Context, customerID string, page, pageSize int) ([]Return, int64, error)
	Get(ctx context.Context, id int64) (*Return, error)
	Create(ctx context.Context, r *Return) error
	Approve(ctx context.Context, id int64) error
	Reject(ctx context.Context, id int64) error
}
