package domain

import (
	"context"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// CanTransitionTo enforces the order lifecycle: pending -> processing ->
// shipped -> delivered, with cancellation allowed until shipment.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderPending:
		return next == OrderProcessing || next == OrderCancelled
	case OrderProcessing:
		return next == OrderShipped || next == OrderCancelled
	case OrderShipped:
		return next == OrderDelivered
	case OrderDelivered, OrderCancelled:
		return false
	}
	return false
}

type Order struct {
	ID           int64       `json:"id"`
	Reference    string      `json:"reference"`
	StoreID      int64       `json:"store_id"`
	StoreName    string      `json:"store_name,omitempty"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name,omitempty"`
	Status       OrderStatus `json:"status"`
	Total        float64     `json:"total"`
	ItemsCount   int         `json:"items_count"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
}

type OrderItem struct {
	ID          int64   `json:"id"`
	OrderID     int64   `json:"order_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderReference formats the human-facing order number.
func OrderReference(id int64) string {
	return fmt.Sprintf("ORD-%d", id)
}

type OrderFilter struct {
	StoreID    int64
	CustomerID string
	Status     OrderStatus
}

type OrderRepository interface {
	// CreateWithItems inserts the order and its items in one transaction and
	// decrements product stock for every line.
	CreateWithItems(ctx context.Context, o *Order, items []OrderItem) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	Fetch(ctx context.Context, filter OrderFilter, limit, offset int) ([]Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status OrderStatus) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	FetchDeleted(ctx context.Context) ([]Order, error)
	Purge(ctx context.Context, id int64) error
}

type OrderUsecase interface {
	List(ctx context.Context, filter OrderFilter, page, pageSize int) ([]Order, int64, error)
	Get(ctx context.Context, id int64) (*Order, error)
	Create(ctx context.Context, o *Order, items []OrderItem) error
	ChangeStatus(ctx context.Context, id int64, status OrderStatus) error
	Delete(ctx context.Context, id int64) error
}
