package domain

import (
	"context"
	"time"
)

// Product is a warehouse inventory item.
type Product struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	Category  string    `json:"category"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductRepository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	Fetch(ctx context.Context, category string, limit, offset int) ([]Product, int64, error)
	Update(ctx context.Context, p *Product) error
	// AdjustStock applies delta atomically; the update fails if it would
	// drive stock below zero.
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	Delete(ctx context.Context, id int64) error
}

type ProductUsecase interface {
	List(ctx context.Context, category string, page, pageSize int) ([]Product, int64, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
	Delete(ctx context.Context, id int64) error
}
