package domain

import (
	"context"
	"time"
)

// Store is a retail point belonging to a dealer.
type Store struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Address     string     `json:"address"`
	DealerID    string     `json:"dealer_id"`
	DealerName  string     `json:"dealer_name,omitempty"` // joined from profiles
	Status      Status     `json:"status"`
	OrdersCount int        `json:"orders_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type StoreRepository interface {
	Create(ctx context.Context, s *Store) error
	GetByID(ctx context.Context, id int64) (*Store, error)
	Fetch(ctx context.Context, dealerID string, limit, offset int) ([]Store, int64, error)
	Update(ctx context.Context, s *Store) error
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	FetchDeleted(ctx context.Context) ([]Store, error)
	Purge(ctx context.Context, id int64) error
}

type StoreUsecase interface {
	List(ctx context.Context, dealerID string, page, pageSize int) ([]Store, int64, error)
	Get(ctx context.Context, id int64) (*Store, error)
	Create(ctx context.Context, s *Store) error
	Update(ctx context.Context, s *Store) error
	Delete(ctx context.Context, id int64) error
}
