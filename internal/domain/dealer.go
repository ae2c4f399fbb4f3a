package domain

import (
	"context"
	"time"
)

// Dealer extends a profile with distribution-network fields. The row shares
// its primary key with the profiles table; Name and Email are joined in at
// read time.
type Dealer struct {
	ID          string     `json:"id"` // = Profile.ID
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Region      string     `json:"region"`
	Phone       string     `json:"phone"`
	Status      Status     `json:"status"`
	StoresCount int        `json:"stores_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

type DealerRepository interface {
	Create(ctx context.Context, d *Dealer) error
	GetByID(ctx context.Context, id string) (*Dealer, error)
	Fetch(ctx context.Context, limit, offset int) ([]Dealer, int64, error)
	Update(ctx context.Context, d *Dealer) error
	SoftDelete(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	FetchDeleted(ctx context.Context) ([]Dealer, error)
	Purge(ctx context.Context, id string) error
}

// DealerRegistration is the admin-side onboarding payload: it creates both
// the Supabase identity and the dealer row.
type DealerRegistration struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Region   string `json:"region" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

type DealerUsecase interface {
	List(ctx context.Context, page, pageSize int) ([]Dealer, int64, error)
	Get(ctx context.Context, id string) (*Dealer, error)
	Register(ctx context.Context, reg DealerRegistration) (*Dealer, error)
	Update(ctx context.Context, d *Dealer) error
	Delete(ctx context.Context, id string) error
}
