package domain

import (
	"context"
	"time"
)

// Profile is the application-level account row, keyed by the Supabase
// identity UUID. The role and status here are authoritative; the JWT role
// claim is never trusted.
type Profile struct {
	ID        string    `json:"id"` // Supabase UUID
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileFilter narrows profile listings.
type ProfileFilter struct {
	Role   Role
	Status Status
	Email  string
}

type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id string) (*Profile, error)
	GetByEmail(ctx context.Context, email string) (*Profile, error)
	Fetch(ctx context.Context, filter ProfileFilter, limit, offset int) ([]Profile, int64, error)
	Update(ctx context.Context, p *Profile) error
	UpdateStatus(ctx context.Context, id string, status Status) error
	SetAvatar(ctx context.Context, id string, png []byte) error
	GetAvatar(ctx context.Context, id string) ([]byte, error)
}

type UserUsecase interface {
	List(ctx context.Context, filter ProfileFilter, page, pageSize int) ([]Profile, int64, error)
	Get(ctx context.Context, id string) (*Profile, error)
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	ChangeStatus(ctx context.Context, id string, status Status) error
	StoreAvatar(ctx context.Context, id string, image []byte) (string, error)
	LoadAvatar(ctx context.Context, id string) ([]byte, error)
}
