package usecase

import (
	"context"
	"log/slog"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type dealerUsecase struct {
	dealers  domain.DealerRepository
	profiles domain.ProfileRepository
	creds    domain.CredentialStore
	log      *slog.Logger
}

func NewDealerUsecase(dealers domain.DealerRepository, profiles domain.ProfileRepository, creds domain.CredentialStore, log *slog.Logger) domain.DealerUsecase {
	return &dealerUsecase{dealers: dealers, profiles: profiles, creds: creds, log: log}
}

func (u *dealerUsecase) List(ctx context.Context, page, pageSize int) ([]domain.Dealer, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.dealers.Fetch(ctx, pageSize, (page-1)*pageSize)
}

func (u *dealerUsecase) Get(ctx context.Context, id string) (*domain.Dealer, error) {
	d, err := u.dealers.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("dealer not found")
	}
	return d, nil
}

// Register onboards a dealer end to end: Supabase identity, profile row,
// dealer row. The profile insert is best-effort (the backend trigger can
// cover it), the dealer insert is not.
func (u *dealerUsecase) Register(ctx context.Context, reg domain.DealerRegistration) (*domain.Dealer, error) {
	identity, err := u.creds.SignUp(ctx, reg.Email, reg.Password, domain.SignupMetadata{
		Name: reg.Name,
		Role: domain.RoleDealer,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = u.profiles.Create(ctx, &domain.Profile{
		ID:        identity.ID,
		Name:      reg.Name,
		Email:     reg.Email,
		Role:      domain.RoleDealer,
		Phone:     reg.Phone,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		u.log.Warn("dealer profile insert failed after signup; relying on backend trigger",
			"user_id", identity.ID, "error", err)
	}

	d := &domain.Dealer{
		ID:        identity.ID,
		Name:      reg.Name,
		Email:     reg.Email,
		Region:    reg.Region,
		Phone:     reg.Phone,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.dealers.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (u *dealerUsecase) Update(ctx context.Context, d *domain.Dealer) error {
	if _, err := u.dealers.GetByID(ctx, d.ID); err != nil {
		return apperror.NotFound("dealer not found")
	}
	d.UpdatedAt = time.Now()
	return u.dealers.Update(ctx, d)
}

func (u *dealerUsecase) Delete(ctx context.Context, id string) error {
	if _, err := u.dealers.GetByID(ctx, id); err != nil {
		return apperror.NotFound("dealer not found")
	}
	return u.dealers.SoftDelete(ctx, id)
}
