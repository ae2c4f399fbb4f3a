package usecase

import (
	"context"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type storeUsecase struct {
	stores  domain.StoreRepository
	dealers domain.DealerRepository
}

func NewStoreUsecase(stores domain.StoreRepository, dealers domain.DealerRepository) domain.StoreUsecase {
	return &storeUsecase{stores: stores, dealers: dealers}
}

func (u *storeUsecase) List(ctx context.Context, dealerID string, page, pageSize int) ([]domain.Store, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.stores.Fetch(ctx, dealerID, pageSize, (page-1)*pageSize)
}

func (u *storeUsecase) Get(ctx context.Context, id int64) (*domain.Store, error) {
	s, err := u.stores.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("store not found")
	}
	return s, nil
}

func (u *storeUsecase) Create(ctx context.Context, s *domain.Store) error {
	if _, err := u.dealers.GetByID(ctx, s.DealerID); err != nil {
		return apperror.BadRequest("dealer does not exist")
	}
	if s.Status == "" {
		s.Status = domain.StatusActive
	}
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return u.stores.Create(ctx, s)
}

func (u *storeUsecase) Update(ctx context.Context, s *domain.Store) error {
	existing, err := u.stores.GetByID(ctx, s.ID)
	if err != nil {
		return apperror.NotFound("store not found")
	}
	// Reparenting a store is a migration, not an edit.
	s.DealerID = existing.DealerID
	s.UpdatedAt = time.Now()
	return u.stores.Update(ctx, s)
}

func (u *storeUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.stores.GetByID(ctx, id); err != nil {
		return apperror.NotFound("store not found")
	}
	return u.stores.SoftDelete(ctx, id)
}
