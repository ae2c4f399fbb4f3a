package usecase

import (
	"context"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type productUsecase struct {
	products domain.ProductRepository
}

func NewProductUsecase(products domain.ProductRepository) domain.ProductUsecase {
	return &productUsecase{products: products}
}

func (u *productUsecase) List(ctx context.Context, category string, page, pageSize int) ([]domain.Product, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.products.Fetch(ctx, category, pageSize, (page-1)*pageSize)
}

func (u *productUsecase) Get(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := u.products.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("product not found")
	}
	return p, nil
}

func (u *productUsecase) Create(ctx context.Context, p *domain.Product) error {
	if p.Price < 0 {
		return apperror.BadRequest("price cannot be negative")
	}
	if p.Stock < 0 {
		return apperror.BadRequest("stock cannot be negative")
	}
	if p.Status == "" {
		p.Status = domain.StatusActive
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return u.products.Create(ctx, p)
}

func (u *productUsecase) Update(ctx context.Context, p *domain.Product) error {
	if p.Price < 0 {
		return apperror.BadRequest("price cannot be negative")
	}
	existing, err := u.products.GetByID(ctx, p.ID)
	if err != nil {
		return apperror.NotFound("product not found")
	}
	// Stock moves through AdjustStock only, so concurrent orders are never
	// overwritten by a stale edit form.
	p.Stock = existing.Stock
	p.UpdatedAt = time.Now()
	return u.products.Update(ctx, p)
}

func (u *productUsecase) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	if delta == 0 {
		p, err := u.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		return p.Stock, nil
	}
	stock, err := u.products.AdjustStock(ctx, id, delta)
	if err != nil {
		return 0, err
	}
	return stock, nil
}

func (u *productUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.products.GetByID(ctx, id); err != nil {
		return apperror.NotFound("product not found")
	}
	return u.products.Delete(ctx, id)
}
