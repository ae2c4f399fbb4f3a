package usecase

import (
	"context"
	"fmt"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type returnUsecase struct {
	returns  domain.ReturnRepository
	orders   domain.OrderRepository
	products domain.ProductRepository
}

func NewReturnUsecase(returns domain.ReturnRepository, orders domain.OrderRepository, products domain.ProductRepository) domain.ReturnUsecase {
	return &returnUsecase{returns: returns, orders: orders, products: products}
}

func (u *returnUsecase) List(ctx context.Context, customerID string, page, pageSize int) ([]domain.Return, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.returns.Fetch(ctx, customerID, pageSize, (page-1)*pageSize)
}

func (u *returnUsecase) Get(ctx context.Context, id int64) (*domain.Return, error) {
	r, err := u.returns.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("return not found")
	}
	return r, nil
}

// Create validates every returned item against the order's own lines; a
// return can only reference items that were actually bought.
func (u *returnUsecase) Create(ctx context.Context, r *domain.Return) error {
	if len(r.ItemIDs) == 0 {
		return apperror.BadRequest("return has no items")
	}

	order, err := u.orders.GetByID(ctx, r.OrderID)
	if err != nil {
		return apperror.BadRequest("order does not exist")
	}
	if order.Status != domain.OrderDelivered {
		return apperror.Conflict("only delivered orders can be returned")
	}

	items, err := u.orders.GetItems(ctx, r.OrderID)
	if err != nil {
		return err
	}
	owned := make(map[int64]bool, len(items))
	for _, it := range items {
		owned[it.ID] = true
	}
	for _, id := range r.ItemIDs {
		if !owned[id] {
			return apperror.BadRequest(fmt.Sprintf("item %d does not belong to order %d", id, r.OrderID))
		}
	}

	now := time.Now()
	r.CustomerID = order.CustomerID
	r.Status = domain.ReturnPending
	r.ItemsCount = len(r.ItemIDs)
	r.CreatedAt = now
	r.UpdatedAt = now
	return u.returns.Create(ctx, r)
}

// Approve restocks every returned item, then marks the return approved.
func (u *returnUsecase) Approve(ctx context.Context, id int64) error {
	r, err := u.returns.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("return not found")
	}
	if r.Status != domain.ReturnPending {
		return apperror.Conflict("return already resolved")
	}

	items, err := u.orders.GetItems(ctx, r.OrderID)
	if err != nil {
		return err
	}
	returned := make(map[int64]bool, len(r.ItemIDs))
	for _, itemID := range r.ItemIDs {
		returned[itemID] = true
	}
	for _, it := range items {
		if !returned[it.ID] {
			continue
		}
		if _, err := u.products.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}

	return u.returns.UpdateStatus(ctx, id, domain.ReturnApproved)
}

func (u *returnUsecase) Reject(ctx context.Context, id int64) error {
	r, err := u.returns.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("return not found")
	}
	if r.Status != domain.ReturnPending {
		return apperror.Conflict("return already resolved")
	}
	return u.returns.UpdateStatus(ctx, id, domain.ReturnRejected)
}
