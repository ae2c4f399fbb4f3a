package usecase

import (
	"context"
	"fmt"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type orderUsecase struct {
	orders   domain.OrderRepository
	stores   domain.StoreRepository
	products domain.ProductRepository
}

func NewOrderUsecase(orders domain.OrderRepository, stores domain.StoreRepository, products domain.ProductRepository) domain.OrderUsecase {
	return &orderUsecase{orders: orders, stores: stores, products: products}
}

func (u *orderUsecase) List(ctx context.Context, filter domain.OrderFilter, page, pageSize int) ([]domain.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return u.orders.Fetch(ctx, filter, pageSize, (page-1)*pageSize)
}

func (u *orderUsecase) Get(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("order not found")
	}
	items, err := u.orders.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

// Create prices every line from the product catalogue at order time and
// hands the assembled order to the repository, which decrements stock and
// inserts everything in one transaction.
func (u *orderUsecase) Create(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	if len(items) == 0 {
		return apperror.BadRequest("order has no items")
	}

	store, err := u.stores.GetByID(ctx, o.StoreID)
	if err != nil {
		return apperror.BadRequest("store does not exist")
	}
	if store.Status == domain.StatusInactive {
		return apperror.BadRequest("store is inactive")
	}

	var total float64
	for i := range items {
		it := &items[i]
		if it.Quantity <= 0 {
			return apperror.BadRequest(fmt.Sprintf("invalid quantity for product %d", it.ProductID))
		}
		p, err := u.products.GetByID(ctx, it.ProductID)
		if err != nil {
			return apperror.BadRequest(fmt.Sprintf("product %d does not exist", it.ProductID))
		}
		it.Price = p.Price
		it.ProductName = p.Name
		total += p.Price * float64(it.Quantity)
	}

	now := time.Now()
	o.Status = domain.OrderPending
	o.Total = total
	o.ItemsCount = len(items)
	o.CreatedAt = now
	o.UpdatedAt = now

	if err := u.orders.CreateWithItems(ctx, o, items); err != nil {
		return err
	}
	o.Reference = domain.OrderReference(o.ID)
	o.Items = items
	return nil
}

func (u *orderUsecase) ChangeStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	o, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("order not found")
	}
	if !o.Status.CanTransitionTo(status) {
		return apperror.Conflict(fmt.Sprintf("cannot move order from %s to %s", o.Status, status))
	}
	if err := u.orders.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	// Cancelling before shipment puts the goods back on the shelf.
	if status == domain.OrderCancelled {
		items, err := u.orders.GetItems(ctx, id)
		if err != nil {
			return err
		}
		for _, it := range items {
			if _, err := u.products.AdjustStock(ctx, it.ProductID, it.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *orderUsecase) Delete(ctx context.Context, id int64) error {
	if _, err := u.orders.GetByID(ctx, id); err != nil {
		return apperror.NotFound("order not found")
	}
	return u.orders.SoftDelete(ctx, id)
}
