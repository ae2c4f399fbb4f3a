package usecase

import (
	"context"
	"sort"
	"strconv"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type trashUsecase struct {
	orders  domain.OrderRepository
	stores  domain.StoreRepository
	dealers domain.DealerRepository
}

func NewTrashUsecase(orders domain.OrderRepository, stores domain.StoreRepository, dealers domain.DealerRepository) domain.TrashUsecase {
	return &trashUsecase{orders: orders, stores: stores, dealers: dealers}
}

// List merges soft-deleted records of every entity into one feed, newest
// deletion first.
func (u *trashUsecase) List(ctx context.Context) ([]domain.TrashEntry, error) {
	var entries []domain.TrashEntry

	orders, err := u.orders.FetchDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		entries = append(entries, domain.TrashEntry{
			Entity:    domain.TrashOrders,
			ID:        strconv.FormatInt(o.ID, 10),
			Label:     o.Reference,
			DeletedAt: *o.DeletedAt,
		})
	}

	stores, err := u.stores.FetchDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, s := range stores {
		entries = append(entries, domain.TrashEntry{
			Entity:    domain.TrashStores,
			ID:        strconv.FormatInt(s.ID, 10),
			Label:     s.Name,
			DeletedAt: *s.DeletedAt,
		})
	}

	dealers, err := u.dealers.FetchDeleted(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range dealers {
		entries = append(entries, domain.TrashEntry{
			Entity:    domain.TrashDealers,
			ID:        d.ID,
			Label:     d.Name,
			DeletedAt: *d.DeletedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DeletedAt.After(entries[j].DeletedAt)
	})
	return entries, nil
}

func (u *trashUsecase) Restore(ctx context.Context, entity domain.TrashEntity, id string) error {
	switch entity {
	case domain.TrashOrders:
		orderID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return apperror.BadRequest("invalid order id")
		}
		return u.orders.Restore(ctx, orderID)
	case domain.TrashStores:
		storeID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return apperror.BadRequest("invalid store id")
		}
		return u.stores.Restore(ctx, storeID)
	case domain.TrashDealers:
		return u.dealers.Restore(ctx, id)
	}
	return apperror.BadRequest("unknown trash entity")
}

func (u *trashUsecase) Purge(ctx context.Context, entity domain.TrashEntity, id string) error {
	switch entity {
	case domain.TrashOrders:
		orderID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return apperror.BadRequest("invalid order id")
		}
		return u.orders.Purge(ctx, orderID)
	case domain.TrashStores:
		storeID, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return apperror.BadRequest("invalid store id")
		}
		return u.stores.Purge(ctx, storeID)
	case domain.TrashDealers:
		return u.dealers.Purge(ctx, id)
	}
	return apperror.BadRequest("unknown trash entity")
}
