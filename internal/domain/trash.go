package domain

import (
	"context"
	"time"
)

// TrashEntity names the record kinds that support soft delete.
type TrashEntity string

const (
	TrashOrders  TrashEntity = "orders"
	TrashStores  TrashEntity = "stores"
	TrashDealers TrashEntity = "dealers"
)

func (e TrashEntity) Valid() bool {
	switch e {
	case TrashOrders, TrashStores, TrashDealers:
		return true
	}
	return false
}

// TrashEntry is one soft-deleted record, normalized for the trash screen.
type TrashEntry struct {
	Entity    TrashEntity `json:"entity"`
	ID        string      `json:"id"`
	Label     string      `json:"label"`
	DeletedAt time.Time   `json:"deleted_at"`
}

type TrashUsecase interface {
	List(ctx context.Context) ([]TrashEntry, error)
	Restore(ctx context.Context, entity TrashEntity, id string) error
	Purge(ctx context.Context, entity TrashEntity, id string) error
}
