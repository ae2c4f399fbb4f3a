package usecase

import (
	"context"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/pkg/apperror"
)

type invoiceUsecase struct {
	invoices domain.InvoiceRepository
	orders   domain.OrderRepository
}

func NewInvoiceUsecase(invoices domain.InvoiceRepository, orders domain.OrderRepository) domain.InvoiceUsecase {
	return &invoiceUsecase{invoices: invoices, orders: orders}
}

func (u *invoiceUsecase) List(ctx context.Context, customerID string, status domain.InvoiceStatus, page, pageSize int) ([]domain.Invoice, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	invoices, total, err := u.invoices.Fetch(ctx, customerID, status, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	// Overdue is a view of pending + past due; the stored status only
	// changes when payment lands.
	now := time.Now()
	for i := range invoices {
		if invoices[i].Overdue(now) {
			invoices[i].Status = domain.InvoiceOverdue
		}
	}
	return invoices, total, nil
}

func (u *invoiceUsecase) Get(ctx context.Context, id int64) (*domain.Invoice, error) {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("invoice not found")
	}
	if inv.Overdue(time.Now()) {
		inv.Status = domain.InvoiceOverdue
	}
	return inv, nil
}

// IssueForOrder bills a delivered order, copying its total so later changes
// to the order never move a billed amount.
func (u *invoiceUsecase) IssueForOrder(ctx context.Context, orderID int64, dueDate time.Time) (*domain.Invoice, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperror.NotFound("order not found")
	}
	if order.Status != domain.OrderDelivered {
		return nil, apperror.Conflict("only delivered orders can be invoiced")
	}
	if dueDate.Before(time.Now()) {
		return nil, apperror.BadRequest("due date is in the past")
	}

	now := time.Now()
	inv := &domain.Invoice{
		OrderID:        order.ID,
		OrderReference: order.Reference,
		CustomerID:     order.CustomerID,
		CustomerName:   order.CustomerName,
		Total:          order.Total,
		DueDate:        dueDate,
		Status:         domain.InvoicePending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := u.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (u *invoiceUsecase) MarkPaid(ctx context.Context, id int64) error {
	inv, err := u.invoices.GetByID(ctx, id)
	if err != nil {
		return apperror.NotFound("invoice not found")
	}
	switch inv.Status {
	case domain.InvoicePaid:
		return apperror.Conflict("invoice already paid")
	case domain.InvoiceCancelled:
		return apperror.Conflict("invoice is cancelled")
	}
	return u.invoices.UpdateStatus(ctx, id, domain.InvoicePaid)
}
