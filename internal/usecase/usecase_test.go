package usecase_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"cddiller-backend/internal/domain"
	"cddiller-backend/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock Repositories

type MockCredentialStore struct {
	mock.Mock
}

func (m *MockCredentialStore) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCredentialStore) SignUp(ctx context.Context, email, password string, meta domain.SignupMetadata) (*domain.Identity, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *MockCredentialStore) SignOut(ctx context.Context, accessToken string) error {
	return m.Called(ctx, accessToken).Error(0)
}

func (m *MockCredentialStore) GetCurrentSession(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockCredentialStore) SubscribeSessionChanges(handler func(event domain.AuthEvent, s *domain.Session)) func() {
	m.Called(handler)
	return func() {}
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Fetch(ctx context.Context, filter domain.ProfileFilter, limit, offset int) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Profile), args.Get(1).(int64), args.Error(2)
}

func (m *MockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockProfileRepo) SetAvatar(ctx context.Context, id string, png []byte) error {
	return m.Called(ctx, id, png).Error(0)
}

func (m *MockProfileRepo) GetAvatar(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockOrderRepo struct {
	mock.Mock
}

func (m *MockOrderRepo) CreateWithItems(ctx context.Context, o *domain.Order, items []domain.OrderItem) error {
	return m.Called(ctx, o, items).Error(0)
}

func (m *MockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) GetItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderItem), args.Error(1)
}

func (m *MockOrderRepo) Fetch(ctx context.Context, filter domain.OrderFilter, limit, offset int) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockOrderRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepo) Restore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepo) FetchDeleted(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *MockOrderRepo) Purge(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockStoreRepo struct {
	mock.Mock
}

func (m *MockStoreRepo) Create(ctx context.Context, s *domain.Store) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStoreRepo) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

func (m *MockStoreRepo) Fetch(ctx context.Context, dealerID string, limit, offset int) ([]domain.Store, int64, error) {
	args := m.Called(ctx, dealerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Store), args.Get(1).(int64), args.Error(2)
}

func (m *MockStoreRepo) Update(ctx context.Context, s *domain.Store) error {
	return m.Called(ctx, s).Error(0)
}

func (m *MockStoreRepo) SoftDelete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStoreRepo) Restore(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockStoreRepo) FetchDeleted(ctx context.Context) ([]domain.Store, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Store), args.Error(1)
}

func (m *MockStoreRepo) Purge(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) Create(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepo) Fetch(ctx context.Context, category string, limit, offset int) ([]domain.Product, int64, error) {
	args := m.Called(ctx, category, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Product), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepo) Update(ctx context.Context, p *domain.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProductRepo) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	args := m.Called(ctx, id, delta)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockReturnRepo struct {
	mock.Mock
}

func (m *MockReturnRepo) Create(ctx context.Context, r *domain.Return) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockReturnRepo) GetByID(ctx context.Context, id int64) (*domain.Return, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Return), args.Error(1)
}

func (m *MockReturnRepo) Fetch(ctx context.Context, customerID string, limit, offset int) ([]domain.Return, int64, error) {
	args := m.Called(ctx, customerID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Return), args.Get(1).(int64), args.Error(2)
}

func (m *MockReturnRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReturnStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockInvoiceRepo struct {
	mock.Mock
}

func (m *MockInvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	return m.Called(ctx, inv).Error(0)
}

func (m *MockInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Invoice), args.Error(1)
}

func (m *MockInvoiceRepo) Fetch(ctx context.Context, customerID string, status domain.InvoiceStatus, limit, offset int) ([]domain.Invoice, int64, error) {
	args := m.Called(ctx, customerID, status, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepo) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthLoginPolicy(t *testing.T) {
	session := &domain.Session{
		AccessToken: "tok-abc",
		Identity:    domain.Identity{ID: "uid-1", Email: "jane@example.com"},
	}

	t.Run("inactive account is revoked before the caller hears anything", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		creds.On("SignInWithPassword", mock.Anything, "jane@example.com", "secret").Return(session, nil)
		profiles.On("GetByID", mock.Anything, "uid-1").Return(&domain.Profile{
			ID: "uid-1", Status: domain.StatusInactive,
		}, nil)
		creds.On("SignOut", mock.Anything, "tok-abc").Return(nil)

		_, err := uc.Login(context.Background(), "jane@example.com", "secret")

		assert.ErrorIs(t, err, domain.ErrInactiveAccount)
		creds.AssertCalled(t, "SignOut", mock.Anything, "tok-abc")
	})

	t.Run("missing profile row revokes the session", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		creds.On("SignInWithPassword", mock.Anything, "jane@example.com", "secret").Return(session, nil)
		profiles.On("GetByID", mock.Anything, "uid-1").Return(nil, errors.New("no rows"))
		creds.On("SignOut", mock.Anything, "tok-abc").Return(nil)

		_, err := uc.Login(context.Background(), "jane@example.com", "secret")

		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
		creds.AssertCalled(t, "SignOut", mock.Anything, "tok-abc")
	})

	t.Run("active account logs in", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		creds.On("SignInWithPassword", mock.Anything, "jane@example.com", "secret").Return(session, nil)
		profiles.On("GetByID", mock.Anything, "uid-1").Return(&domain.Profile{
			ID: "uid-1", Name: "Jane", Role: domain.RoleAdmin, Status: domain.StatusActive,
		}, nil)

		result, err := uc.Login(context.Background(), "jane@example.com", "secret")

		require.NoError(t, err)
		assert.Equal(t, "tok-abc", result.Session.AccessToken)
		assert.Equal(t, domain.RoleAdmin, result.Profile.Role)
		creds.AssertNotCalled(t, "SignOut", mock.Anything, mock.Anything)
	})
}

func TestRegisterToleratesProfileFailure(t *testing.T) {
	creds := new(MockCredentialStore)
	profiles := new(MockProfileRepo)
	uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

	creds.On("SignUp", mock.Anything, "new@example.com", "secret", mock.Anything).
		Return(&domain.Identity{ID: "uid-2", Email: "new@example.com"}, nil)
	profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).
		Return(errors.New("duplicate key")).
		Run(func(args mock.Arguments) {
			p := args.Get(1).(*domain.Profile)
			assert.Equal(t, domain.StatusPending, p.Status)
		})

	identity, err := uc.Register(context.Background(), "new@example.com", "secret", "New Dealer", domain.RoleDealer)

	require.NoError(t, err)
	assert.Equal(t, "uid-2", identity.ID)
}

func TestCreateSuperadmin(t *testing.T) {
	t.Run("idempotent per email", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		profiles.On("Fetch", mock.Anything, domain.ProfileFilter{
			Role: domain.RoleSuperadmin, Email: "root@example.com",
		}, 1, 0).Return([]domain.Profile{{ID: "uid-root"}}, int64(1), nil)

		_, err := uc.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.ErrorIs(t, err, domain.ErrSuperadminExists)
		creds.AssertNotCalled(t, "SignUp", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("profile insert failure is fatal, unlike Register", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		profiles.On("Fetch", mock.Anything, mock.Anything, 1, 0).Return([]domain.Profile{}, int64(0), nil)
		creds.On("SignUp", mock.Anything, "root@example.com", "secret", mock.Anything).
			Return(&domain.Identity{ID: "uid-root"}, nil)
		profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).
			Return(errors.New("insert denied"))

		_, err := uc.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		assert.Error(t, err)
	})

	t.Run("fresh superadmin is created active", func(t *testing.T) {
		creds := new(MockCredentialStore)
		profiles := new(MockProfileRepo)
		uc := usecase.NewAuthUsecase(creds, profiles, nil, testLogger())

		profiles.On("Fetch", mock.Anything, mock.Anything, 1, 0).Return([]domain.Profile{}, int64(0), nil)
		creds.On("SignUp", mock.Anything, "root@example.com", "secret", mock.Anything).
			Return(&domain.Identity{ID: "uid-root"}, nil)
		profiles.On("Create", mock.Anything, mock.AnythingOfType("*domain.Profile")).Return(nil)

		profile, err := uc.CreateSuperadmin(context.Background(), "root@example.com", "secret", "Root")

		require.NoError(t, err)
		assert.Equal(t, domain.RoleSuperadmin, profile.Role)
		assert.Equal(t, domain.StatusActive, profile.Status)
	})
}

func TestOrderCreate(t *testing.T) {
	t.Run("prices lines from the catalogue and totals them", func(t *testing.T) {
		orders := new(MockOrderRepo)
		stores := new(MockStoreRepo)
		products := new(MockProductRepo)
		uc := usecase.NewOrderUsecase(orders, stores, products)

		stores.On("GetByID", mock.Anything, int64(7)).Return(&domain.Store{ID: 7, Status: domain.StatusActive}, nil)
		products.On("GetByID", mock.Anything, int64(1)).Return(&domain.Product{ID: 1, Name: "Widget", Price: 10.5}, nil)
		products.On("GetByID", mock.Anything, int64(2)).Return(&domain.Product{ID: 2, Name: "Gadget", Price: 4}, nil)
		orders.On("CreateWithItems", mock.Anything, mock.AnythingOfType("*domain.Order"), mock.Anything).
			Return(nil).
			Run(func(args mock.Arguments) {
				o := args.Get(1).(*domain.Order)
				o.ID = 42
			})

		o := &domain.Order{StoreID: 7, CustomerID: "uid-1"}
		items := []domain.OrderItem{
			{ProductID: 1, Quantity: 2, Price: 999}, // client price is ignored
			{ProductID: 2, Quantity: 1},
		}
		err := uc.Create(context.Background(), o, items)

		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, o.Status)
		assert.Equal(t, 25.0, o.Total)
		assert.Equal(t, "ORD-42", o.Reference)
		assert.Equal(t, 10.5, o.Items[0].Price)
	})

	t.Run("rejects inactive stores", func(t *testing.T) {
		orders := new(MockOrderRepo)
		stores := new(MockStoreRepo)
		products := new(MockProductRepo)
		uc := usecase.NewOrderUsecase(orders, stores, products)

		stores.On("GetByID", mock.Anything, int64(7)).Return(&domain.Store{ID: 7, Status: domain.StatusInactive}, nil)

		err := uc.Create(context.Background(), &domain.Order{StoreID: 7}, []domain.OrderItem{{ProductID: 1, Quantity: 1}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "inactive")
	})

	t.Run("rejects non-positive quantities", func(t *testing.T) {
		orders := new(MockOrderRepo)
		stores := new(MockStoreRepo)
		products := new(MockProductRepo)
		uc := usecase.NewOrderUsecase(orders, stores, products)

		stores.On("GetByID", mock.Anything, int64(7)).Return(&domain.Store{ID: 7, Status: domain.StatusActive}, nil)

		err := uc.Create(context.Background(), &domain.Order{StoreID: 7}, []domain.OrderItem{{ProductID: 1, Quantity: 0}})

		assert.Error(t, err)
	})
}

func TestOrderStatusTransitions(t *testing.T) {
	t.Run("illegal transition is a conflict", func(t *testing.T) {
		orders := new(MockOrderRepo)
		uc := usecase.NewOrderUsecase(orders, new(MockStoreRepo), new(MockProductRepo))

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderDelivered}, nil)

		err := uc.ChangeStatus(context.Background(), 42, domain.OrderProcessing)

		assert.Error(t, err)
		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cancelling before shipment restocks every line", func(t *testing.T) {
		orders := new(MockOrderRepo)
		products := new(MockProductRepo)
		uc := usecase.NewOrderUsecase(orders, new(MockStoreRepo), products)

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderProcessing}, nil)
		orders.On("UpdateStatus", mock.Anything, int64(42), domain.OrderCancelled).Return(nil)
		orders.On("GetItems", mock.Anything, int64(42)).Return([]domain.OrderItem{
			{ID: 1, ProductID: 1, Quantity: 2},
			{ID: 2, ProductID: 2, Quantity: 1},
		}, nil)
		products.On("AdjustStock", mock.Anything, int64(1), 2).Return(12, nil)
		products.On("AdjustStock", mock.Anything, int64(2), 1).Return(5, nil)

		err := uc.ChangeStatus(context.Background(), 42, domain.OrderCancelled)

		require.NoError(t, err)
		products.AssertExpectations(t)
	})

	t.Run("cancelling after shipment is refused", func(t *testing.T) {
		orders := new(MockOrderRepo)
		uc := usecase.NewOrderUsecase(orders, new(MockStoreRepo), new(MockProductRepo))

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderShipped}, nil)

		err := uc.ChangeStatus(context.Background(), 42, domain.OrderCancelled)

		assert.Error(t, err)
	})
}

func TestReturnLifecycle(t *testing.T) {
	delivered := &domain.Order{ID: 42, Status: domain.OrderDelivered, CustomerID: "uid-9"}
	lines := []domain.OrderItem{
		{ID: 10, ProductID: 1, Quantity: 2},
		{ID: 11, ProductID: 2, Quantity: 1},
	}

	t.Run("only delivered orders can be returned", func(t *testing.T) {
		returns := new(MockReturnRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewReturnUsecase(returns, orders, new(MockProductRepo))

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderShipped}, nil)

		err := uc.Create(context.Background(), &domain.Return{OrderID: 42, ItemIDs: []int64{10}})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delivered")
	})

	t.Run("item ids must belong to the order", func(t *testing.T) {
		returns := new(MockReturnRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewReturnUsecase(returns, orders, new(MockProductRepo))

		orders.On("GetByID", mock.Anything, int64(42)).Return(delivered, nil)
		orders.On("GetItems", mock.Anything, int64(42)).Return(lines, nil)

		err := uc.Create(context.Background(), &domain.Return{OrderID: 42, ItemIDs: []int64{10, 999}})

		assert.Error(t, err)
		returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("customer id comes from the order, not the request", func(t *testing.T) {
		returns := new(MockReturnRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewReturnUsecase(returns, orders, new(MockProductRepo))

		orders.On("GetByID", mock.Anything, int64(42)).Return(delivered, nil)
		orders.On("GetItems", mock.Anything, int64(42)).Return(lines, nil)
		returns.On("Create", mock.Anything, mock.AnythingOfType("*domain.Return")).Return(nil)

		r := &domain.Return{OrderID: 42, CustomerID: "spoofed", ItemIDs: []int64{10}}
		err := uc.Create(context.Background(), r)

		require.NoError(t, err)
		assert.Equal(t, "uid-9", r.CustomerID)
		assert.Equal(t, domain.ReturnPending, r.Status)
	})

	t.Run("approving restocks only the returned lines", func(t *testing.T) {
		returns := new(MockReturnRepo)
		orders := new(MockOrderRepo)
		products := new(MockProductRepo)
		uc := usecase.NewReturnUsecase(returns, orders, products)

		returns.On("GetByID", mock.Anything, int64(5)).Return(&domain.Return{
			ID: 5, OrderID: 42, ItemIDs: []int64{10}, Status: domain.ReturnPending,
		}, nil)
		orders.On("GetItems", mock.Anything, int64(42)).Return(lines, nil)
		products.On("AdjustStock", mock.Anything, int64(1), 2).Return(14, nil)
		returns.On("UpdateStatus", mock.Anything, int64(5), domain.ReturnApproved).Return(nil)

		err := uc.Approve(context.Background(), 5)

		require.NoError(t, err)
		products.AssertNotCalled(t, "AdjustStock", mock.Anything, int64(2), mock.Anything)
	})

	t.Run("resolved returns cannot be approved again", func(t *testing.T) {
		returns := new(MockReturnRepo)
		uc := usecase.NewReturnUsecase(returns, new(MockOrderRepo), new(MockProductRepo))

		returns.On("GetByID", mock.Anything, int64(5)).Return(&domain.Return{
			ID: 5, Status: domain.ReturnApproved,
		}, nil)

		assert.Error(t, uc.Approve(context.Background(), 5))
		assert.Error(t, uc.Reject(context.Background(), 5))
	})
}

func TestInvoicePolicy(t *testing.T) {
	t.Run("overdue is computed at read time", func(t *testing.T) {
		invoices := new(MockInvoiceRepo)
		uc := usecase.NewInvoiceUsecase(invoices, new(MockOrderRepo))

		invoices.On("Fetch", mock.Anything, "", domain.InvoiceStatus(""), 20, 0).Return([]domain.Invoice{
			{ID: 1, Status: domain.InvoicePending, DueDate: time.Now().Add(-24 * time.Hour)},
			{ID: 2, Status: domain.InvoicePending, DueDate: time.Now().Add(24 * time.Hour)},
			{ID: 3, Status: domain.InvoicePaid, DueDate: time.Now().Add(-24 * time.Hour)},
		}, int64(3), nil)

		got, _, err := uc.List(context.Background(), "", "", 1, 20)

		require.NoError(t, err)
		assert.Equal(t, domain.InvoiceOverdue, got[0].Status)
		assert.Equal(t, domain.InvoicePending, got[1].Status)
		assert.Equal(t, domain.InvoicePaid, got[2].Status)
	})

	t.Run("only delivered orders can be invoiced", func(t *testing.T) {
		invoices := new(MockInvoiceRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewInvoiceUsecase(invoices, orders)

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderShipped}, nil)

		_, err := uc.IssueForOrder(context.Background(), 42, time.Now().Add(14*24*time.Hour))

		assert.Error(t, err)
		invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("issue copies the order total", func(t *testing.T) {
		invoices := new(MockInvoiceRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewInvoiceUsecase(invoices, orders)

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{
			ID: 42, Reference: "ORD-42", Status: domain.OrderDelivered, CustomerID: "uid-9", Total: 125.5,
		}, nil)
		invoices.On("Create", mock.Anything, mock.AnythingOfType("*domain.Invoice")).Return(nil)

		inv, err := uc.IssueForOrder(context.Background(), 42, time.Now().Add(14*24*time.Hour))

		require.NoError(t, err)
		assert.Equal(t, 125.5, inv.Total)
		assert.Equal(t, "ORD-42", inv.OrderReference)
		assert.Equal(t, domain.InvoicePending, inv.Status)
	})

	t.Run("due date in the past is rejected", func(t *testing.T) {
		invoices := new(MockInvoiceRepo)
		orders := new(MockOrderRepo)
		uc := usecase.NewInvoiceUsecase(invoices, orders)

		orders.On("GetByID", mock.Anything, int64(42)).Return(&domain.Order{ID: 42, Status: domain.OrderDelivered}, nil)

		_, err := uc.IssueForOrder(context.Background(), 42, time.Now().Add(-time.Hour))

		assert.Error(t, err)
	})

	t.Run("paid and cancelled invoices cannot be paid", func(t *testing.T) {
		invoices := new(MockInvoiceRepo)
		uc := usecase.NewInvoiceUsecase(invoices, new(MockOrderRepo))

		invoices.On("GetByID", mock.Anything, int64(1)).Return(&domain.Invoice{ID: 1, Status: domain.InvoicePaid}, nil)
		invoices.On("GetByID", mock.Anything, int64(2)).Return(&domain.Invoice{ID: 2, Status: domain.InvoiceCancelled}, nil)

		assert.Error(t, uc.MarkPaid(context.Background(), 1))
		assert.Error(t, uc.MarkPaid(context.Background(), 2))
		invoices.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}
