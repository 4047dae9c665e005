package order_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order, lines []order.Line, userID string) error {
	args := m.Called(ctx, o, lines, userID)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAll(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetAllWithProducts(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) GetUserOrders(ctx context.Context, userID string) ([]order.UserOrder, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.UserOrder), args.Error(1)
}

func (m *MockOrderRepository) UpdateAddress(ctx context.Context, orderID, addressID string) error {
	args := m.Called(ctx, orderID, addressID)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type MockCartStore struct {
	mock.Mock
}

func (m *MockCartStore) GetCartByID(ctx context.Context, id string) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartStore) GetContents(ctx context.Context, cartID string) (*cart.Contents, error) {
	args := m.Called(ctx, cartID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Contents), args.Error(1)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func newTestService(t *testing.T) (order.Service, *MockOrderRepository, *MockCartStore, *MockUserStore) {
	t.Helper()
	mockRepo := new(MockOrderRepository)
	mockCarts := new(MockCartStore)
	mockUsers := new(MockUserStore)
	return order.NewService(mockRepo, mockCarts, mockUsers), mockRepo, mockCarts, mockUsers
}

func TestOrderService_CreateOrder_SnapshotsCartExactly(t *testing.T) {
	orderService, mockRepo, mockCarts, mockUsers := newTestService(t)

	cartID := "cart-1"
	date := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	productLines := []cart.ProductLine{
		{ID: "p1", Name: "test1", Price: "$100.00", Category: 1, Quantity: 4},
		{ID: "p2", Name: "test2", Price: "$100.00", Category: 1, Quantity: 5},
		{ID: "p3", Name: "test3", Price: "$100.00", Category: 1, Quantity: 6},
	}

	mockCarts.On("GetCartByID", mock.Anything, cartID).
		Return(&cart.Cart{ID: cartID, UserID: "user-1"}, nil).
		Once()
	mockCarts.On("GetContents", mock.Anything, cartID).
		Return(&cart.Contents{CartID: cartID, Products: productLines}, nil).
		Once()
	mockUsers.On("GetUserByID", mock.Anything, "user-1").
		Return(&user.User{ID: "user-1", AddressID: "testtesttesttesttestt"}, nil).
		Once()

	expectedLines := []order.Line{
		{OrderID: cartID, ProductID: "p1", Quantity: 4},
		{OrderID: cartID, ProductID: "p2", Quantity: 5},
		{OrderID: cartID, ProductID: "p3", Quantity: 6},
	}
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.ID == cartID &&
			o.Status == order.StatusOrdered &&
			o.AddressID == "testtesttesttesttestt" &&
			o.Date.Equal(date)
	}), expectedLines, "user-1").
		Return(nil).
		Once()

	materialized := &order.Order{
		ID:        cartID,
		Date:      date,
		AddressID: "testtesttesttesttestt",
		Status:    order.StatusOrdered,
		Products:  productLines,
	}
	mockRepo.On("GetByID", mock.Anything, cartID).
		Return(materialized, nil).
		Once()

	createdOrder, err := orderService.CreateOrder(context.Background(), cartID, date)

	require.NoError(t, err)
	require.NotNil(t, createdOrder)
	diff := cmp.Diff(*materialized, *createdOrder)
	require.Empty(t, diff)
	mockRepo.AssertExpectations(t)
	mockCarts.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}

func TestOrderService_CreateOrder_CartNotFound(t *testing.T) {
	orderService, mockRepo, mockCarts, _ := newTestService(t)

	// A converted cart no longer exists, so a second CreateOrder on the
	// same id takes this same path.
	mockCarts.On("GetCartByID", mock.Anything, "gone-cart").
		Return(nil, cart.ErrNotFound).
		Once()

	createdOrder, err := orderService.CreateOrder(context.Background(), "gone-cart", time.Now())

	require.Error(t, err)
	require.ErrorIs(t, err, cart.ErrNotFound)
	require.Nil(t, createdOrder)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockCarts.AssertExpectations(t)
}

func TestOrderService_CreateOrder_OwnerNotFound(t *testing.T) {
	orderService, mockRepo, mockCarts, mockUsers := newTestService(t)

	cartID := "cart-1"

	mockCarts.On("GetCartByID", mock.Anything, cartID).
		Return(&cart.Cart{ID: cartID, UserID: "missing-user"}, nil).
		Once()
	mockCarts.On("GetContents", mock.Anything, cartID).
		Return(&cart.Contents{CartID: cartID, Products: []cart.ProductLine{}}, nil).
		Once()
	mockUsers.On("GetUserByID", mock.Anything, "missing-user").
		Return(nil, user.ErrNotFound).
		Once()

	createdOrder, err := orderService.CreateOrder(context.Background(), cartID, time.Now())

	require.Error(t, err)
	require.ErrorIs(t, err, user.ErrNotFound)
	require.Nil(t, createdOrder)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUsers.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_RejectsUnknownStatus(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	err := orderService.UpdateStatus(context.Background(), "order-1", order.Status("bad-status"))

	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_AllowsAnyTransitionWithinSet(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	// Transition legality is not checked, only set membership: moving a
	// completed order back to ordered is accepted.
	mockRepo.On("UpdateStatus", mock.Anything, "order-1", order.StatusOrdered).
		Return(nil).
		Once()

	err := orderService.UpdateStatus(context.Background(), "order-1", order.StatusOrdered)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_OrderNotFound(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	mockRepo.On("UpdateStatus", mock.Anything, "missing-order", order.StatusShipped).
		Return(order.ErrNotFound).
		Once()

	err := orderService.UpdateStatus(context.Background(), "missing-order", order.StatusShipped)

	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_UpdateAddress_OverwritesUnconditionally(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	mockRepo.On("UpdateAddress", mock.Anything, "order-1", "addresstoupdatetotest").
		Return(nil).
		Once()

	err := orderService.UpdateAddress(context.Background(), "order-1", "addresstoupdatetotest")

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_ListOrders_BareRowsWithoutProducts(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	bare := []order.Order{
		{ID: "order-1", Status: order.StatusOrdered},
		{ID: "order-2", Status: order.StatusShipped},
	}
	mockRepo.On("GetAll", mock.Anything).
		Return(bare, nil).
		Once()

	orders, err := orderService.ListOrders(context.Background(), order.ListFilter{})

	require.NoError(t, err)
	require.Len(t, orders, 2)
	for _, o := range orders {
		require.Nil(t, o.Products)
	}
	mockRepo.AssertNotCalled(t, "GetAllWithProducts", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_ListOrders_FullIncludesJoinedProducts(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	joined := []order.Order{
		{
			ID:     "order-1",
			Status: order.StatusOrdered,
			Products: []cart.ProductLine{
				{ID: "p1", Name: "test1", Quantity: 4},
			},
		},
	}
	mockRepo.On("GetAllWithProducts", mock.Anything).
		Return(joined, nil).
		Once()

	orders, err := orderService.ListOrders(context.Background(), order.ListFilter{IncludeProducts: true})

	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Products)
	mockRepo.AssertNotCalled(t, "GetAll", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestOrderService_ListOrders_FiltersComposeByIntersection(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	all := []order.Order{
		{ID: "order-1", Status: order.StatusOrdered},
		{ID: "order-2", Status: order.StatusComplete},
		{ID: "order-3", Status: order.StatusComplete},
	}
	mockRepo.On("GetAll", mock.Anything).
		Return(all, nil).
		Times(3)
	mockRepo.On("GetUserOrders", mock.Anything, "user-1").
		Return([]order.UserOrder{
			{UserID: "user-1", OrderID: "order-1"},
			{UserID: "user-1", OrderID: "order-2"},
		}, nil).
		Twice()

	byUser, err := orderService.ListOrders(context.Background(), order.ListFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	require.Equal(t, "order-1", byUser[0].ID)
	require.Equal(t, "order-2", byUser[1].ID)

	byStatus, err := orderService.ListOrders(context.Background(), order.ListFilter{Status: "complete"})
	require.NoError(t, err)
	require.Len(t, byStatus, 2)
	require.Equal(t, "order-2", byStatus[0].ID)
	require.Equal(t, "order-3", byStatus[1].ID)

	both, err := orderService.ListOrders(context.Background(), order.ListFilter{UserID: "user-1", Status: "complete"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	require.Equal(t, "order-2", both[0].ID)

	mockRepo.AssertExpectations(t)
}

func TestOrderService_GetOrderByID_NotFound(t *testing.T) {
	orderService, mockRepo, _, _ := newTestService(t)

	mockRepo.On("GetByID", mock.Anything, "bad-id").
		Return(nil, order.ErrNotFound).
		Once()

	foundOrder, err := orderService.GetOrderByID(context.Background(), "bad-id")

	require.Error(t, err)
	require.ErrorIs(t, err, order.ErrNotFound)
	require.Nil(t, foundOrder)
	mockRepo.AssertExpectations(t)
}
