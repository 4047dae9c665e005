package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/order"
)

type mockOrderService struct {
	CreateOrderFunc   func(ctx context.Context, cartID string, date time.Time) (*order.Order, error)
	GetOrderByIDFunc  func(ctx context.Context, id string) (*order.Order, error)
	ListOrdersFunc    func(ctx context.Context, filter order.ListFilter) ([]order.Order, error)
	GetUserOrdersFunc func(ctx context.Context, userID string) ([]order.UserOrder, error)
	UpdateAddressFunc func(ctx context.Context, orderID, addressID string) error
	UpdateStatusFunc  func(ctx context.Context, orderID string, status order.Status) error
}

func (m *mockOrderService) CreateOrder(ctx context.Context, cartID string, date time.Time) (*order.Order, error) {
	return m.CreateOrderFunc(ctx, cartID, date)
}

func (m *mockOrderService) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	return m.GetOrderByIDFunc(ctx, id)
}

func (m *mockOrderService) ListOrders(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
	return m.ListOrdersFunc(ctx, filter)
}

func (m *mockOrderService) GetUserOrders(ctx context.Context, userID string) ([]order.UserOrder, error) {
	return m.GetUserOrdersFunc(ctx, userID)
}

func (m *mockOrderService) UpdateAddress(ctx context.Context, orderID, addressID string) error {
	return m.UpdateAddressFunc(ctx, orderID, addressID)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, orderID string, status order.Status) error {
	return m.UpdateStatusFunc(ctx, orderID, status)
}

func newOrderRouter(svc order.Service) *chi.Mux {
	r := chi.NewRouter()
	NewOrderHandler(svc).RegisterRoutes(r)
	return r
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		createOrder    func(ctx context.Context, cartID string, date time.Time) (*order.Order, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success",
			body: `{"cartId": "cart-1"}`,
			createOrder: func(ctx context.Context, cartID string, date time.Time) (*order.Order, error) {
				return &order.Order{
					ID:        cartID,
					Date:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
					AddressID: "testtesttesttesttestt",
					Status:    order.StatusOrdered,
					Products: []cart.ProductLine{
						{ID: "p1", Name: "test1", Description: "test description", Price: "$100.00", Category: 1, Quantity: 4},
					},
				}, nil
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `{"id":"cart-1","date":"2025-06-01T12:00:00Z","address_id":"testtesttesttesttestt","status":"ordered","products":[{"id":"p1","name":"test1","description":"test description","price":"$100.00","category":1,"quantity":4}]}`,
		},
		{
			name: "cart_not_found",
			body: `{"cartId": "gone-cart"}`,
			createOrder: func(ctx context.Context, cartID string, date time.Time) (*order.Order, error) {
				return nil, cart.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Cart not found"}`,
		},
		{
			name:           "missing_cart_id",
			body:           `{}`,
			createOrder:    nil,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","details":{"CartID":"failed on the 'required' rule"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOrderRouter(&mockOrderService{CreateOrderFunc: tt.createOrder})

			req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestOrderHandler_GetOrderByID_NotFound(t *testing.T) {
	router := newOrderRouter(&mockOrderService{
		GetOrderByIDFunc: func(ctx context.Context, id string) (*order.Order, error) {
			return nil, order.ErrNotFound
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders/bad-id", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, `{"error":"Order not found"}`, w.Body.String())
}

func TestOrderHandler_ListOrders_PassesFilter(t *testing.T) {
	var gotFilter order.ListFilter
	router := newOrderRouter(&mockOrderService{
		ListOrdersFunc: func(ctx context.Context, filter order.ListFilter) ([]order.Order, error) {
			gotFilter = filter
			return []order.Order{}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/orders?full=true&userId=user-1&status=complete", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, order.ListFilter{
		UserID:          "user-1",
		Status:          "complete",
		IncludeProducts: true,
	}, gotFilter)
}

func TestOrderHandler_UpdateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		updateAddress  func(ctx context.Context, orderID, addressID string) error
		updateStatus   func(ctx context.Context, orderID string, status order.Status) error
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "update_status",
			body: `{"cartId": "order-1", "status": "shipped"}`,
			updateStatus: func(ctx context.Context, orderID string, status order.Status) error {
				assert.Equal(t, order.StatusShipped, status)
				return nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "",
		},
		{
			name: "bad_status_rejected",
			body: `{"cartId": "order-1", "status": "bad-status"}`,
			updateStatus: func(ctx context.Context, orderID string, status order.Status) error {
				return order.ErrInvalidStatus
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Invalid order status"}`,
		},
		{
			name: "update_address",
			body: `{"cartId": "order-1", "address_id": "addresstoupdatetotest"}`,
			updateAddress: func(ctx context.Context, orderID, addressID string) error {
				assert.Equal(t, "addresstoupdatetotest", addressID)
				return nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   "",
		},
		{
			name:           "malformed_address_rejected_at_boundary",
			body:           `{"cartId": "order-1", "address_id": "bad-id"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"Validation failed","details":{"AddressID":"failed on the 'len' rule"}}`,
		},
		{
			name: "order_not_found",
			body: `{"cartId": "missing-order", "status": "shipped"}`,
			updateStatus: func(ctx context.Context, orderID string, status order.Status) error {
				return order.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"Order not found"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newOrderRouter(&mockOrderService{
				UpdateAddressFunc: tt.updateAddress,
				UpdateStatusFunc:  tt.updateStatus,
			})

			req := httptest.NewRequest(http.MethodPut, "/orders", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestOrderHandler_UpdateOrder_AddressThenStatus(t *testing.T) {
	var sequence []string
	router := newOrderRouter(&mockOrderService{
		UpdateAddressFunc: func(ctx context.Context, orderID, addressID string) error {
			sequence = append(sequence, "address")
			return nil
		},
		UpdateStatusFunc: func(ctx context.Context, orderID string, status order.Status) error {
			sequence = append(sequence, "status")
			return nil
		},
	})

	body := `{"cartId": "order-1", "address_id": "addresstoupdatetotest", "status": "complete"}`
	req := httptest.NewRequest(http.MethodPut, "/orders", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"address", "status"}, sequence)
}
