package product_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/product"
)

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]product.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]product.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, p *product.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestProductService_CreateProduct_Success(t *testing.T) {
	mockRepo := new(MockProductRepository)
	productService := product.NewService(mockRepo)

	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *product.Product) bool {
		return p.ID != "" && p.Name == "test-product"
	})).
		Return(nil).
		Once()

	createdProduct, err := productService.CreateProduct(context.Background(), &product.Product{
		Name:        "test-product",
		Description: "test-product-description",
		Price:       "$123.45",
		Category:    1,
	})

	require.NoError(t, err)
	require.NotNil(t, createdProduct)
	require.NotEmpty(t, createdProduct.ID)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_PriceValidation(t *testing.T) {
	tests := []struct {
		name    string
		price   string
		wantErr bool
	}{
		{name: "dollar_prefixed", price: "$100.00", wantErr: false},
		{name: "plain_decimal", price: "100", wantErr: false},
		{name: "zero", price: "0", wantErr: false},
		{name: "negative", price: "-5.00", wantErr: true},
		{name: "negative_with_prefix", price: "$-5.00", wantErr: true},
		{name: "not_a_number", price: "abc", wantErr: true},
		{name: "empty", price: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			productService := product.NewService(mockRepo)

			if !tt.wantErr {
				mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*product.Product")).
					Return(nil).
					Once()
			}

			_, err := productService.CreateProduct(context.Background(), &product.Product{
				Name:  "test-product",
				Price: tt.price,
			})

			if tt.wantErr {
				require.Error(t, err)
				require.ErrorIs(t, err, product.ErrInvalidPrice)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_CreateProduct_EmptyName(t *testing.T) {
	mockRepo := new(MockProductRepository)
	productService := product.NewService(mockRepo)

	createdProduct, err := productService.CreateProduct(context.Background(), &product.Product{
		Name:  "   ",
		Price: "$1.00",
	})

	require.Error(t, err)
	require.Nil(t, createdProduct)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_GetProductByID_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	productService := product.NewService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, "missing-product").
		Return(nil, product.ErrNotFound).
		Once()

	foundProduct, err := productService.GetProductByID(context.Background(), "missing-product")

	require.Error(t, err)
	require.ErrorIs(t, err, product.ErrNotFound)
	require.Nil(t, foundProduct)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	productService := product.NewService(mockRepo)

	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*product.Product")).
		Return(product.ErrNotFound).
		Once()

	err := productService.UpdateProduct(context.Background(), &product.Product{
		ID:    "missing-product",
		Name:  "test-product",
		Price: "$1.00",
	})

	require.Error(t, err)
	require.ErrorIs(t, err, product.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
