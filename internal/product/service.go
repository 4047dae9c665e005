package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var ErrInvalidPrice = errors.New("product price must be a decimal greater than or equal to zero")

type Service interface {
	CreateProduct(ctx context.Context, p *Product) (*Product, error)
	GetProductByID(ctx context.Context, id string) (*Product, error)
	GetAllProducts(ctx context.Context) ([]Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateProduct(ctx context.Context, p *Product) (*Product, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("service: product name cannot be empty")
	}
	if err := validatePrice(p.Price); err != nil {
		return nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate product id: %w", err)
	}
	p.ID = id.String()

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error().Err(err).Msg("service: failed to create product in repository")
		return nil, fmt.Errorf("service: failed to create product: %w", err)
	}

	log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("service: product created")
	return p, nil
}

func (s *service) GetProductByID(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("product_id", id).Msg("service: failed to fetch product by id")
		return nil, fmt.Errorf("service: failed to fetch product by id: %w", err)
	}
	return p, nil
}

func (s *service) GetAllProducts(ctx context.Context) ([]Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch products")
		return nil, fmt.Errorf("service: failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *service) UpdateProduct(ctx context.Context, p *Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("service: product name cannot be empty")
	}
	if err := validatePrice(p.Price); err != nil {
		return err
	}

	err := s.repo.Update(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("product_id", p.ID).Msg("service: failed to update product")
		return fmt.Errorf("service: failed to update product: %w", err)
	}
	return nil
}

func (s *service) DeleteProduct(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("product_id", id).Msg("service: failed to delete product")
		return fmt.Errorf("service: failed to delete product: %w", err)
	}
	return nil
}

// validatePrice accepts the store's decimal-as-string form, with or without
// a leading currency sign, and rejects negative values.
func validatePrice(price string) error {
	trimmed := strings.TrimPrefix(strings.TrimSpace(price), "$")
	if trimmed == "" {
		return ErrInvalidPrice
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return ErrInvalidPrice
	}
	if d.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}
