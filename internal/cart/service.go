package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// ErrCartExists is advisory: no store constraint backs the one-cart-per-user
// convention, the service just pre-checks before creating.
var ErrCartExists = errors.New("user already has a cart")

type Service interface {
	CreateCart(ctx context.Context, userID string) (string, error)
	GetCartByID(ctx context.Context, id string) (*Cart, error)
	GetAllCarts(ctx context.Context) ([]Cart, error)
	AddItem(ctx context.Context, cartID, productID string, quantity int) error
	UpdateItem(ctx context.Context, cartID, productID string, quantity int) error
	RemoveItem(ctx context.Context, cartID, productID string, quantity *int) error
	GetContents(ctx context.Context, cartID string) (*Contents, error)
	DeleteCart(ctx context.Context, cartID string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) CreateCart(ctx context.Context, userID string) (string, error) {
	_, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return "", ErrCartExists
	}
	if !errors.Is(err, ErrNotFound) {
		log.Error().Err(err).Str("user_id", userID).Msg("service: failed to check for existing cart")
		return "", fmt.Errorf("service: failed to check for existing cart: %w", err)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("service: failed to generate cart id: %w", err)
	}

	c := &Cart{ID: id.String(), UserID: userID}
	if err := s.repo.Create(ctx, c); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("service: failed to create cart in repository")
		return "", fmt.Errorf("service: failed to create cart: %w", err)
	}

	log.Info().Str("cart_id", c.ID).Str("user_id", userID).Msg("service: cart created")
	return c.ID, nil
}

func (s *service) GetCartByID(ctx context.Context, id string) (*Cart, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("cart_id", id).Msg("service: failed to fetch cart by id")
		return nil, fmt.Errorf("service: failed to fetch cart by id: %w", err)
	}
	return c, nil
}

func (s *service) GetAllCarts(ctx context.Context) ([]Cart, error) {
	carts, err := s.repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch carts")
		return nil, fmt.Errorf("service: failed to fetch carts: %w", err)
	}
	return carts, nil
}

// AddItem merges into any existing line: repeated adds accumulate, they
// never create a second row for the same (cart, product) pair. A merge that
// lands at zero or below deletes the line. A fresh insert takes the given
// quantity as-is, matching the legacy backend, which never floor-checked the
// first add.
func (s *service) AddItem(ctx context.Context, cartID, productID string, quantity int) error {
	return s.repo.InTx(ctx, func(r Repository) error {
		existing, err := r.GetLineQuantity(ctx, cartID, productID)
		if err != nil {
			if errors.Is(err, ErrLineNotFound) {
				return r.UpsertLine(ctx, &Line{CartID: cartID, ProductID: productID, Quantity: quantity})
			}
			return fmt.Errorf("service: failed to look up line for merge: %w", err)
		}

		merged := existing + quantity
		if merged <= 0 {
			return r.DeleteLine(ctx, cartID, productID)
		}
		return r.UpsertLine(ctx, &Line{CartID: cartID, ProductID: productID, Quantity: merged})
	})
}

// UpdateItem sets the line to exactly quantity. Zero or less deletes the
// line instead of persisting a non-positive value.
func (s *service) UpdateItem(ctx context.Context, cartID, productID string, quantity int) error {
	if quantity <= 0 {
		return s.repo.DeleteLine(ctx, cartID, productID)
	}
	return s.repo.UpsertLine(ctx, &Line{CartID: cartID, ProductID: productID, Quantity: quantity})
}

// RemoveItem deletes the line unconditionally when quantity is nil.
// Otherwise it subtracts from the existing quantity, deleting the line when
// the remainder is zero or below; a missing line is ErrLineNotFound since
// there is nothing to subtract from.
func (s *service) RemoveItem(ctx context.Context, cartID, productID string, quantity *int) error {
	if quantity == nil {
		return s.repo.DeleteLine(ctx, cartID, productID)
	}

	return s.repo.InTx(ctx, func(r Repository) error {
		existing, err := r.GetLineQuantity(ctx, cartID, productID)
		if err != nil {
			if errors.Is(err, ErrLineNotFound) {
				return ErrLineNotFound
			}
			return fmt.Errorf("service: failed to look up line for removal: %w", err)
		}

		remaining := existing - *quantity
		if remaining <= 0 {
			return r.DeleteLine(ctx, cartID, productID)
		}
		return r.UpsertLine(ctx, &Line{CartID: cartID, ProductID: productID, Quantity: remaining})
	})
}

func (s *service) GetContents(ctx context.Context, cartID string) (*Contents, error) {
	if _, err := s.repo.GetByID(ctx, cartID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("cart_id", cartID).Msg("service: failed to fetch cart for contents")
		return nil, fmt.Errorf("service: failed to fetch cart for contents: %w", err)
	}

	products, err := s.repo.GetContents(ctx, cartID)
	if err != nil {
		log.Error().Err(err).Str("cart_id", cartID).Msg("service: failed to fetch cart contents")
		return nil, fmt.Errorf("service: failed to fetch cart contents: %w", err)
	}

	return &Contents{CartID: cartID, Products: products}, nil
}

func (s *service) DeleteCart(ctx context.Context, cartID string) error {
	err := s.repo.Delete(ctx, cartID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("cart_id", cartID).Msg("service: failed to delete cart")
		return fmt.Errorf("service: failed to delete cart: %w", err)
	}
	return nil
}
