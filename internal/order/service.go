package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/user"
)

var ErrInvalidStatus = errors.New("invalid order status")

// CartStore is the slice of the cart manager the lifecycle needs: resolving
// a cart and snapshotting its contents. cart.Service satisfies it.
type CartStore interface {
	GetCartByID(ctx context.Context, id string) (*cart.Cart, error)
	GetContents(ctx context.Context, cartID string) (*cart.Contents, error)
}

// UserStore resolves the delivery address owner. user.Service satisfies it.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

// ListFilter composes read-side predicates by intersection: a zero value
// means "no constraint". Filtering runs in memory over the fetched list,
// not in the store query.
type ListFilter struct {
	UserID          string
	Status          string
	IncludeProducts bool
}

type Service interface {
	CreateOrder(ctx context.Context, cartID string, date time.Time) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]UserOrder, error)
	UpdateAddress(ctx context.Context, orderID, addressID string) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type service struct {
	repo  Repository
	carts CartStore
	users UserStore
}

func NewService(repo Repository, carts CartStore, users UserStore) Service {
	return &service{repo: repo, carts: carts, users: users}
}

// CreateOrder converts a cart into an order under the cart's id: it
// resolves the cart and its owner's address, snapshots the lines exactly
// (no re-merge), links the order to the user, and deletes the source cart.
// The conversion is one-shot: once the cart is gone, a second call fails
// with cart.ErrNotFound.
func (s *service) CreateOrder(ctx context.Context, cartID string, date time.Time) (*Order, error) {
	c, err := s.carts.GetCartByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			log.Warn().Str("cart_id", cartID).Msg("service: cart not found for order creation")
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve cart for order creation: %w", err)
	}

	contents, err := s.carts.GetContents(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to snapshot cart contents: %w", err)
	}

	u, err := s.users.GetUserByID(ctx, c.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			log.Warn().Str("cart_id", cartID).Str("user_id", c.UserID).Msg("service: cart owner not found for order creation")
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("service: failed to resolve cart owner: %w", err)
	}

	// The initial status is an application-level default, not a schema one.
	o := &Order{
		ID:        cartID,
		Date:      date,
		AddressID: u.AddressID,
		Status:    StatusOrdered,
	}

	lines := make([]Line, 0, len(contents.Products))
	for _, p := range contents.Products {
		lines = append(lines, Line{OrderID: cartID, ProductID: p.ID, Quantity: p.Quantity})
	}

	if err := s.repo.Create(ctx, o, lines, u.ID); err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, cart.ErrNotFound
		}
		log.Error().Err(err).Str("cart_id", cartID).Msg("service: failed to materialize order")
		return nil, fmt.Errorf("service: failed to materialize order: %w", err)
	}

	log.Info().Str("order_id", cartID).Str("user_id", u.ID).Int("lines", len(lines)).Msg("service: order created from cart")

	return s.GetOrderByID(ctx, cartID)
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		log.Error().Err(err).Str("order_id", id).Msg("service: failed to fetch order by id")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}
	return o, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	var (
		orders []Order
		err    error
	)
	if filter.IncludeProducts {
		orders, err = s.repo.GetAllWithProducts(ctx)
	} else {
		orders, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		log.Error().Err(err).Msg("service: failed to fetch orders")
		return nil, fmt.Errorf("service: failed to fetch orders: %w", err)
	}

	if filter.UserID != "" {
		links, err := s.repo.GetUserOrders(ctx, filter.UserID)
		if err != nil {
			return nil, fmt.Errorf("service: failed to fetch user order links: %w", err)
		}
		owned := make(map[string]bool, len(links))
		for _, link := range links {
			owned[link.OrderID] = true
		}

		filtered := make([]Order, 0, len(orders))
		for _, o := range orders {
			if owned[o.ID] {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	if filter.Status != "" {
		filtered := make([]Order, 0, len(orders))
		for _, o := range orders {
			if string(o.Status) == filter.Status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}

	return orders, nil
}

func (s *service) GetUserOrders(ctx context.Context, userID string) ([]UserOrder, error) {
	links, err := s.repo.GetUserOrders(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("service: failed to fetch user orders")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return links, nil
}

// UpdateAddress overwrites the delivery address unconditionally. The
// referent is an opaque external id, there is no address entity to check
// against.
func (s *service) UpdateAddress(ctx context.Context, orderID, addressID string) error {
	err := s.repo.UpdateAddress(ctx, orderID, addressID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("order_id", orderID).Msg("service: failed to update order address")
		return fmt.Errorf("service: failed to update order address: %w", err)
	}
	return nil
}

// UpdateStatus rejects values outside the allowed set before touching the
// store, so an invalid status leaves the current one intact. Any transition
// between valid statuses is accepted.
func (s *service) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	if !status.Valid() {
		log.Warn().Str("order_id", orderID).Str("status", string(status)).Msg("service: rejected invalid order status")
		return ErrInvalidStatus
	}

	err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		log.Error().Err(err).Str("order_id", orderID).Str("status", string(status)).Msg("service: failed to update order status")
		return fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().Str("order_id", orderID).Str("status", string(status)).Msg("service: order status updated")
	return nil
}
