package order

import (
	"time"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
)

type Status string

const (
	StatusOrdered  Status = "ordered"
	StatusShipped  Status = "shipped"
	StatusComplete Status = "complete"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports membership in the allowed status set. Transitions between
// valid statuses are deliberately unrestricted, matching the legacy
// backend: complete -> ordered is as legal as ordered -> shipped.
func (s Status) Valid() bool {
	switch s {
	case StatusOrdered, StatusShipped, StatusComplete:
		return true
	}
	return false
}

// Order shares its id with the cart it was materialized from. Identity and
// lines are fixed at creation; status and address stay mutable. Products is
// populated only by the joined read paths, bare listings leave it nil.
type Order struct {
	ID        string             `json:"id" db:"id"`
	Date      time.Time          `json:"date" db:"date"`
	AddressID string             `json:"address_id" db:"address_id"`
	Status    Status             `json:"status" db:"status"`
	Products  []cart.ProductLine `json:"products,omitempty" db:"-"`
}

// Line is one orders_products row, snapshotted from a cart line at creation
// and never updated afterward.
type Line struct {
	OrderID   string `json:"order_id" db:"order_id"`
	ProductID string `json:"product_id" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// UserOrder is an orders_users audit row, many per user.
type UserOrder struct {
	UserID  string `json:"user_id" db:"user_id"`
	OrderID string `json:"order_id" db:"order_id"`
}
