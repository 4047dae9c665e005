package cart

// Cart carries the same id its eventual order will have.
type Cart struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
}

// Line is one carts_products row. A persisted line always has a positive
// quantity: writes that would drop it to zero or below delete the row.
type Line struct {
	CartID    string `json:"cart_id" db:"cart_id"`
	ProductID string `json:"product_id" db:"product_id"`
	Quantity  int    `json:"quantity" db:"quantity"`
}

// ProductLine is a product joined with the quantity a cart or order holds.
type ProductLine struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Price       string `json:"price" db:"price"`
	Category    int    `json:"category" db:"category"`
	Quantity    int    `json:"quantity" db:"quantity"`
}

// Contents is the aggregate view of a cart. Products is empty, never nil,
// for an existing cart with no lines, so "no lines" stays distinguishable
// from "cart absent".
type Contents struct {
	CartID   string        `json:"cart_id"`
	Products []ProductLine `json:"products"`
}
