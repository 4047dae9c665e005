package product

// Product is a catalog entry. Price is a decimal carried as a string,
// optionally "$"-prefixed, exactly as the store keeps it.
type Product struct {
	ID          string `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Price       string `json:"price" db:"price"`
	Category    int    `json:"category" db:"category"`
}
