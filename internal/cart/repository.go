package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/db"
)

var (
	ErrNotFound     = errors.New("cart not found")
	ErrLineNotFound = errors.New("cart line not found")
)

type Repository interface {
	Create(ctx context.Context, c *Cart) error
	GetByID(ctx context.Context, id string) (*Cart, error)
	GetByUserID(ctx context.Context, userID string) (*Cart, error)
	GetAll(ctx context.Context) ([]Cart, error)
	GetLineQuantity(ctx context.Context, cartID, productID string) (int, error)
	UpsertLine(ctx context.Context, line *Line) error
	DeleteLine(ctx context.Context, cartID, productID string) error
	GetContents(ctx context.Context, cartID string) ([]ProductLine, error)
	Delete(ctx context.Context, cartID string) error

	// InTx runs fn against a transaction-scoped copy of the repository when
	// atomic sequences are enabled, and against the shared pool otherwise.
	InTx(ctx context.Context, fn func(Repository) error) error
}

type repository struct {
	db     db.Querier
	pool   *pgxpool.Pool
	atomic bool
}

func NewRepository(pool *pgxpool.Pool, atomic bool) Repository {
	return &repository{db: pool, pool: pool, atomic: atomic}
}

func (r *repository) InTx(ctx context.Context, fn func(Repository) error) (err error) {
	if !r.atomic || r.pool == nil {
		return fn(r)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = fn(&repository{db: tx})
	return err
}

func (r *repository) Create(ctx context.Context, c *Cart) error {
	_, err := r.db.Exec(ctx, `INSERT INTO carts (id, user_id) VALUES ($1, $2)`, c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("repository: failed to insert cart: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Cart, error) {
	var c Cart
	err := r.db.QueryRow(ctx, `SELECT id, user_id FROM carts WHERE id = $1`, id).Scan(&c.ID, &c.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart by id %s: %w", id, err)
	}
	return &c, nil
}

func (r *repository) GetByUserID(ctx context.Context, userID string) (*Cart, error) {
	var c Cart
	err := r.db.QueryRow(ctx, `SELECT id, user_id FROM carts WHERE user_id = $1 LIMIT 1`, userID).Scan(&c.ID, &c.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select cart by user id %s: %w", userID, err)
	}
	return &c, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Cart, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_id FROM carts`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query carts: %w", err)
	}
	defer rows.Close()

	carts := make([]Cart, 0)
	for rows.Next() {
		var c Cart
		if err := rows.Scan(&c.ID, &c.UserID); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating carts: %w", err)
	}

	return carts, nil
}

// GetLineQuantity locks the line row for the rest of the surrounding
// transaction so a concurrent merge cannot read the same base quantity.
func (r *repository) GetLineQuantity(ctx context.Context, cartID, productID string) (int, error) {
	query := `
		SELECT quantity
		FROM carts_products
		WHERE cart_id = $1 AND product_id = $2
		FOR UPDATE
	`
	var quantity int
	err := r.db.QueryRow(ctx, query, cartID, productID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLineNotFound
		}
		return 0, fmt.Errorf("repository: failed to select line quantity for cart %s: %w", cartID, err)
	}
	return quantity, nil
}

func (r *repository) UpsertLine(ctx context.Context, line *Line) error {
	query := `
		INSERT INTO carts_products (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
	`
	_, err := r.db.Exec(ctx, query, line.CartID, line.ProductID, line.Quantity)
	if err != nil {
		return fmt.Errorf("repository: failed to upsert line for cart %s: %w", line.CartID, err)
	}
	return nil
}

func (r *repository) DeleteLine(ctx context.Context, cartID, productID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM carts_products WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete line for cart %s: %w", cartID, err)
	}
	return nil
}

func (r *repository) GetContents(ctx context.Context, cartID string) ([]ProductLine, error) {
	query := `
		SELECT products.id,
			products.name,
			products.description,
			products.price,
			products.category,
			carts_products.quantity AS quantity
		FROM carts_products
		INNER JOIN products ON carts_products.product_id = products.id
		WHERE carts_products.cart_id = $1
	`
	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query contents for cart %s: %w", cartID, err)
	}
	defer rows.Close()

	products := make([]ProductLine, 0)
	for rows.Next() {
		var p ProductLine
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Quantity); err != nil {
			return nil, fmt.Errorf("repository: failed to scan contents for cart %s: %w", cartID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating contents for cart %s: %w", cartID, err)
	}

	return products, nil
}

// Delete removes the lines first, then the cart row: lines must not outlive
// their cart and the store has no referential integrity to enforce it.
func (r *repository) Delete(ctx context.Context, cartID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM carts_products WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("repository: failed to delete lines for cart %s: %w", cartID, err)
	}

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("repository: failed to delete cart %s: %w", cartID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
