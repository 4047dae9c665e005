package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/ecommerce-backend/internal/cart"
	"github.com/vasiliy-maslov/ecommerce-backend/internal/db"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	// Create materializes an order from a resolved cart: it inserts the
	// order row, one orders_products row per line, the orders_users link,
	// and then removes the source cart with its lines. With atomic
	// sequences enabled the whole conversion runs in one transaction that
	// locks the cart row first; otherwise the statements run unguarded in
	// order, reproducing the legacy sequence.
	Create(ctx context.Context, o *Order, lines []Line, userID string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	GetAll(ctx context.Context) ([]Order, error)
	GetAllWithProducts(ctx context.Context) ([]Order, error)
	GetUserOrders(ctx context.Context, userID string) ([]UserOrder, error)
	UpdateAddress(ctx context.Context, orderID, addressID string) error
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}

type repository struct {
	db     db.Querier
	pool   *pgxpool.Pool
	atomic bool
}

func NewRepository(pool *pgxpool.Pool, atomic bool) Repository {
	return &repository{db: pool, pool: pool, atomic: atomic}
}

func (r *repository) Create(ctx context.Context, o *Order, lines []Line, userID string) (err error) {
	if !r.atomic {
		return createOrderSteps(ctx, r.db, o, lines, userID, false)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Str("order_id", o.ID).Msg("repository: failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Str("order_id", o.ID).Msg("repository: failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	err = createOrderSteps(ctx, tx, o, lines, userID, true)
	return err
}

func createOrderSteps(ctx context.Context, q db.Querier, o *Order, lines []Line, userID string, lockCart bool) error {
	if lockCart {
		var cartID string
		err := q.QueryRow(ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE`, o.ID).Scan(&cartID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cart.ErrNotFound
			}
			return fmt.Errorf("repository: failed to lock cart %s: %w", o.ID, err)
		}
	}

	queryOrder := `
		INSERT INTO orders (id, date, address_id, status)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := q.Exec(ctx, queryOrder, o.ID, o.Date, o.AddressID, string(o.Status)); err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryLine := `
		INSERT INTO orders_products (order_id, product_id, quantity)
		VALUES ($1, $2, $3)
	`
	for _, line := range lines {
		if _, err := q.Exec(ctx, queryLine, o.ID, line.ProductID, line.Quantity); err != nil {
			return fmt.Errorf("repository: failed to insert order line for order %s: %w", o.ID, err)
		}
	}

	if _, err := q.Exec(ctx, `INSERT INTO orders_users (user_id, order_id) VALUES ($1, $2)`, userID, o.ID); err != nil {
		return fmt.Errorf("repository: failed to insert user order link for order %s: %w", o.ID, err)
	}

	if _, err := q.Exec(ctx, `DELETE FROM carts_products WHERE cart_id = $1`, o.ID); err != nil {
		return fmt.Errorf("repository: failed to delete lines of converted cart %s: %w", o.ID, err)
	}
	if _, err := q.Exec(ctx, `DELETE FROM carts WHERE id = $1`, o.ID); err != nil {
		return fmt.Errorf("repository: failed to delete converted cart %s: %w", o.ID, err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Order, error) {
	queryOrder := `
		SELECT id, date, address_id, status
		FROM orders
		WHERE id = $1
	`
	var o Order
	err := r.db.QueryRow(ctx, queryOrder, id).Scan(&o.ID, &o.Date, &o.AddressID, &o.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", id, err)
	}

	products, err := r.getOrderProducts(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Products = products

	return &o, nil
}

func (r *repository) getOrderProducts(ctx context.Context, orderID string) ([]cart.ProductLine, error) {
	query := `
		SELECT products.id,
			products.name,
			products.description,
			products.price,
			products.category,
			orders_products.quantity AS quantity
		FROM orders_products
		INNER JOIN products ON orders_products.product_id = products.id
		WHERE orders_products.order_id = $1
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order lines for order %s: %w", orderID, err)
	}
	defer rows.Close()

	products := make([]cart.ProductLine, 0)
	for rows.Next() {
		var p cart.ProductLine
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Quantity); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order line for order %s: %w", orderID, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order lines for order %s: %w", orderID, err)
	}

	return products, nil
}

func (r *repository) GetAll(ctx context.Context) ([]Order, error) {
	rows, err := r.db.Query(ctx, `SELECT id, date, address_id, status FROM orders`)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Date, &o.AddressID, &o.Status); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders: %w", err)
	}

	return orders, nil
}

// GetAllWithProducts assembles every order with its joined lines in two
// queries instead of one round-trip per order.
func (r *repository) GetAllWithProducts(ctx context.Context) ([]Order, error) {
	orders, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ordersMap := make(map[string]*Order, len(orders))
	orderIDs := make([]string, 0, len(orders))
	for i := range orders {
		orders[i].Products = make([]cart.ProductLine, 0)
		ordersMap[orders[i].ID] = &orders[i]
		orderIDs = append(orderIDs, orders[i].ID)
	}

	query := `
		SELECT orders_products.order_id,
			products.id,
			products.name,
			products.description,
			products.price,
			products.category,
			orders_products.quantity AS quantity
		FROM orders_products
		INNER JOIN products ON orders_products.product_id = products.id
		WHERE orders_products.order_id = ANY($1)
	`
	rows, err := r.db.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var orderID string
		var p cart.ProductLine
		if err := rows.Scan(&orderID, &p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Quantity); err != nil {
			return nil, fmt.Errorf("repository: failed to scan order line: %w", err)
		}
		if o, ok := ordersMap[orderID]; ok {
			o.Products = append(o.Products, p)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order lines: %w", err)
	}

	return orders, nil
}

func (r *repository) GetUserOrders(ctx context.Context, userID string) ([]UserOrder, error) {
	rows, err := r.db.Query(ctx, `SELECT user_id, order_id FROM orders_users WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query user orders for user %s: %w", userID, err)
	}
	defer rows.Close()

	links := make([]UserOrder, 0)
	for rows.Next() {
		var link UserOrder
		if err := rows.Scan(&link.UserID, &link.OrderID); err != nil {
			return nil, fmt.Errorf("repository: failed to scan user order for user %s: %w", userID, err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating user orders for user %s: %w", userID, err)
	}

	return links, nil
}

func (r *repository) UpdateAddress(ctx context.Context, orderID, addressID string) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE orders SET address_id = $1 WHERE id = $2`, addressID, orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to update address for order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID string, status Status) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), orderID)
	if err != nil {
		return fmt.Errorf("repository: failed to update status for order %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
