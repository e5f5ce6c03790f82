package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)
	GetCartWithItemsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error)
	UpsertItem(ctx context.Context, item *model.CartItem) error
	GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int, priceSnapshot decimal.Decimal) error
	DeleteItemForUser(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	ClearCartTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

// GetOrCreateCart lazily creates the user's single cart row. The insert is
// conflict-tolerant so two first-touch requests cannot race into an error.
func (r *pgCartRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	err = r.pool.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get cart after create: %w", err)
	}
	return cart, nil
}

const cartItemJoin = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.price_snapshot, ci.created_at, ci.updated_at,
		p.id, p.title, p.slug, p.description, p.price, p.sale_price, p.stock, p.status, p.created_at, p.updated_at
	FROM cart_items ci
	JOIN products p ON p.id = ci.product_id`

func scanCartItems(rows pgx.Rows) ([]model.CartItem, error) {
	defer rows.Close()

	var items []model.CartItem
	for rows.Next() {
		var item model.CartItem
		var p model.Product
		err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity, &item.PriceSnapshot,
			&item.CreatedAt, &item.UpdatedAt,
			&p.ID, &p.Title, &p.Slug, &p.Description, &p.Price, &p.SalePrice,
			&p.Stock, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = &p
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *pgCartRepo) GetCartWithItems(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	return loadCart(ctx, r.pool, `id`, cartID)
}

// GetCartWithItemsTx reads the cart inside the checkout transaction so the
// stock values observed are the ones the decrement will run against.
func (r *pgCartRepo) GetCartWithItemsTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*model.Cart, error) {
	return loadCart(ctx, tx, `user_id`, userID)
}

func loadCart(ctx context.Context, q querier, keyColumn string, key uuid.UUID) (*model.Cart, error) {
	cart := &model.Cart{}
	err := q.QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE `+keyColumn+` = $1`, key,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	rows, err := q.Query(ctx, cartItemJoin+` WHERE ci.cart_id = $1`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	cart.Items, err = scanCartItems(rows)
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// UpsertItem writes the quantity and price snapshot absolutely. Re-adding a
// product overwrites the stored snapshot with the current effective price
// rather than blending the old and new values.
func (r *pgCartRepo) UpsertItem(ctx context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	query := `INSERT INTO cart_items (id, cart_id, product_id, quantity, price_snapshot, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			  ON CONFLICT (cart_id, product_id) DO UPDATE
			  SET quantity = EXCLUDED.quantity, price_snapshot = EXCLUDED.price_snapshot, updated_at = NOW()
			  RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.ID, item.CartID, item.ProductID, item.Quantity, item.PriceSnapshot,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) GetItemForUser(ctx context.Context, userID, itemID uuid.UUID) (*model.CartItem, error) {
	rows, err := r.pool.Query(ctx,
		cartItemJoin+` JOIN carts c ON c.id = ci.cart_id WHERE ci.id = $1 AND c.user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	items, err := scanCartItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

func (r *pgCartRepo) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int, priceSnapshot decimal.Decimal) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $2, price_snapshot = $3, updated_at = NOW() WHERE id = $1`,
		itemID, quantity, priceSnapshot,
	)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

// DeleteItemForUser checks ownership and existence in one scoped delete.
func (r *pgCartRepo) DeleteItemForUser(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items ci USING carts c
		 WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgCartRepo) ClearCartTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
