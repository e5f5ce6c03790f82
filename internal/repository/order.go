package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

type OrderRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error)
	List(ctx context.Context, status *model.OrderStatus, paymentStatus *model.PaymentStatus, limit, offset int) ([]model.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (bool, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (bool, error)
	ConfirmPending(ctx context.Context, id uuid.UUID) (bool, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

// CreateTx inserts the order and its items inside the caller's checkout
// transaction. Orders are immutable after this point except for explicit
// status transitions.
func (r *pgOrderRepo) CreateTx(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	order.ID = uuid.New()

	addressJSON, err := json.Marshal(order.Address)
	if err != nil {
		return fmt.Errorf("marshal address: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, subtotal, shipping_fee, total, payment_method, payment_status, address_json, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Status, order.Subtotal, order.ShippingFee,
		order.Total, order.PaymentMethod, order.PaymentStatus, addressJSON,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, title_snapshot, price_snapshot, quantity)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			order.Items[i].ID, order.Items[i].OrderID, order.Items[i].ProductID,
			order.Items[i].TitleSnapshot, order.Items[i].PriceSnapshot, order.Items[i].Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

const orderColumns = `id, user_id, status, subtotal, shipping_fee, total, payment_method, payment_status, address_json, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	order := &model.Order{}
	var addressJSON []byte
	err := row.Scan(
		&order.ID, &order.UserID, &order.Status, &order.Subtotal, &order.ShippingFee,
		&order.Total, &order.PaymentMethod, &order.PaymentStatus, &addressJSON,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(addressJSON, &order.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	return order, nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, title_snapshot, price_snapshot, quantity FROM order_items WHERE order_id = $1`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.TitleSnapshot, &item.PriceSnapshot, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		item.OrderID = order.ID
		order.Items = append(order.Items, item)
	}
	return order, rows.Err()
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *pgOrderRepo) List(ctx context.Context, status *model.OrderStatus, paymentStatus *model.PaymentStatus, limit, offset int) ([]model.Order, int, error) {
	where := `WHERE ($1::text IS NULL OR status = $1) AND ($2::text IS NULL OR payment_status = $2)`

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders `+where, status, paymentStatus,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders `+where+` ORDER BY created_at DESC LIMIT $3 OFFSET $4`,
		status, paymentStatus, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`, id, status,
	)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// ConfirmPending is the worker's idempotent transition: it only moves a
// PENDING order forward, so redelivered messages cannot regress a shipped
// or cancelled order.
func (r *pgOrderRepo) ConfirmPending(ctx context.Context, id uuid.UUID) (bool, error) {
	ct, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		id, model.OrderStatusConfirmed, model.OrderStatusPending,
	)
	if err != nil {
		return false, fmt.Errorf("confirm order: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
