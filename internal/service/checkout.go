package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/pricing"
	"github.com/diamond-electronics/storefront-api/internal/repository"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidShippingFee = errors.New("shipping fee must not be negative")
)

type CheckoutService struct {
	txm         repository.TxManager
	cartRepo    repository.CartRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	amqpCh      *amqp.Channel
	log         *slog.Logger
}

func NewCheckoutService(
	txm repository.TxManager,
	cartRepo repository.CartRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	amqpCh *amqp.Channel,
	log *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		txm:         txm,
		cartRepo:    cartRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		amqpCh:      amqpCh,
		log:         log,
	}
}

// Checkout converts the user's cart into an order in one transaction: the
// stock check, order insert, stock decrement, and cart clear either all
// commit or none do. Order items carry the cart's price snapshots, not
// re-fetched prices, so later product edits never alter the order.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, address model.ShippingAddress, shippingFee decimal.Decimal) (*model.Order, error) {
	if shippingFee.IsNegative() {
		return nil, ErrInvalidShippingFee
	}

	var order *model.Order
	err := s.txm.WithTx(ctx, func(tx pgx.Tx) error {
		cart, err := s.cartRepo.GetCartWithItemsTx(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("get cart: %w", err)
		}
		if cart == nil || len(cart.Items) == 0 {
			return ErrEmptyCart
		}

		// The cart-mutation-time check is advisory; stock may have
		// dropped since. This is the authoritative gate.
		for _, item := range cart.Items {
			if item.Quantity > item.Product.Stock {
				return ErrInsufficientStock
			}
		}

		subtotal, _ := pricing.Totals(cart.Items)

		o := &model.Order{
			UserID:        userID,
			Status:        model.OrderStatusPending,
			Subtotal:      subtotal,
			ShippingFee:   shippingFee,
			Total:         subtotal.Add(shippingFee),
			PaymentMethod: model.PaymentMethodCOD,
			PaymentStatus: model.PaymentStatusUnpaid,
			Address:       address,
		}
		for _, item := range cart.Items {
			o.Items = append(o.Items, model.OrderItem{
				ProductID:     item.ProductID,
				TitleSnapshot: item.Product.Title,
				PriceSnapshot: item.PriceSnapshot,
				Quantity:      item.Quantity,
			})
		}

		if err := s.orderRepo.CreateTx(ctx, tx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		// Conditional decrement: a concurrent checkout may have passed
		// the check above before our writes land. Zero rows affected
		// means the stock is gone and the whole transaction aborts.
		for _, item := range cart.Items {
			applied, err := s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !applied {
				return ErrInsufficientStock
			}
		}

		if err := s.cartRepo.ClearCartTx(ctx, tx, cart.ID); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderCreated(ctx, order)
	return order, nil
}

// publishOrderCreated hands the order to the fulfillment worker. Publishing
// is best-effort: the order is already committed and must not fail here.
func (s *CheckoutService) publishOrderCreated(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}

	msg, err := json.Marshal(model.OrderMessage{OrderID: order.ID, UserID: order.UserID})
	if err != nil {
		return
	}
	err = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
	if err != nil && s.log != nil {
		s.log.Error("publish order created", "order_id", order.ID, "error", err)
	}
}
