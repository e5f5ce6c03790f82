package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/repository"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderAccessDenied = errors.New("access denied")
)

type OrderService struct {
	orderRepo repository.OrderRepository
}

func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (s *OrderService) GetByID(ctx context.Context, orderID, userID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	return s.orderRepo.ListByUserID(ctx, userID, limit, offset)
}

// Admin operations below: the only mutations an order accepts after
// checkout are explicit status transitions.

func (s *OrderService) AdminGetByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) AdminList(ctx context.Context, status *model.OrderStatus, paymentStatus *model.PaymentStatus, limit, offset int) ([]model.Order, int, error) {
	return s.orderRepo.List(ctx, status, paymentStatus, limit, offset)
}

func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) error {
	updated, err := s.orderRepo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if !updated {
		return ErrOrderNotFound
	}
	return nil
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, orderID uuid.UUID, status model.PaymentStatus) error {
	updated, err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if !updated {
		return ErrOrderNotFound
	}
	return nil
}
