package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepo) CreateTx(_ context.Context, _ pgx.Tx, order *model.Order) error {
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByUserID(_ context.Context, userID uuid.UUID, _, _ int) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) List(_ context.Context, status *model.OrderStatus, paymentStatus *model.PaymentStatus, _, _ int) ([]model.Order, int, error) {
	var out []model.Order
	for _, o := range m.orders {
		if status != nil && o.Status != *status {
			continue
		}
		if paymentStatus != nil && o.PaymentStatus != *paymentStatus {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = status
	return true, nil
}

func (m *mockOrderRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status model.PaymentStatus) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, nil
	}
	o.PaymentStatus = status
	return true, nil
}

func (m *mockOrderRepo) ConfirmPending(_ context.Context, id uuid.UUID) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusConfirmed
	return true, nil
}

func seedOrder(repo *mockOrderRepo, userID uuid.UUID) *model.Order {
	order := &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusUnpaid,
	}
	repo.orders[order.ID] = order
	return order
}

func TestOrderService_GetByID_OwnerOnly(t *testing.T) {
	repo := newMockOrderRepo()
	owner := uuid.New()
	order := seedOrder(repo, owner)
	svc := NewOrderService(repo)

	got, err := svc.GetByID(context.Background(), order.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = svc.GetByID(context.Background(), order.ID, uuid.New())
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_GetByID_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo())
	_, err := svc.GetByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_AdminList_Filters(t *testing.T) {
	repo := newMockOrderRepo()
	pending := seedOrder(repo, uuid.New())
	shipped := seedOrder(repo, uuid.New())
	shipped.Status = model.OrderStatusShipped
	svc := NewOrderService(repo)

	status := model.OrderStatusPending
	orders, total, err := svc.AdminList(context.Background(), &status, nil, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, pending.ID, orders[0].ID)
}

func TestOrderService_UpdateStatus(t *testing.T) {
	repo := newMockOrderRepo()
	order := seedOrder(repo, uuid.New())
	svc := NewOrderService(repo)

	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, model.OrderStatusShipped))
	assert.Equal(t, model.OrderStatusShipped, repo.orders[order.ID].Status)

	err := svc.UpdateStatus(context.Background(), uuid.New(), model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	repo := newMockOrderRepo()
	order := seedOrder(repo, uuid.New())
	svc := NewOrderService(repo)

	require.NoError(t, svc.UpdatePaymentStatus(context.Background(), order.ID, model.PaymentStatusPaid))
	assert.Equal(t, model.PaymentStatusPaid, repo.orders[order.ID].PaymentStatus)

	err := svc.UpdatePaymentStatus(context.Background(), uuid.New(), model.PaymentStatusPaid)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
