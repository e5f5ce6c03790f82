package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductStatus string

const (
	ProductStatusDraft  ProductStatus = "DRAFT"
	ProductStatusActive ProductStatus = "ACTIVE"
)

type Product struct {
	ID          uuid.UUID
	Title       string
	Slug        string
	Description string
	Price       decimal.Decimal
	SalePrice   *decimal.Decimal
	Stock       int
	Status      ProductStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID            uuid.UUID
	CartID        uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	PriceSnapshot decimal.Decimal
	// Product is populated when the cart is loaded with items.
	Product   *Product
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethodCOD is the only supported payment method.
const PaymentMethodCOD = "COD"

type ShippingAddress struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        OrderStatus
	Subtotal      decimal.Decimal
	ShippingFee   decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod string
	PaymentStatus PaymentStatus
	Address       ShippingAddress
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	TitleSnapshot string
	PriceSnapshot decimal.Decimal
	Quantity      int
}

// TokenState is the lifecycle position of a refresh token record.
type TokenState string

const (
	TokenStateIssued  TokenState = "ISSUED"
	TokenStateRotated TokenState = "ROTATED"
	TokenStateRevoked TokenState = "REVOKED"
)

// RefreshToken is one row of the refresh-token ledger, keyed by jti.
// Rows are never deleted; rotation marks the old row revoked and links
// it to its successor, forming an auditable chain.
type RefreshToken struct {
	JTI        uuid.UUID
	UserID     uuid.UUID
	RevokedAt  *time.Time
	ReplacedBy *uuid.UUID
	CreatedAt  time.Time
}

func (t *RefreshToken) State() TokenState {
	switch {
	case t.RevokedAt == nil:
		return TokenStateIssued
	case t.ReplacedBy != nil:
		return TokenStateRotated
	default:
		return TokenStateRevoked
	}
}

type OrderMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
