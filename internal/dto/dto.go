package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/pricing"
)

// --- Auth ---

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required,min=2"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

type UpdateUserRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=customer admin"`
}

func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
}

// --- Product ---

type CreateProductRequest struct {
	Title       string           `json:"title" binding:"required,min=2"`
	Slug        string           `json:"slug"`
	Description string           `json:"description" binding:"required,min=10"`
	Price       decimal.Decimal  `json:"price" binding:"required"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       int              `json:"stock" binding:"min=0"`
	Status      string           `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE"`
}

type UpdateProductRequest struct {
	Title       *string          `json:"title"`
	Slug        *string          `json:"slug"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	Stock       *int             `json:"stock" binding:"omitempty,min=0"`
	Status      *string          `json:"status" binding:"omitempty,oneof=DRAFT ACTIVE"`
}

type ListProductsRequest struct {
	Page     int      `form:"page,default=1" binding:"min=1"`
	Limit    int      `form:"limit,default=12" binding:"min=1,max=50"`
	Search   string   `form:"search"`
	MinPrice *float64 `form:"min_price"`
	MaxPrice *float64 `form:"max_price"`
}

type AdminListProductsRequest struct {
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=50"`
	Status string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE"`
	Search string `form:"search"`
}

type ProductResponse struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	Price       decimal.Decimal  `json:"price"`
	SalePrice   *decimal.Decimal `json:"sale_price,omitempty"`
	Stock       int              `json:"stock"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func ToProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		Stock:       p.Stock,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

type ProductListResponse struct {
	Products []ProductResponse `json:"products"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	Limit    int               `json:"limit"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=99"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1,max=99"`
}

type CartItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Title         string          `json:"title"`
	PriceSnapshot decimal.Decimal `json:"price_snapshot"`
	Quantity      int             `json:"quantity"`
}

type CartTotals struct {
	Subtotal   decimal.Decimal `json:"subtotal"`
	TotalItems int             `json:"total_items"`
}

type CartResponse struct {
	ID     uuid.UUID          `json:"id"`
	Items  []CartItemResponse `json:"items"`
	Totals CartTotals         `json:"totals"`
}

func ToCartResponse(cart *model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for _, item := range cart.Items {
		resp := CartItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			PriceSnapshot: item.PriceSnapshot,
			Quantity:      item.Quantity,
		}
		if item.Product != nil {
			resp.Title = item.Product.Title
		}
		items = append(items, resp)
	}
	subtotal, totalItems := pricing.Totals(cart.Items)
	return CartResponse{
		ID:     cart.ID,
		Items:  items,
		Totals: CartTotals{Subtotal: subtotal, TotalItems: totalItems},
	}
}

// --- Checkout / Orders ---

type ShippingAddressRequest struct {
	FullName   string `json:"full_name" binding:"required,min=2"`
	Phone      string `json:"phone" binding:"required,min=6"`
	Line1      string `json:"line1" binding:"required,min=3"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required,min=2"`
	State      string `json:"state" binding:"required,min=2"`
	PostalCode string `json:"postal_code" binding:"required,min=3"`
	Country    string `json:"country" binding:"required,min=2"`
}

func (r ShippingAddressRequest) ToModel() model.ShippingAddress {
	return model.ShippingAddress{
		FullName:   r.FullName,
		Phone:      r.Phone,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

type CheckoutRequest struct {
	Address     ShippingAddressRequest `json:"address" binding:"required"`
	ShippingFee *decimal.Decimal       `json:"shipping_fee"`
}

type ListOrdersRequest struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1,max=50"`
}

type AdminListOrdersRequest struct {
	Page          int    `form:"page,default=1" binding:"min=1"`
	Limit         int    `form:"limit,default=20" binding:"min=1,max=50"`
	Status        string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=UNPAID PAID REFUNDED"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required,oneof=UNPAID PAID REFUNDED"`
}

type OrderItemResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Title         string          `json:"title"`
	PriceSnapshot decimal.Decimal `json:"price_snapshot"`
	Quantity      int             `json:"quantity"`
}

type OrderResponse struct {
	ID            uuid.UUID             `json:"id"`
	UserID        uuid.UUID             `json:"user_id"`
	Status        model.OrderStatus     `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	ShippingFee   decimal.Decimal       `json:"shipping_fee"`
	Total         decimal.Decimal       `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	PaymentStatus model.PaymentStatus   `json:"payment_status"`
	Address       model.ShippingAddress `json:"address"`
	Items         []OrderItemResponse   `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
}

func ToOrderResponse(order *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Title:         item.TitleSnapshot,
			PriceSnapshot: item.PriceSnapshot,
			Quantity:      item.Quantity,
		})
	}
	return OrderResponse{
		ID:            order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		Subtotal:      order.Subtotal,
		ShippingFee:   order.ShippingFee,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		PaymentStatus: order.PaymentStatus,
		Address:       order.Address,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}
