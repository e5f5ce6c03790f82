package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/diamond-electronics/storefront-api/internal/model"
	"github.com/diamond-electronics/storefront-api/internal/pricing"
	"github.com/diamond-electronics/storefront-api/internal/repository"
)

var (
	ErrCartItemNotFound  = errors.New("cart item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrQuantityLimit     = errors.New("quantity limit exceeded")
)

// maxCartItemQuantity caps a single cart line. The DTO layer bounds each
// request; this bounds the accumulated line so repeated adds cannot climb
// past the limit.
const maxCartItemQuantity = 99

type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	return s.cartRepo.GetCartWithItems(ctx, cart.ID)
}

// AddItem appends quantity to any existing line for the product and
// refreshes that line's price snapshot to the current effective price.
// The stock check here is advisory; checkout re-validates inside its
// transaction.
func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil || product.Status != model.ProductStatusActive {
		return ErrProductNotFound
	}

	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("get or create cart: %w", err)
	}

	cartWithItems, err := s.cartRepo.GetCartWithItems(ctx, cart.ID)
	if err != nil {
		return fmt.Errorf("get cart items: %w", err)
	}

	nextQuantity := quantity
	for _, item := range cartWithItems.Items {
		if item.ProductID == productID {
			nextQuantity += item.Quantity
			break
		}
	}

	if nextQuantity > maxCartItemQuantity {
		return ErrQuantityLimit
	}
	if nextQuantity > product.Stock {
		return ErrInsufficientStock
	}

	return s.cartRepo.UpsertItem(ctx, &model.CartItem{
		CartID:        cart.ID,
		ProductID:     productID,
		Quantity:      nextQuantity,
		PriceSnapshot: pricing.EffectivePrice(product),
	})
}

// UpdateItem overwrites the quantity and refreshes the price snapshot.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	item, err := s.cartRepo.GetItemForUser(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return ErrCartItemNotFound
	}

	if quantity > item.Product.Stock {
		return ErrInsufficientStock
	}

	return s.cartRepo.UpdateItem(ctx, itemID, quantity, pricing.EffectivePrice(item.Product))
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	deleted, err := s.cartRepo.DeleteItemForUser(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if !deleted {
		return ErrCartItemNotFound
	}
	return nil
}
