package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

func createTestUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Password: "hashed", Name: "Test User", Role: "customer"}
	require.NoError(t, NewUserRepository(testPool).Create(context.Background(), user))
	return user
}

func createTestProduct(t *testing.T, slug string, price int64, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		Title:       "Product " + slug,
		Slug:        slug,
		Description: "integration fixture",
		Price:       decimal.NewFromInt(price),
		Stock:       stock,
		Status:      model.ProductStatusActive,
	}
	require.NoError(t, NewProductRepository(testPool).Create(context.Background(), product))
	return product
}

func TestUserRepo_CreateAndGetByEmail(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "refresh_tokens", "users")

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "jo@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.GetByEmail(ctx, "jo@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestProductRepo_CRUD(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products")

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	product := createTestProduct(t, "usb-c-hub", 35, 20)

	found, err := repo.GetBySlug(ctx, "usb-c-hub")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, product.ID, found.ID)

	exists, err := repo.SlugExists(ctx, "usb-c-hub")
	require.NoError(t, err)
	assert.True(t, exists)

	product.Title = "USB-C Hub v2"
	sale := decimal.NewFromInt(29)
	product.SalePrice = &sale
	require.NoError(t, repo.Update(ctx, product))

	found, _ = repo.GetByID(ctx, product.ID)
	assert.Equal(t, "USB-C Hub v2", found.Title)
	require.NotNil(t, found.SalePrice)
	assert.True(t, found.SalePrice.Equal(sale))

	require.NoError(t, repo.Delete(ctx, product.ID))
	found, _ = repo.GetByID(ctx, product.ID)
	assert.Nil(t, found)
}

func TestProductRepo_ListFilters(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products")

	repo := NewProductRepository(testPool)
	ctx := context.Background()

	createTestProduct(t, "mechanical-keyboard", 120, 5)
	cheap := createTestProduct(t, "mouse-pad", 8, 50)
	draft := createTestProduct(t, "unreleased-monitor", 400, 0)
	draft.Status = model.ProductStatusDraft
	require.NoError(t, repo.Update(ctx, draft))

	active := model.ProductStatusActive
	products, total, err := repo.List(ctx, ProductListParams{Status: &active, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, products, 2)

	maxPrice := 50.0
	products, total, err = repo.List(ctx, ProductListParams{Status: &active, MaxPrice: &maxPrice, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, cheap.ID, products[0].ID)

	products, total, err = repo.List(ctx, ProductListParams{Search: "keyboard", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
}

func TestCartRepo_UpsertOverwritesSnapshot(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products", "refresh_tokens", "users")

	cartRepo := NewCartRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "cart@example.com")
	product := createTestProduct(t, "webcam", 60, 10)

	cart, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, cartRepo.UpsertItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 1, PriceSnapshot: decimal.NewFromInt(60),
	}))
	require.NoError(t, cartRepo.UpsertItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 3, PriceSnapshot: decimal.NewFromInt(45),
	}))

	loaded, err := cartRepo.GetCartWithItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 3, loaded.Items[0].Quantity)
	assert.True(t, loaded.Items[0].PriceSnapshot.Equal(decimal.NewFromInt(45)))
	require.NotNil(t, loaded.Items[0].Product)
	assert.Equal(t, product.ID, loaded.Items[0].Product.ID)
}

func TestCartRepo_DeleteItemScopedToOwner(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products", "refresh_tokens", "users")

	cartRepo := NewCartRepository(testPool)
	ctx := context.Background()

	owner := createTestUser(t, "owner@example.com")
	intruder := createTestUser(t, "intruder@example.com")
	product := createTestProduct(t, "microphone", 90, 4)

	cart, err := cartRepo.GetOrCreateCart(ctx, owner.ID)
	require.NoError(t, err)
	item := &model.CartItem{CartID: cart.ID, ProductID: product.ID, Quantity: 1, PriceSnapshot: product.Price}
	require.NoError(t, cartRepo.UpsertItem(ctx, item))

	deleted, err := cartRepo.DeleteItemForUser(ctx, intruder.ID, item.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = cartRepo.DeleteItemForUser(ctx, owner.ID, item.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestOrderRepo_CreateTxAndConfirm(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products", "refresh_tokens", "users")

	orderRepo := NewOrderRepository(testPool)
	txm := NewTxManager(testPool)
	ctx := context.Background()

	user := createTestUser(t, "order@example.com")
	product := createTestProduct(t, "ssd-drive", 150, 10)

	order := &model.Order{
		UserID:        user.ID,
		Status:        model.OrderStatusPending,
		Subtotal:      decimal.NewFromInt(300),
		ShippingFee:   decimal.NewFromInt(20),
		Total:         decimal.NewFromInt(320),
		PaymentMethod: model.PaymentMethodCOD,
		PaymentStatus: model.PaymentStatusUnpaid,
		Address:       model.ShippingAddress{FullName: "Jo", Phone: "555", Line1: "1 Main", City: "X", State: "Y", PostalCode: "1", Country: "US"},
		Items: []model.OrderItem{
			{ProductID: product.ID, TitleSnapshot: product.Title, PriceSnapshot: product.Price, Quantity: 2},
		},
	}
	require.NoError(t, txm.WithTx(ctx, func(tx pgx.Tx) error {
		return orderRepo.CreateTx(ctx, tx, order)
	}))

	found, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, model.OrderStatusPending, found.Status)
	assert.Equal(t, "Jo", found.Address.FullName)
	require.Len(t, found.Items, 1)
	assert.Equal(t, product.Title, found.Items[0].TitleSnapshot)

	confirmed, err := orderRepo.ConfirmPending(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, confirmed)

	// Second confirmation is a no-op: the order is no longer PENDING.
	confirmed, err = orderRepo.ConfirmPending(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, confirmed)
}

// Two transactions race for the last unit of stock; the conditional
// decrement must let exactly one of them through.
func TestProductRepo_DecrementStock_Concurrent(t *testing.T) {
	cleanupTable(t, "order_items", "orders", "cart_items", "carts", "products")

	productRepo := NewProductRepository(testPool)
	txm := NewTxManager(testPool)
	ctx := context.Background()

	product := createTestProduct(t, "last-unit", 99, 1)

	var wg sync.WaitGroup
	results := make(chan bool, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = txm.WithTx(ctx, func(tx pgx.Tx) error {
				ok, err := productRepo.DecrementStock(ctx, tx, product.ID, 1)
				if err != nil {
					return err
				}
				results <- ok
				return nil
			})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for ok := range results {
		if ok {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	final, err := productRepo.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.Stock)
}

func TestTokenRepo_RotationIsSingleUse(t *testing.T) {
	cleanupTable(t, "refresh_tokens", "users")

	tokenRepo := NewTokenRepository(testPool)
	ctx := context.Background()

	user := createTestUser(t, "token@example.com")
	jti := uuid.New()
	require.NoError(t, tokenRepo.Create(ctx, &model.RefreshToken{JTI: jti, UserID: user.ID}))

	successor := uuid.New()
	rotated, err := tokenRepo.MarkRotated(ctx, jti, successor)
	require.NoError(t, err)
	assert.True(t, rotated)

	record, err := tokenRepo.GetByJTI(ctx, jti)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, model.TokenStateRotated, record.State())
	require.NotNil(t, record.ReplacedBy)
	assert.Equal(t, successor, *record.ReplacedBy)

	// The losing side of a concurrent rotation sees false.
	rotated, err = tokenRepo.MarkRotated(ctx, jti, uuid.New())
	require.NoError(t, err)
	assert.False(t, rotated)
}
