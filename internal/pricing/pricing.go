package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/diamond-electronics/storefront-api/internal/model"
)

// EffectivePrice returns the price a customer pays for one unit: the sale
// price when one is set, the list price otherwise.
func EffectivePrice(p *model.Product) decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// Totals sums the cart from its stored price snapshots, not live product
// prices, so the result is stable against concurrent admin price edits.
func Totals(items []model.CartItem) (subtotal decimal.Decimal, totalItems int) {
	for _, item := range items {
		subtotal = subtotal.Add(item.PriceSnapshot.Mul(decimal.NewFromInt(int64(item.Quantity))))
		totalItems += item.Quantity
	}
	return subtotal, totalItems
}
