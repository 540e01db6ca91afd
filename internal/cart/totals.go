package cart

import (
	"github.com/shopspring/decimal"

	"github.com/marketloop/marketloop-backend/pkg/types"
)

// CartTotals is the advisory display total for a cart snapshot.
type CartTotals struct {
	TotalQuantity int         `json:"total_quantity"`
	Total         types.Money `json:"total"`
}

// Totals derives quantity and price totals from the cart. Pure and
// idempotent; an empty cart yields zeros. The effective unit price is the
// sale price when present, else the list price.
func Totals(c Cart) CartTotals {
	var quantity int
	total := decimal.Zero

	for _, item := range c.Items {
		quantity += item.Quantity
		line := decimal.NewFromInt(item.EffectiveUnitCents()).
			Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}

	return CartTotals{
		TotalQuantity: quantity,
		Total:         types.MoneyFromCents(total.IntPart()),
	}
}
