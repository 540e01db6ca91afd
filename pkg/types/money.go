package types

import "github.com/shopspring/decimal"

// Money represents a cent-precise amount plus its display form. Amounts are
// stored and computed in integer cents; the decimal form exists for clients.
type Money struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

// MoneyFromCents builds the display representation for an integer cent amount.
func MoneyFromCents(cents int64) Money {
	return Money{
		Cents:   cents,
		Display: decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2),
	}
}
