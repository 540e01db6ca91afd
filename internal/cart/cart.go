package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// VendorRef is the slice of vendor identity a cart line carries.
type VendorRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// LineItem is an add-time snapshot of a product. Quantity is the only field
// that mutates after the snapshot is taken; prices are advisory and orders
// re-price server-side.
type LineItem struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	SalePriceCents *int64    `json:"sale_price_cents,omitempty"`
	Stock          int       `json:"stock"`
	ImageURL       *string   `json:"image_url,omitempty"`
	Vendor         VendorRef `json:"vendor"`
	Quantity       int       `json:"quantity"`
}

// EffectiveUnitCents returns the sale price when present, else the list price.
func (li LineItem) EffectiveUnitCents() int64 {
	if li.SalePriceCents != nil {
		return *li.SalePriceCents
	}
	return li.UnitPriceCents
}

// PendingSwitch parks an incompatible candidate while the caller decides.
type PendingSwitch struct {
	State     enums.SwitchState `json:"state"`
	Candidate LineItem          `json:"candidate"`
	From      VendorRef         `json:"from"`
}

// Cart is the client cart snapshot. Items keep insertion order. A non-empty
// cart holds items from exactly one vendor.
type Cart struct {
	Items     []LineItem     `json:"items"`
	Pending   *PendingSwitch `json:"pending,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Vendor returns the cart's current vendor, nil when empty.
func (c Cart) Vendor() *VendorRef {
	if len(c.Items) == 0 {
		return nil
	}
	ref := c.Items[0].Vendor
	return &ref
}

// IsEmpty reports whether the cart holds no items.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// SwitchState exposes the confirmation state machine; idle when nothing is parked.
func (c Cart) SwitchState() enums.SwitchState {
	if c.Pending == nil {
		return enums.SwitchStateIdle
	}
	return c.Pending.State
}

// VendorCheck is the result of probing a candidate vendor against the cart.
type VendorCheck struct {
	IsSameVendor  bool       `json:"is_same_vendor"`
	CurrentVendor *VendorRef `json:"current_vendor,omitempty"`
	NewVendor     VendorRef  `json:"new_vendor"`
}

// CheckVendor reports whether a candidate vendor is compatible with the cart.
// An empty cart accepts any vendor.
func CheckVendor(c Cart, candidate VendorRef) VendorCheck {
	current := c.Vendor()
	return VendorCheck{
		IsSameVendor:  current == nil || current.ID == candidate.ID,
		CurrentVendor: current,
		NewVendor:     candidate,
	}
}

// clampQuantity forces qty into [1, stock]. A non-positive stock ceiling is
// treated as 1 so a malformed snapshot still yields a legal line.
func clampQuantity(qty, stock int) int {
	if stock < 1 {
		stock = 1
	}
	if qty < 1 {
		qty = 1
	}
	if qty > stock {
		qty = stock
	}
	return qty
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// Add merges the item into the cart: increment-or-append for the current
// vendor, park a pending switch for a different one. A successful add
// supersedes any parked switch, dropping the stale proposal. The input cart
// is never mutated.
func Add(c Cart, item LineItem) Cart {
	check := CheckVendor(c, item.Vendor)
	if !check.IsSameVendor {
		item.Quantity = clampQuantity(item.Quantity, item.Stock)
		return Cart{
			Items: cloneItems(c.Items),
			Pending: &PendingSwitch{
				State:     enums.SwitchStatePending,
				Candidate: item,
				From:      *check.CurrentVendor,
			},
		}
	}

	items := cloneItems(c.Items)
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity = clampQuantity(items[i].Quantity+item.Quantity, items[i].Stock)
			return Cart{Items: items}
		}
	}

	item.Quantity = clampQuantity(item.Quantity, item.Stock)
	return Cart{Items: append(items, item)}
}

// ChangeQuantity applies a delta to a line, clamped to [1, stock].
// Unknown product ids are a no-op.
func ChangeQuantity(c Cart, productID uuid.UUID, delta int) Cart {
	items := cloneItems(c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = clampQuantity(items[i].Quantity+delta, items[i].Stock)
			break
		}
	}
	return Cart{Items: items, Pending: c.Pending}
}

// SetQuantity sets an absolute quantity: non-positive input becomes 1, and
// the result never exceeds the stock ceiling.
func SetQuantity(c Cart, productID uuid.UUID, qty int) Cart {
	items := cloneItems(c.Items)
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = clampQuantity(qty, items[i].Stock)
			break
		}
	}
	return Cart{Items: items, Pending: c.Pending}
}

// Remove filters the line out of the cart. Unknown ids are a no-op.
func Remove(c Cart, productID uuid.UUID) Cart {
	if len(c.Items) == 0 {
		return Cart{Pending: c.Pending}
	}
	items := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	return Cart{Items: items, Pending: c.Pending}
}

// Clear resets the cart to empty. Used after successful order placement.
func Clear(Cart) Cart {
	return Cart{}
}

// ConfirmSwitch commits a parked vendor switch: the cart is replaced with the
// candidate at quantity 1. Without a parked switch it is a no-op reporting idle.
func ConfirmSwitch(c Cart) (Cart, enums.SwitchState) {
	if c.Pending == nil || c.Pending.State != enums.SwitchStatePending {
		return c, enums.SwitchStateIdle
	}
	candidate := c.Pending.Candidate
	candidate.Quantity = 1
	return Cart{Items: []LineItem{candidate}}, enums.SwitchStateCommitted
}

// CancelSwitch drops a parked vendor switch, leaving the cart unchanged.
func CancelSwitch(c Cart) (Cart, enums.SwitchState) {
	if c.Pending == nil || c.Pending.State != enums.SwitchStatePending {
		return c, enums.SwitchStateIdle
	}
	return Cart{Items: cloneItems(c.Items)}, enums.SwitchStateCancelled
}
