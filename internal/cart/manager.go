package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	product "github.com/marketloop/marketloop-backend/internal/products"
	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
)

// Operation names reported to subscribers.
const (
	OpAdd             = "add"
	OpChangeQuantity  = "change_quantity"
	OpSetQuantity     = "set_quantity"
	OpRemove          = "remove"
	OpClear           = "clear"
	OpSwitchConfirmed = "switch_confirmed"
	OpSwitchCancelled = "switch_cancelled"
)

// Subscriber observes committed cart changes. Called synchronously after the
// snapshot is stored.
type Subscriber func(ctx context.Context, cartKey, operation string, c Cart)

type productLoader interface {
	GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, *product.VendorSummary, error)
}

// View is the response shape for every cart operation: the snapshot, derived
// totals, and the switch state the last operation left behind.
type View struct {
	Cart        Cart              `json:"cart"`
	Totals      CartTotals        `json:"totals"`
	SwitchState enums.SwitchState `json:"switch_state"`
	VendorCheck *VendorCheck      `json:"vendor_check,omitempty"`
}

// Manager applies the pure cart mutators through a Store. Each operation is a
// read-modify-replace of the whole snapshot; last write wins.
type Manager struct {
	store       Store
	products    productLoader
	logg        *logger.Logger
	subscribers []Subscriber
}

// NewManager builds a cart manager on top of the provided store and catalog.
func NewManager(store Store, products productLoader, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &Manager{store: store, products: products, logg: logg}, nil
}

// Subscribe registers an observer for committed cart changes. Not safe to
// call concurrently with operations; register during wiring.
func (m *Manager) Subscribe(fn Subscriber) {
	if fn != nil {
		m.subscribers = append(m.subscribers, fn)
	}
}

// Get returns the current snapshot; a missing key reads as an empty cart.
func (m *Manager) Get(ctx context.Context, cartKey string) (*View, error) {
	c, _, err := m.load(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	return m.view(c, nil), nil
}

// AddItem snapshots the product and merges it into the cart. A vendor
// conflict parks the candidate and leaves the cart untouched; the returned
// view carries both vendors so the caller can prompt for confirmation.
func (m *Manager) AddItem(ctx context.Context, cartKey string, productID uuid.UUID, quantity int) (*View, error) {
	item, err := m.snapshotProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	item.Quantity = quantity

	c, _, err := m.load(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	check := CheckVendor(c, item.Vendor)
	next := Add(c, *item)
	if err := m.save(ctx, cartKey, next); err != nil {
		return nil, err
	}
	m.notify(ctx, cartKey, OpAdd, next)
	return m.view(next, &check), nil
}

// ChangeQuantity applies a clamped delta to a line. Unknown ids no-op.
func (m *Manager) ChangeQuantity(ctx context.Context, cartKey string, productID uuid.UUID, delta int) (*View, error) {
	return m.apply(ctx, cartKey, OpChangeQuantity, func(c Cart) Cart {
		return ChangeQuantity(c, productID, delta)
	})
}

// SetQuantity sets an absolute clamped quantity for a line.
func (m *Manager) SetQuantity(ctx context.Context, cartKey string, productID uuid.UUID, quantity int) (*View, error) {
	return m.apply(ctx, cartKey, OpSetQuantity, func(c Cart) Cart {
		return SetQuantity(c, productID, quantity)
	})
}

// RemoveItem drops a line from the cart.
func (m *Manager) RemoveItem(ctx context.Context, cartKey string, productID uuid.UUID) (*View, error) {
	return m.apply(ctx, cartKey, OpRemove, func(c Cart) Cart {
		return Remove(c, productID)
	})
}

// Clear empties the cart. Called by checkout after an order is placed.
func (m *Manager) Clear(ctx context.Context, cartKey string) (*View, error) {
	return m.apply(ctx, cartKey, OpClear, Clear)
}

// ConfirmSwitch commits a parked vendor switch.
func (m *Manager) ConfirmSwitch(ctx context.Context, cartKey string) (*View, error) {
	c, _, err := m.load(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	next, state := ConfirmSwitch(c)
	if state != enums.SwitchStateCommitted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no vendor switch awaiting confirmation")
	}
	if err := m.save(ctx, cartKey, next); err != nil {
		return nil, err
	}
	m.notify(ctx, cartKey, OpSwitchConfirmed, next)

	v := m.view(next, nil)
	v.SwitchState = state
	return v, nil
}

// CancelSwitch drops a parked vendor switch, cart unchanged.
func (m *Manager) CancelSwitch(ctx context.Context, cartKey string) (*View, error) {
	c, _, err := m.load(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	next, state := CancelSwitch(c)
	if state != enums.SwitchStateCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "no vendor switch awaiting confirmation")
	}
	if err := m.save(ctx, cartKey, next); err != nil {
		return nil, err
	}
	m.notify(ctx, cartKey, OpSwitchCancelled, next)

	v := m.view(next, nil)
	v.SwitchState = state
	return v, nil
}

func (m *Manager) apply(ctx context.Context, cartKey, operation string, mutate func(Cart) Cart) (*View, error) {
	c, _, err := m.load(ctx, cartKey)
	if err != nil {
		return nil, err
	}

	next := mutate(c)
	if err := m.save(ctx, cartKey, next); err != nil {
		return nil, err
	}
	m.notify(ctx, cartKey, operation, next)
	return m.view(next, nil), nil
}

func (m *Manager) load(ctx context.Context, cartKey string) (Cart, bool, error) {
	if cartKey == "" {
		return Cart{}, false, pkgerrors.New(pkgerrors.CodeValidation, "cart key required")
	}
	c, found, err := m.store.Get(ctx, cartKey)
	if err != nil {
		return Cart{}, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return c, found, nil
}

func (m *Manager) save(ctx context.Context, cartKey string, c Cart) error {
	c.UpdatedAt = time.Now().UTC()
	if err := m.store.Put(ctx, cartKey, c); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store cart")
	}
	return nil
}

func (m *Manager) notify(ctx context.Context, cartKey, operation string, c Cart) {
	for _, fn := range m.subscribers {
		fn(ctx, cartKey, operation, c)
	}
}

func (m *Manager) view(c Cart, check *VendorCheck) *View {
	return &View{
		Cart:        c,
		Totals:      Totals(c),
		SwitchState: c.SwitchState(),
		VendorCheck: check,
	}
}

// snapshotProduct loads the catalog row and freezes the fields a cart line
// needs. Inactive or unknown products cannot enter a cart.
func (m *Manager) snapshotProduct(ctx context.Context, productID uuid.UUID) (*LineItem, error) {
	model, vendor, err := m.products.GetProductDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !model.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	if model.Stock < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}

	item := &LineItem{
		ProductID:      model.ID,
		Name:           model.Name,
		UnitPriceCents: int64(model.PriceCents),
		Stock:          model.Stock,
		ImageURL:       model.ImageURL,
		Vendor:         VendorRef{ID: model.VendorID},
	}
	if model.SalePriceCents != nil {
		sale := int64(*model.SalePriceCents)
		item.SalePriceCents = &sale
	}
	if vendor != nil {
		item.Vendor.Name = vendor.Name
	}
	return item, nil
}
