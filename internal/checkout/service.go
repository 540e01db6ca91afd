package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/internal/cart"
	"github.com/marketloop/marketloop-backend/internal/orders"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
)

type cartManager interface {
	Get(ctx context.Context, cartKey string) (*cart.View, error)
	Clear(ctx context.Context, cartKey string) (*cart.View, error)
}

type orderCreator interface {
	Create(ctx context.Context, input orders.CreateOrderInput) (*orders.OrderDTO, error)
}

// Service turns a cart into an order. The cart contributes product ids and
// quantities only; pricing and stock checks are the order service's job.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, cartKey string) (*orders.OrderDTO, error)
}

type service struct {
	carts  cartManager
	orders orderCreator
	logg   *logger.Logger
}

// NewService builds a checkout service with the required dependencies.
func NewService(carts cartManager, orderSvc orderCreator, logg *logger.Logger) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart manager required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order service required")
	}
	return &service{carts: carts, orders: orderSvc, logg: logg}, nil
}

// Checkout submits the cart as an order and clears it on success. Any
// failure, stock shortfalls included, leaves the cart intact so the buyer
// can adjust and retry.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, cartKey string) (*orders.OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}

	view, err := s.carts.Get(ctx, cartKey)
	if err != nil {
		return nil, err
	}
	if view.Cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	if view.Cart.Pending != nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "resolve the pending vendor switch before checkout")
	}

	lines := make([]orders.LineInput, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		lines = append(lines, orders.LineInput{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	order, err := s.orders.Create(ctx, orders.CreateOrderInput{UserID: userID, Lines: lines})
	if err != nil {
		return nil, err
	}

	// The order is already placed; a failed clear only leaves a stale cart
	// behind, so log and move on.
	if _, err := s.carts.Clear(ctx, cartKey); err != nil && s.logg != nil {
		s.logg.Error(ctx, "checkout.cart_clear_failed", err)
	}

	return order, nil
}
