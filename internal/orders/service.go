package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/pagination"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines order workflows for buyers, vendors, and admins.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error)

	GetForBuyer(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	ListForBuyer(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	CancelForBuyer(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)

	ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	UpdateStatusForVendor(ctx context.Context, vendorID, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)

	ListAll(ctx context.Context, params pagination.Params) (*OrderListResult, error)
	UpdateStatusForAdmin(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Create turns purchase lines into an order inside one transaction: load
// products, enforce the single vendor rule, decrement stock, recompute totals
// from current catalog prices, persist the order with line snapshots.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*OrderDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	lines, err := normalizeLines(input.Lines)
	if err != nil {
		return nil, err
	}

	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ids := make([]uuid.UUID, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.ProductID)
		}
		products, err := repo.FindProductsForPurchase(ctx, ids)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
		}
		byID := make(map[uuid.UUID]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		order := &models.Order{
			UserID:   input.UserID,
			Status:   enums.OrderStatusPending,
			Currency: enums.CurrencyUSD,
		}

		for _, line := range lines {
			p, ok := byID[line.ProductID]
			if !ok {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
					WithDetails(map[string]any{"product_id": line.ProductID})
			}
			if !p.IsActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not available").
					WithDetails(map[string]any{"product_id": p.ID})
			}
			if p.Vendor == nil || p.Vendor.Status != enums.VendorStatusApproved {
				return pkgerrors.New(pkgerrors.CodeValidation, "vendor is not accepting orders").
					WithDetails(map[string]any{"product_id": p.ID})
			}

			if order.VendorID == uuid.Nil {
				order.VendorID = p.VendorID
			} else if order.VendorID != p.VendorID {
				return pkgerrors.New(pkgerrors.CodeConflict, "order items must belong to a single vendor")
			}

			affected, err := repo.DecrementStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
			if affected == 0 {
				return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
					WithDetails(map[string]any{
						"product_id": p.ID,
						"requested":  line.Quantity,
						"available":  p.Stock,
					})
			}

			unit := p.EffectivePriceCents()
			order.Items = append(order.Items, models.OrderLineItem{
				ProductID:      p.ID,
				ProductName:    p.Name,
				UnitPriceCents: unit,
				Quantity:       line.Quantity,
				LineTotalCents: unit * line.Quantity,
			})
			order.SubtotalCents += unit * line.Quantity
		}
		order.TotalCents = order.SubtotalCents

		if err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    created.ID,
			"vendor_id":   created.VendorID,
			"total_cents": created.TotalCents,
			"line_count":  len(created.Items),
		})
		s.logg.Info(logCtx, "order.created")
	}

	dto := FromModel(*created)
	return &dto, nil
}

func (s *service) GetForBuyer(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	dto := FromModel(*order)
	return &dto, nil
}

func (s *service) ListForBuyer(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	return s.list(ctx, ListScope{UserID: &userID}, params)
}

// CancelForBuyer cancels a pending order and returns its stock to the shelf.
// Orders that a vendor already started processing cannot be cancelled by the
// buyer.
func (s *service) CancelForBuyer(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	var cancelled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only pending orders can be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		if err := s.applyCancellation(ctx, repo, order); err != nil {
			return err
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := FromModel(*cancelled)
	return &dto, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	return s.list(ctx, ListScope{VendorID: &vendorID}, params)
}

func (s *service) UpdateStatusForVendor(ctx context.Context, vendorID, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	return s.transition(ctx, orderID, target, func(order *models.Order) error {
		if order.VendorID != vendorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another vendor")
		}
		return nil
	})
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) (*OrderListResult, error) {
	return s.list(ctx, ListScope{}, params)
}

func (s *service) UpdateStatusForAdmin(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (*OrderDTO, error) {
	return s.transition(ctx, orderID, target, nil)
}

// transition moves an order along the status lifecycle. Cancellation restores
// stock as part of the same transaction.
func (s *service) transition(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus, authorize func(*models.Order) error) (*OrderDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
			WithDetails(map[string]any{"status": target})
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
		}
		if authorize != nil {
			if err := authorize(order); err != nil {
				return err
			}
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition").
				WithDetails(map[string]any{"from": order.Status, "to": target})
		}

		if target == enums.OrderStatusCancelled {
			if err := s.applyCancellation(ctx, repo, order); err != nil {
				return err
			}
		} else {
			if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
			}
			order.Status = target
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": updated.ID,
			"status":   updated.Status,
		})
		s.logg.Info(logCtx, "order.status_changed")
	}

	dto := FromModel(*updated)
	return &dto, nil
}

func (s *service) applyCancellation(ctx context.Context, repo Repository, order *models.Order) error {
	for _, item := range order.Items {
		if err := repo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore stock")
		}
	}
	if err := repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	order.Status = enums.OrderStatusCancelled
	return nil
}

func (s *service) list(ctx context.Context, scope ListScope, params pagination.Params) (*OrderListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.ListOrders(ctx, scope, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for _, row := range rows {
		result.Orders = append(result.Orders, FromModel(row))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

func (s *service) loadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// normalizeLines validates quantities and merges duplicate product ids so a
// product never decrements stock twice in one order.
func normalizeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line")
	}

	merged := make(map[uuid.UUID]int, len(lines))
	order := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every line")
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
				WithDetails(map[string]any{"product_id": line.ProductID})
		}
		if _, seen := merged[line.ProductID]; !seen {
			order = append(order, line.ProductID)
		}
		merged[line.ProductID] += line.Quantity
	}

	out := make([]LineInput, 0, len(order))
	for _, id := range order {
		out = append(out, LineInput{ProductID: id, Quantity: merged[id]})
	}
	return out, nil
}
