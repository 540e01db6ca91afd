package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

// ListScope narrows an order listing to one side of the marketplace.
type ListScope struct {
	UserID   *uuid.UUID
	VendorID *uuid.UUID
}

// Repository is the persistence surface order workflows run against. Product
// reads and stock adjustments live here too so order creation can bind every
// statement to one transaction via WithTx.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOrder(ctx context.Context, order *models.Order) error
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, scope ListScope, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error

	FindProductsForPurchase(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error
}
