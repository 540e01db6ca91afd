package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// LineInput is one requested purchase line. Quantities are validated and
// prices re-derived server-side; the client never supplies amounts.
type LineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// CreateOrderInput carries everything order creation needs.
type CreateOrderInput struct {
	UserID uuid.UUID
	Lines  []LineInput
}

// OrderLineDTO is the API shape of a purchased line.
type OrderLineDTO struct {
	ProductID   uuid.UUID   `json:"product_id"`
	ProductName string      `json:"product_name"`
	UnitPrice   types.Money `json:"unit_price"`
	Quantity    int         `json:"quantity"`
	LineTotal   types.Money `json:"line_total"`
}

// OrderDTO is the API shape of an order.
type OrderDTO struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	VendorID  uuid.UUID         `json:"vendor_id"`
	Status    enums.OrderStatus `json:"status"`
	Currency  enums.Currency    `json:"currency"`
	Subtotal  types.Money       `json:"subtotal"`
	Total     types.Money       `json:"total"`
	Items     []OrderLineDTO    `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// OrderListResult is one cursor page of orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// FromModel maps a persisted order to its DTO.
func FromModel(m models.Order) OrderDTO {
	dto := OrderDTO{
		ID:        m.ID,
		UserID:    m.UserID,
		VendorID:  m.VendorID,
		Status:    m.Status,
		Currency:  m.Currency,
		Subtotal:  types.MoneyFromCents(int64(m.SubtotalCents)),
		Total:     types.MoneyFromCents(int64(m.TotalCents)),
		Items:     make([]OrderLineDTO, 0, len(m.Items)),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	for _, item := range m.Items {
		dto.Items = append(dto.Items, OrderLineDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   types.MoneyFromCents(int64(item.UnitPriceCents)),
			Quantity:    item.Quantity,
			LineTotal:   types.MoneyFromCents(int64(item.LineTotalCents)),
		})
	}
	return dto
}
