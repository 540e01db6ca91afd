package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// Order is a single-vendor purchase created at checkout. Totals are computed
// server-side from catalog prices at creation time, never from client input.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID        uuid.UUID         `gorm:"column:user_id;type:uuid;index;not null"`
	VendorID      uuid.UUID         `gorm:"column:vendor_id;type:uuid;index;not null"`
	Status        enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	Currency      enums.Currency    `gorm:"column:currency;not null;default:'USD'"`
	SubtotalCents int               `gorm:"column:subtotal_cents;not null"`
	TotalCents    int               `gorm:"column:total_cents;not null"`
	Items         []OrderLineItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
