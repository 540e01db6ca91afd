package models

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a vendor listing in the catalog. Stock is the purchase
// ceiling carts clamp against and orders decrement at creation.
type Product struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID       uuid.UUID `gorm:"column:vendor_id;type:uuid;index;not null"`
	Name           string    `gorm:"column:name;not null"`
	Slug           string    `gorm:"column:slug;uniqueIndex;not null"`
	Description    *string   `gorm:"column:description"`
	Category       string    `gorm:"column:category;index;not null"`
	PriceCents     int       `gorm:"column:price_cents;not null"`
	SalePriceCents *int      `gorm:"column:sale_price_cents"`
	Stock          int       `gorm:"column:stock;not null;default:0"`
	ImageURL       *string   `gorm:"column:image_url"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	Vendor         *Vendor   `gorm:"foreignKey:VendorID"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// EffectivePriceCents returns the sale price when set, else the list price.
func (p Product) EffectivePriceCents() int {
	if p.SalePriceCents != nil {
		return *p.SalePriceCents
	}
	return p.PriceCents
}
