package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// Vendor is the storefront a seller operates. One owner account per vendor.
type Vendor struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerUserID uuid.UUID          `gorm:"column:owner_user_id;type:uuid;uniqueIndex;not null"`
	Name        string             `gorm:"column:name;not null"`
	Slug        string             `gorm:"column:slug;uniqueIndex;not null"`
	Description *string            `gorm:"column:description"`
	LogoURL     *string            `gorm:"column:logo_url"`
	Status      enums.VendorStatus `gorm:"column:status;not null;default:'pending'"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
