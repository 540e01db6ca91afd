package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// VendorDTO is the transport shape for a storefront.
type VendorDTO struct {
	ID          uuid.UUID          `json:"id"`
	OwnerUserID uuid.UUID          `json:"owner_user_id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description *string            `json:"description,omitempty"`
	LogoURL     *string            `json:"logo_url,omitempty"`
	Status      enums.VendorStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreateVendorDTO holds the data required to persist a new storefront.
type CreateVendorDTO struct {
	OwnerUserID uuid.UUID
	Name        string
	Slug        string
	Description *string
	LogoURL     *string
}

func FromModel(v *models.Vendor) *VendorDTO {
	if v == nil {
		return nil
	}

	return &VendorDTO{
		ID:          v.ID,
		OwnerUserID: v.OwnerUserID,
		Name:        v.Name,
		Slug:        v.Slug,
		Description: v.Description,
		LogoURL:     v.LogoURL,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

func (c CreateVendorDTO) ToModel() *models.Vendor {
	return &models.Vendor{
		OwnerUserID: c.OwnerUserID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		LogoURL:     c.LogoURL,
		Status:      enums.VendorStatusPending,
	}
}
