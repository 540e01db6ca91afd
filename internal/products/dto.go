package product

import (
	"time"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// ProductDTO is the full transport shape for a listing.
type ProductDTO struct {
	ID             uuid.UUID    `json:"id"`
	VendorID       uuid.UUID    `json:"vendor_id"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Description    *string      `json:"description,omitempty"`
	Category       string       `json:"category"`
	Price          types.Money  `json:"price"`
	SalePrice      *types.Money `json:"sale_price,omitempty"`
	EffectivePrice types.Money  `json:"effective_price"`
	Stock          int          `json:"stock"`
	ImageURL       *string      `json:"image_url,omitempty"`
	IsActive       bool         `json:"is_active"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// VendorSummary is the minimal vendor data attached to product reads.
type VendorSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// ProductDetailDTO combines the listing with its vendor summary.
type ProductDetailDTO struct {
	Product ProductDTO    `json:"product"`
	Vendor  VendorSummary `json:"vendor"`
}

// ProductSummary is the browse-row shape for listings.
type ProductSummary struct {
	ID             uuid.UUID    `json:"id"`
	VendorID       uuid.UUID    `json:"vendor_id"`
	VendorName     string       `json:"vendor_name"`
	Name           string       `json:"name"`
	Slug           string       `json:"slug"`
	Category       string       `json:"category"`
	Price          types.Money  `json:"price"`
	SalePrice      *types.Money `json:"sale_price,omitempty"`
	EffectivePrice types.Money  `json:"effective_price"`
	Stock          int          `json:"stock"`
	ImageURL       *string      `json:"image_url,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
}

// ProductListResult is one browse page plus the cursor for the next one.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}

	dto := &ProductDTO{
		ID:             p.ID,
		VendorID:       p.VendorID,
		Name:           p.Name,
		Slug:           p.Slug,
		Description:    p.Description,
		Category:       p.Category,
		Price:          types.MoneyFromCents(int64(p.PriceCents)),
		EffectivePrice: types.MoneyFromCents(int64(p.EffectivePriceCents())),
		Stock:          p.Stock,
		ImageURL:       p.ImageURL,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.SalePriceCents != nil {
		sale := types.MoneyFromCents(int64(*p.SalePriceCents))
		dto.SalePrice = &sale
	}
	return dto
}
