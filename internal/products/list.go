package product

import (
	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

// ProductListFilters describe the supported filter knobs for the browse endpoint.
type ProductListFilters struct {
	VendorID      *uuid.UUID `json:"vendor_id,omitempty"`
	Category      *string    `json:"category,omitempty"`
	PriceMinCents *int       `json:"price_min_cents,omitempty"`
	PriceMaxCents *int       `json:"price_max_cents,omitempty"`
	OnSale        *bool      `json:"on_sale,omitempty"`
	InStock       *bool      `json:"in_stock,omitempty"`
	Query         string     `json:"q,omitempty"`
}

// ListProductsInput captures the inputs needed to paginate and filter the catalog.
// VendorID scopes the list to one storefront's own products, inactive included.
type ListProductsInput struct {
	VendorID   *uuid.UUID
	Filters    ProductListFilters
	Pagination pagination.Params
}
