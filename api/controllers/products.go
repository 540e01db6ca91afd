package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/marketloop/marketloop-backend/api/responses"
	"github.com/marketloop/marketloop-backend/api/validators"
	product "github.com/marketloop/marketloop-backend/internal/products"
	"github.com/marketloop/marketloop-backend/internal/vendors"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

// BrowseProducts serves the public catalog listing with filters and cursor
// pagination.
func BrowseProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Browse(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductDetail serves one active product with its vendor summary.
func ProductDetail(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.GetDetail(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// VendorStorefront lists a public vendor's active products, looked up by slug.
func VendorStorefront(vendorSvc vendors.Service, catalogSvc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug := strings.TrimSpace(chi.URLParam(r, "slug"))
		if slug == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vendor slug required"))
			return
		}

		vendor, err := vendorSvc.GetBySlug(r.Context(), slug)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := browseInputFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID := vendor.ID
		input.Filters.VendorID = &vendorID

		result, err := catalogSvc.Browse(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"vendor":      vendor,
			"products":    result.Products,
			"next_cursor": result.NextCursor,
		})
	}
}

func browseInputFromQuery(r *http.Request) (product.ListProductsInput, error) {
	q := r.URL.Query()
	input := product.ListProductsInput{
		Pagination: pagination.Params{Cursor: q.Get("cursor")},
	}

	limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return input, err
	}
	input.Pagination.Limit = limit

	if category := strings.TrimSpace(q.Get("category")); category != "" {
		input.Filters.Category = &category
	}
	input.Filters.Query = strings.TrimSpace(q.Get("q"))

	if raw := q.Get("price_min_cents"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "price_min_cents must be a non-negative integer")
		}
		input.Filters.PriceMinCents = &v
	}
	if raw := q.Get("price_max_cents"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "price_max_cents must be a non-negative integer")
		}
		input.Filters.PriceMaxCents = &v
	}
	if raw := q.Get("on_sale"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "on_sale must be a boolean")
		}
		input.Filters.OnSale = &v
	}
	if raw := q.Get("in_stock"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "in_stock must be a boolean")
		}
		input.Filters.InStock = &v
	}
	return input, nil
}
