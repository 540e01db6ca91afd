package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/api/middleware"
	"github.com/marketloop/marketloop-backend/api/responses"
	"github.com/marketloop/marketloop-backend/api/validators"
	product "github.com/marketloop/marketloop-backend/internal/products"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/logger"
)

type createProductRequest struct {
	Name           string  `json:"name" validate:"required"`
	Description    *string `json:"description,omitempty"`
	Category       string  `json:"category" validate:"required"`
	PriceCents     int     `json:"price_cents" validate:"required,min=1"`
	SalePriceCents *int    `json:"sale_price_cents,omitempty" validate:"omitempty,min=1"`
	Stock          int     `json:"stock" validate:"min=0"`
	ImageURL       *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

type updateProductRequest struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	PriceCents     *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	SalePriceCents *int    `json:"sale_price_cents,omitempty" validate:"omitempty,min=1"`
	ClearSalePrice bool    `json:"clear_sale_price,omitempty"`
	Stock          *int    `json:"stock,omitempty" validate:"omitempty,min=0"`
	ImageURL       *string `json:"image_url,omitempty" validate:"omitempty,url"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// MyVendorProducts lists the caller's whole catalog, inactive included.
func MyVendorProducts(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListVendorProducts(r.Context(), vendorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// CreateVendorProduct adds a listing to the caller's storefront.
func CreateVendorProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}
		dto, err := svc.CreateProduct(r.Context(), vendorID, product.CreateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			PriceCents:     payload.PriceCents,
			SalePriceCents: payload.SalePriceCents,
			Stock:          payload.Stock,
			ImageURL:       payload.ImageURL,
			IsActive:       isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateVendorProduct applies a partial update to an owned listing.
func UpdateVendorProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UpdateProduct(r.Context(), vendorID, productID, product.UpdateProductInput{
			Name:           payload.Name,
			Description:    payload.Description,
			Category:       payload.Category,
			PriceCents:     payload.PriceCents,
			SalePriceCents: payload.SalePriceCents,
			ClearSalePrice: payload.ClearSalePrice,
			Stock:          payload.Stock,
			ImageURL:       payload.ImageURL,
			IsActive:       payload.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteVendorProduct removes an owned listing.
func DeleteVendorProduct(svc product.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vendorID, err := vendorIDFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), vendorID, productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func vendorIDFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.VendorIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "vendor context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeForbidden, err, "invalid vendor context")
	}
	return id, nil
}
