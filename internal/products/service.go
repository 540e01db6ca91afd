package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
)

// Service exposes catalog browse and vendor product management operations.
type Service interface {
	Browse(ctx context.Context, input ListProductsInput) (*ProductListResult, error)
	GetDetail(ctx context.Context, productID uuid.UUID) (*ProductDetailDTO, error)
	CreateProduct(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, vendorID, productID uuid.UUID) error
	ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]ProductDTO, error)
}

// CreateProductInput holds the validated payload to create a listing.
type CreateProductInput struct {
	Name           string
	Description    *string
	Category       string
	PriceCents     int
	SalePriceCents *int
	Stock          int
	ImageURL       *string
	IsActive       bool
}

// UpdateProductInput holds optional mutation values for a listing.
type UpdateProductInput struct {
	Name           *string
	Description    *string
	Category       *string
	PriceCents     *int
	SalePriceCents *int
	ClearSalePrice bool
	Stock          *int
	ImageURL       *string
	IsActive       *bool
}

type vendorLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
}

type catalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, *VendorSummary, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Product, error)
	ListProductSummaries(ctx context.Context, query ListProductsInput) (*ProductListResult, error)
}

type service struct {
	repo    catalogRepository
	vendors vendorLoader
}

// NewService constructs a product service instance.
func NewService(repo catalogRepository, vendors vendorLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if vendors == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	return &service{repo: repo, vendors: vendors}, nil
}

// Browse serves the public catalog. Vendor scoping is not honored here so
// inactive listings stay hidden.
func (s *service) Browse(ctx context.Context, input ListProductsInput) (*ProductListResult, error) {
	input.VendorID = nil
	result, err := s.repo.ListProductSummaries(ctx, input)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return result, nil
}

func (s *service) GetDetail(ctx context.Context, productID uuid.UUID) (*ProductDetailDTO, error) {
	model, summary, err := s.repo.GetProductDetail(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !model.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	detail := &ProductDetailDTO{Product: *FromModel(model)}
	if summary != nil {
		detail.Vendor = *summary
	}
	return detail, nil
}

func (s *service) CreateProduct(ctx context.Context, vendorID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if err := s.ensureApprovedVendor(ctx, vendorID); err != nil {
		return nil, err
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, input.Name)
	if err != nil {
		return nil, err
	}

	model := &models.Product{
		VendorID:       vendorID,
		Name:           strings.TrimSpace(input.Name),
		Slug:           slug,
		Description:    input.Description,
		Category:       strings.ToLower(strings.TrimSpace(input.Category)),
		PriceCents:     input.PriceCents,
		SalePriceCents: input.SalePriceCents,
		Stock:          input.Stock,
		ImageURL:       input.ImageURL,
		IsActive:       input.IsActive,
	}

	created, err := s.repo.CreateProduct(ctx, model)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) UpdateProduct(ctx context.Context, vendorID, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	model, err := s.loadOwnedProduct(ctx, vendorID, productID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name required")
		}
		model.Name = name
	}
	if input.Description != nil {
		model.Description = input.Description
	}
	if input.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*input.Category))
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category required")
		}
		model.Category = category
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		model.PriceCents = *input.PriceCents
	}
	if input.ClearSalePrice {
		model.SalePriceCents = nil
	} else if input.SalePriceCents != nil {
		model.SalePriceCents = input.SalePriceCents
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		model.Stock = *input.Stock
	}
	if input.ImageURL != nil {
		model.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		model.IsActive = *input.IsActive
	}

	if model.SalePriceCents != nil && *model.SalePriceCents >= model.PriceCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price must be below the list price")
	}

	updated, err := s.repo.UpdateProduct(ctx, model)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(updated), nil
}

func (s *service) DeleteProduct(ctx context.Context, vendorID, productID uuid.UUID) error {
	if _, err := s.loadOwnedProduct(ctx, vendorID, productID); err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ListVendorProducts(ctx context.Context, vendorID uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) loadOwnedProduct(ctx context.Context, vendorID, productID uuid.UUID) (*models.Product, error) {
	model, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if model.VendorID != vendorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another vendor")
	}
	return model, nil
}

func (s *service) ensureApprovedVendor(ctx context.Context, vendorID uuid.UUID) error {
	vendor, err := s.vendors.FindByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	if vendor.Status != enums.VendorStatusApproved {
		return pkgerrors.New(pkgerrors.CodeForbidden, "vendor is not approved to sell")
	}
	return nil
}

func validateCreateInput(input CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "category required")
	}
	if input.PriceCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.SalePriceCents != nil && *input.SalePriceCents >= input.PriceCents {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale price must be below the list price")
	}
	if input.Stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}
	return nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "product name must contain letters or digits")
	}

	slug := base
	for i := 2; i <= 50; i++ {
		_, err := s.repo.FindBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", pkgerrors.New(pkgerrors.CodeConflict, "could not derive a unique slug")
}
