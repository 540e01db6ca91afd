package product

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
)

func TestCreateProductRequiresApprovedVendor(t *testing.T) {
	vendor := approvedVendor()
	vendor.Status = enums.VendorStatusPending
	svc := mustService(t, newStubRepo(), &stubVendorLoader{vendor: vendor})

	_, err := svc.CreateProduct(context.Background(), vendor.ID, validCreateInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateProductValidation(t *testing.T) {
	vendor := approvedVendor()
	svc := mustService(t, newStubRepo(), &stubVendorLoader{vendor: vendor})

	cases := map[string]CreateProductInput{
		"blank name":     {Name: " ", Category: "coffee", PriceCents: 100},
		"blank category": {Name: "Beans", Category: "", PriceCents: 100},
		"zero price":     {Name: "Beans", Category: "coffee", PriceCents: 0},
		"negative stock": {Name: "Beans", Category: "coffee", PriceCents: 100, Stock: -1},
		"sale >= price":  {Name: "Beans", Category: "coffee", PriceCents: 100, SalePriceCents: intPtr(100)},
	}
	for name, input := range cases {
		_, err := svc.CreateProduct(context.Background(), vendor.ID, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestCreateProductGeneratesSlug(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	dto, err := svc.CreateProduct(context.Background(), vendor.ID, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "single-origin-beans" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if dto.VendorID != vendor.ID {
		t.Fatal("vendor mismatch")
	}
}

func TestCreateProductSuffixesTakenSlug(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	repo.bySlug["single-origin-beans"] = &models.Product{ID: uuid.New(), Slug: "single-origin-beans"}
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	dto, err := svc.CreateProduct(context.Background(), vendor.ID, validCreateInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Slug != "single-origin-beans-2" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
}

func TestUpdateProductRejectsForeignVendor(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	other := uuid.New()
	existing := baseProduct(other)
	repo.byID[existing.ID] = existing
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	_, err := svc.UpdateProduct(context.Background(), vendor.ID, existing.ID, UpdateProductInput{Stock: intPtr(5)})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateProductAppliesPartialChanges(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	existing := baseProduct(vendor.ID)
	repo.byID[existing.ID] = existing
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	sale := 150
	dto, err := svc.UpdateProduct(context.Background(), vendor.ID, existing.ID, UpdateProductInput{SalePriceCents: &sale})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.SalePrice == nil || dto.SalePrice.Cents != 150 {
		t.Fatalf("expected sale price applied, got %+v", dto.SalePrice)
	}
	if dto.EffectivePrice.Cents != 150 {
		t.Fatalf("expected effective price 150, got %d", dto.EffectivePrice.Cents)
	}
	if dto.Price.Cents != int64(existing.PriceCents) {
		t.Fatal("list price should be untouched")
	}
}

func TestUpdateProductClearSalePrice(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	existing := baseProduct(vendor.ID)
	sale := 150
	existing.SalePriceCents = &sale
	repo.byID[existing.ID] = existing
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	dto, err := svc.UpdateProduct(context.Background(), vendor.ID, existing.ID, UpdateProductInput{ClearSalePrice: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.SalePrice != nil {
		t.Fatal("expected sale price cleared")
	}
	if dto.EffectivePrice.Cents != int64(existing.PriceCents) {
		t.Fatal("effective price should fall back to list price")
	}
}

func TestGetDetailHidesInactiveProducts(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	existing := baseProduct(vendor.ID)
	existing.IsActive = false
	repo.byID[existing.ID] = existing
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	_, err := svc.GetDetail(context.Background(), existing.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBrowseIgnoresVendorScoping(t *testing.T) {
	vendor := approvedVendor()
	repo := newStubRepo()
	svc := mustService(t, repo, &stubVendorLoader{vendor: vendor})

	scope := uuid.New()
	if _, err := svc.Browse(context.Background(), ListProductsInput{VendorID: &scope}); err != nil {
		t.Fatalf("browse: %v", err)
	}
	if repo.lastQuery.VendorID != nil {
		t.Fatal("public browse must not scope by vendor")
	}
}

func mustService(t *testing.T, repo catalogRepository, vendors vendorLoader) Service {
	t.Helper()
	svc, err := NewService(repo, vendors)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validCreateInput() CreateProductInput {
	return CreateProductInput{
		Name:       "Single Origin Beans",
		Category:   "coffee",
		PriceCents: 1899,
		Stock:      10,
		IsActive:   true,
	}
}

func approvedVendor() *models.Vendor {
	return &models.Vendor{
		ID:     uuid.New(),
		Name:   "Blue Bottle Goods",
		Slug:   "blue-bottle-goods",
		Status: enums.VendorStatusApproved,
	}
}

func baseProduct(vendorID uuid.UUID) *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		VendorID:   vendorID,
		Name:       "Single Origin Beans",
		Slug:       "single-origin-beans",
		Category:   "coffee",
		PriceCents: 1899,
		Stock:      10,
		IsActive:   true,
	}
}

func intPtr(v int) *int { return &v }

type stubRepo struct {
	byID      map[uuid.UUID]*models.Product
	bySlug    map[string]*models.Product
	lastQuery ListProductsInput
	err       error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		byID:   map[uuid.UUID]*models.Product{},
		bySlug: map[string]*models.Product{},
	}
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p, ok := s.byID[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindBySlug(_ context.Context, slug string) (*models.Product, error) {
	if p, ok := s.bySlug[slug]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	product.ID = uuid.New()
	s.byID[product.ID] = product
	s.bySlug[product.Slug] = product
	return product, nil
}

func (s *stubRepo) UpdateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.byID[product.ID] = product
	return product, nil
}

func (s *stubRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	delete(s.byID, id)
	return s.err
}

func (s *stubRepo) GetProductDetail(_ context.Context, id uuid.UUID) (*models.Product, *VendorSummary, error) {
	p, ok := s.byID[id]
	if !ok {
		return nil, nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, &VendorSummary{ID: p.VendorID}, nil
}

func (s *stubRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]models.Product, error) {
	var out []models.Product
	for _, p := range s.byID {
		if p.VendorID == vendorID {
			out = append(out, *p)
		}
	}
	return out, s.err
}

func (s *stubRepo) ListProductSummaries(_ context.Context, query ListProductsInput) (*ProductListResult, error) {
	s.lastQuery = query
	return &ProductListResult{}, s.err
}

type stubVendorLoader struct {
	vendor *models.Vendor
	err    error
}

func (s *stubVendorLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.vendor == nil || s.vendor.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.vendor
	return &copied, nil
}
