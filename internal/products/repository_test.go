package product

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS vendors (
  id TEXT PRIMARY KEY,
  owner_user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT,
  logo_url TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  vendor_id TEXT NOT NULL,
  name TEXT NOT NULL,
  slug TEXT NOT NULL,
  description TEXT,
  category TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL,
  sale_price_cents INTEGER,
  stock INTEGER NOT NULL DEFAULT 0,
  image_url TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func seedCatalogVendor(t *testing.T, db *gorm.DB, name string, status enums.VendorStatus) uuid.UUID {
	t.Helper()
	v := models.Vendor{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Name:        name,
		Slug:        name + "-" + uuid.NewString()[:8],
		Status:      status,
	}
	require.NoError(t, db.Create(&v).Error)
	return v.ID
}

type catalogSeed struct {
	vendorID  uuid.UUID
	name      string
	category  string
	price     int
	salePrice *int
	stock     int
	active    bool
	createdAt time.Time
}

func seedCatalogProduct(t *testing.T, db *gorm.DB, seed catalogSeed) uuid.UUID {
	t.Helper()
	p := models.Product{
		ID:         uuid.New(),
		VendorID:   seed.vendorID,
		Name:       seed.name,
		Slug:       seed.name + "-" + uuid.NewString()[:8],
		Category:   seed.category,
		PriceCents: seed.price,
		Stock:      seed.stock,
		IsActive:   seed.active,
		CreatedAt:  seed.createdAt,
	}
	if seed.salePrice != nil {
		p.SalePriceCents = seed.salePrice
	}
	require.NoError(t, db.Create(&p).Error)
	return p.ID
}

func TestRepositoryListSummariesPublicVisibility(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	approved := seedCatalogVendor(t, db, "Oak and Iron", enums.VendorStatusApproved)
	pending := seedCatalogVendor(t, db, "Unvetted Goods", enums.VendorStatusPending)
	now := time.Now().UTC().Truncate(time.Second)

	visible := seedCatalogProduct(t, db, catalogSeed{
		vendorID: approved, name: "walnut board", category: "kitchen",
		price: 4500, stock: 10, active: true, createdAt: now,
	})
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: approved, name: "retired board", category: "kitchen",
		price: 4500, stock: 10, active: false, createdAt: now,
	})
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: pending, name: "unvetted board", category: "kitchen",
		price: 4500, stock: 10, active: true, createdAt: now,
	})

	result, err := repo.ListProductSummaries(ctx, ListProductsInput{})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, visible, result.Products[0].ID)
	assert.Equal(t, "Oak and Iron", result.Products[0].VendorName)
}

func TestRepositoryListSummariesStorefrontFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := seedCatalogVendor(t, db, "First Shop", enums.VendorStatusApproved)
	second := seedCatalogVendor(t, db, "Second Shop", enums.VendorStatusApproved)
	now := time.Now().UTC().Truncate(time.Second)

	want := seedCatalogProduct(t, db, catalogSeed{
		vendorID: first, name: "first item", price: 1000, stock: 5, active: true, createdAt: now,
	})
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: second, name: "second item", price: 1000, stock: 5, active: true, createdAt: now,
	})

	result, err := repo.ListProductSummaries(ctx, ListProductsInput{
		Filters: ProductListFilters{VendorID: &first},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, want, result.Products[0].ID)

	// The storefront filter is a public view: hidden products stay hidden.
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: first, name: "hidden item", price: 1000, stock: 5, active: false, createdAt: now,
	})
	result, err = repo.ListProductSummaries(ctx, ListProductsInput{
		Filters: ProductListFilters{VendorID: &first},
	})
	require.NoError(t, err)
	assert.Len(t, result.Products, 1)
}

func TestRepositoryListSummariesOwnerScopeIncludesInactive(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := seedCatalogVendor(t, db, "Owner Shop", enums.VendorStatusPending)
	now := time.Now().UTC().Truncate(time.Second)

	seedCatalogProduct(t, db, catalogSeed{
		vendorID: owner, name: "draft item", price: 2000, stock: 0, active: false, createdAt: now,
	})
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: owner, name: "live item", price: 2000, stock: 3, active: true, createdAt: now.Add(-time.Minute),
	})

	result, err := repo.ListProductSummaries(ctx, ListProductsInput{VendorID: &owner})
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
}

func TestRepositoryListSummariesPriceAndSaleFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendor := seedCatalogVendor(t, db, "Sale Shop", enums.VendorStatusApproved)
	now := time.Now().UTC().Truncate(time.Second)

	sale := 1500
	discounted := seedCatalogProduct(t, db, catalogSeed{
		vendorID: vendor, name: "discounted", price: 3000, salePrice: &sale,
		stock: 5, active: true, createdAt: now,
	})
	seedCatalogProduct(t, db, catalogSeed{
		vendorID: vendor, name: "full price", price: 3000, stock: 5, active: true, createdAt: now,
	})

	onSale := true
	result, err := repo.ListProductSummaries(ctx, ListProductsInput{
		Filters: ProductListFilters{OnSale: &onSale},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, discounted, result.Products[0].ID)
	require.NotNil(t, result.Products[0].SalePrice)
	assert.Equal(t, int64(1500), result.Products[0].EffectivePrice.Cents)

	// Price filters compare the effective price, so the discounted item
	// falls under a 2000 cent ceiling while the full price one does not.
	maxPrice := 2000
	result, err = repo.ListProductSummaries(ctx, ListProductsInput{
		Filters: ProductListFilters{PriceMaxCents: &maxPrice},
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, discounted, result.Products[0].ID)
}

func TestRepositoryListSummariesPagination(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendor := seedCatalogVendor(t, db, "Paged Shop", enums.VendorStatusApproved)
	base := time.Now().UTC().Truncate(time.Second)

	for i := 0; i < 3; i++ {
		seedCatalogProduct(t, db, catalogSeed{
			vendorID: vendor, name: "item", price: 1000, stock: 1, active: true,
			createdAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}

	first, err := repo.ListProductSummaries(ctx, ListProductsInput{
		Pagination: pagination.Params{Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, first.Products, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListProductSummaries(ctx, ListProductsInput{
		Pagination: pagination.Params{Limit: 2, Cursor: first.NextCursor},
	})
	require.NoError(t, err)
	require.Len(t, second.Products, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, p := range append(first.Products, second.Products...) {
		seen[p.ID] = true
	}
	assert.Len(t, seen, 3)
}

func TestRepositoryGetProductDetailLoadsVendor(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendor := seedCatalogVendor(t, db, "Detail Shop", enums.VendorStatusApproved)
	productID := seedCatalogProduct(t, db, catalogSeed{
		vendorID: vendor, name: "detailed item", price: 1200, stock: 2, active: true,
		createdAt: time.Now().UTC(),
	})

	p, summary, err := repo.GetProductDetail(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, productID, p.ID)
	require.NotNil(t, summary)
	assert.Equal(t, vendor, summary.ID)
	assert.Equal(t, "Detail Shop", summary.Name)
}
