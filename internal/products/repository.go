package product

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
	"github.com/marketloop/marketloop-backend/pkg/types"
)

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindManyByIDs loads the given products in one round trip. Missing IDs are
// simply absent from the result.
func (r *Repository) FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct removes a product by ID.
func (r *Repository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}).Error
}

// GetProductDetail fetches a product together with its vendor.
func (r *Repository) GetProductDetail(ctx context.Context, id uuid.UUID) (*models.Product, *VendorSummary, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Vendor").
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, nil, err
	}

	summary := &VendorSummary{ID: product.VendorID}
	if product.Vendor != nil {
		summary.Name = product.Vendor.Name
		summary.Slug = product.Vendor.Slug
	}
	return &product, summary, nil
}

// ListByVendor lists the products owned by a vendor, newest first.
func (r *Repository) ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

// DecrementStock atomically reduces stock, refusing to go below zero.
// Returns the number of rows updated: zero means insufficient stock.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	return res.RowsAffected, res.Error
}

// ListProductSummaries runs the cursor-paginated browse query. Public reads
// see only active products from approved vendors; a vendor scoping sees its
// whole catalog.
func (r *Repository) ListProductSummaries(ctx context.Context, query ListProductsInput) (*ProductListResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)
	if limitWithBuffer <= pageSize {
		limitWithBuffer = pageSize + 1
	}

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).
		Table("products p").
		Select(strings.Join([]string{
			"p.id",
			"p.vendor_id",
			"p.name",
			"p.slug",
			"p.category",
			"p.price_cents",
			"p.sale_price_cents",
			"p.stock",
			"p.image_url",
			"p.created_at",
			"v.name AS vendor_name",
		}, ", ")).
		Joins("JOIN vendors v ON v.id = p.vendor_id")

	filter := query.Filters
	if filter.VendorID != nil {
		qb = qb.Where("p.vendor_id = ?", *filter.VendorID)
	}
	if filter.Category != nil {
		qb = qb.Where("p.category = ?", *filter.Category)
	}
	if filter.PriceMinCents != nil {
		qb = qb.Where("COALESCE(p.sale_price_cents, p.price_cents) >= ?", *filter.PriceMinCents)
	}
	if filter.PriceMaxCents != nil {
		qb = qb.Where("COALESCE(p.sale_price_cents, p.price_cents) <= ?", *filter.PriceMaxCents)
	}
	if filter.OnSale != nil {
		if *filter.OnSale {
			qb = qb.Where("p.sale_price_cents IS NOT NULL")
		} else {
			qb = qb.Where("p.sale_price_cents IS NULL")
		}
	}
	if filter.InStock != nil && *filter.InStock {
		qb = qb.Where("p.stock > 0")
	}
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(p.name) LIKE ? OR LOWER(p.slug) LIKE ?)", pattern, pattern)
	}

	if query.VendorID != nil {
		qb = qb.Where("p.vendor_id = ?", *query.VendorID)
	} else {
		qb = qb.Where("p.is_active = ?", true)
		qb = qb.Where("v.status = ?", enums.VendorStatusApproved)
	}

	if cursor != nil {
		qb = qb.Where("(p.created_at < ?) OR (p.created_at = ? AND p.id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	qb = qb.Order("p.created_at DESC").Order("p.id DESC").Limit(limitWithBuffer)

	var records []productSummaryRecord
	if err := qb.Scan(&records).Error; err != nil {
		return nil, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > pageSize {
		resultRows = records[:pageSize]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	summaries := make([]ProductSummary, 0, len(resultRows))
	for _, record := range resultRows {
		summaries = append(summaries, record.toSummary())
	}

	return &ProductListResult{
		Products:   summaries,
		NextCursor: nextCursor,
	}, nil
}

type productSummaryRecord struct {
	ID             uuid.UUID
	VendorID       uuid.UUID
	VendorName     string
	Name           string
	Slug           string
	Category       string
	PriceCents     int
	SalePriceCents sql.NullInt64
	Stock          int
	ImageURL       sql.NullString
	CreatedAt      time.Time
}

func (r productSummaryRecord) toSummary() ProductSummary {
	effective := r.PriceCents
	if r.SalePriceCents.Valid {
		effective = int(r.SalePriceCents.Int64)
	}

	summary := ProductSummary{
		ID:             r.ID,
		VendorID:       r.VendorID,
		VendorName:     r.VendorName,
		Name:           r.Name,
		Slug:           r.Slug,
		Category:       r.Category,
		Price:          types.MoneyFromCents(int64(r.PriceCents)),
		EffectivePrice: types.MoneyFromCents(int64(effective)),
		Stock:          r.Stock,
		ImageURL:       nullStringPtr(r.ImageURL),
		CreatedAt:      r.CreatedAt,
	}
	if r.SalePriceCents.Valid {
		sale := types.MoneyFromCents(r.SalePriceCents.Int64)
		summary.SalePrice = &sale
	}
	return summary
}

func nullStringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

// FindBySlug loads a product by its public slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
