package vendors

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

type vendorRepository interface {
	Create(ctx context.Context, dto CreateVendorDTO) (*models.Vendor, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	FindBySlug(ctx context.Context, slug string) (*models.Vendor, error)
	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Vendor, error)
	ListByStatus(ctx context.Context, status enums.VendorStatus, limit int) ([]models.Vendor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.VendorStatus) error
}

type usersRepository interface {
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) error
}

// ApplyInput captures the fields of a vendor application.
type ApplyInput struct {
	Name        string
	Description *string
	LogoURL     *string
}

// UpdateProfileInput captures the vendor fields the owner may change.
type UpdateProfileInput struct {
	Name        *string
	Description *string
	LogoURL     *string
}

// Service exposes storefront lifecycle operations.
type Service interface {
	Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*VendorDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*VendorDTO, error)
	GetBySlug(ctx context.Context, slug string) (*VendorDTO, error)
	UpdateProfile(ctx context.Context, vendorID uuid.UUID, input UpdateProfileInput) (*VendorDTO, error)
	ListApproved(ctx context.Context, limit int) ([]VendorDTO, error)
	ListPending(ctx context.Context, limit int) ([]VendorDTO, error)
	Approve(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error)
	Suspend(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error)
}

type service struct {
	repo  vendorRepository
	users usersRepository
}

// NewService builds a vendor service with the provided repositories.
func NewService(repo vendorRepository, usersRepo usersRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: usersRepo}, nil
}

func (s *service) Apply(ctx context.Context, userID uuid.UUID, input ApplyInput) (*VendorDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
	}

	if existing, err := s.repo.FindByOwner(ctx, userID); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "account already operates a storefront")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing vendor")
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	vendor, err := s.repo.Create(ctx, CreateVendorDTO{
		OwnerUserID: userID,
		Name:        name,
		Slug:        slug,
		Description: input.Description,
		LogoURL:     input.LogoURL,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
	}
	return FromModel(vendor), nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(vendor), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*VendorDTO, error) {
	vendor, err := s.repo.FindBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	if vendor.Status != enums.VendorStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	return FromModel(vendor), nil
}

func (s *service) UpdateProfile(ctx context.Context, vendorID uuid.UUID, input UpdateProfileInput) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor name required")
		}
		vendor.Name = name
	}
	if input.Description != nil {
		vendor.Description = input.Description
	}
	if input.LogoURL != nil {
		vendor.LogoURL = input.LogoURL
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}
	return FromModel(vendor), nil
}

// ListApproved is the public storefront directory.
func (s *service) ListApproved(ctx context.Context, limit int) ([]VendorDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListByStatus(ctx, enums.VendorStatusApproved, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list approved vendors")
	}
	out := make([]VendorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListPending(ctx context.Context, limit int) ([]VendorDTO, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListByStatus(ctx, enums.VendorStatusPending, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending vendors")
	}
	out := make([]VendorDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Approve transitions a pending vendor to approved and promotes the owner
// account to the vendor role.
func (s *service) Approve(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status == enums.VendorStatusApproved {
		return FromModel(vendor), nil
	}

	if err := s.repo.UpdateStatus(ctx, vendorID, enums.VendorStatusApproved); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve vendor")
	}
	if err := s.users.UpdateRole(ctx, vendor.OwnerUserID, enums.RoleVendor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote owner")
	}

	vendor.Status = enums.VendorStatusApproved
	return FromModel(vendor), nil
}

func (s *service) Suspend(ctx context.Context, vendorID uuid.UUID) (*VendorDTO, error) {
	vendor, err := s.loadVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if vendor.Status == enums.VendorStatusSuspended {
		return FromModel(vendor), nil
	}

	if err := s.repo.UpdateStatus(ctx, vendorID, enums.VendorStatusSuspended); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "suspend vendor")
	}

	vendor.Status = enums.VendorStatusSuspended
	return FromModel(vendor), nil
}

func (s *service) loadVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}

var slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStripRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// uniqueSlug derives a slug from the name, suffixing a counter when taken.
func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slugify(name)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "vendor name must contain letters or digits")
	}

	slug := base
	for i := 2; i <= 20; i++ {
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
