package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
)

func TestNewServiceRequiresRepos(t *testing.T) {
	if _, err := NewService(nil, &stubUsersRepo{}); err == nil {
		t.Fatal("expected error creating service without vendor repo")
	}
	if _, err := NewService(&stubVendorRepo{}, nil); err == nil {
		t.Fatal("expected error creating service without users repo")
	}
}

func TestApplyCreatesPendingVendor(t *testing.T) {
	repo := &stubVendorRepo{ownerErr: gorm.ErrRecordNotFound, slugErr: gorm.ErrRecordNotFound}
	svc := mustService(t, repo, &stubUsersRepo{})

	userID := uuid.New()
	dto, err := svc.Apply(context.Background(), userID, ApplyInput{Name: "Blue Bottle Goods"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if dto.Status != enums.VendorStatusPending {
		t.Fatalf("expected pending status, got %s", dto.Status)
	}
	if dto.Slug != "blue-bottle-goods" {
		t.Fatalf("unexpected slug %q", dto.Slug)
	}
	if dto.OwnerUserID != userID {
		t.Fatalf("owner mismatch")
	}
}

func TestApplyRejectsSecondStorefront(t *testing.T) {
	existing := baseVendor()
	repo := &stubVendorRepo{owner: existing}
	svc := mustService(t, repo, &stubUsersRepo{})

	_, err := svc.Apply(context.Background(), existing.OwnerUserID, ApplyInput{Name: "Another Shop"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestApplyRejectsBlankName(t *testing.T) {
	svc := mustService(t, &stubVendorRepo{ownerErr: gorm.ErrRecordNotFound}, &stubUsersRepo{})

	_, err := svc.Apply(context.Background(), uuid.New(), ApplyInput{Name: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBySlugHidesUnapprovedVendors(t *testing.T) {
	vendor := baseVendor()
	vendor.Status = enums.VendorStatusPending
	repo := &stubVendorRepo{bySlug: vendor}
	svc := mustService(t, repo, &stubUsersRepo{})

	_, err := svc.GetBySlug(context.Background(), vendor.Slug)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetBySlugReturnsApprovedVendor(t *testing.T) {
	vendor := baseVendor()
	repo := &stubVendorRepo{bySlug: vendor}
	svc := mustService(t, repo, &stubUsersRepo{})

	dto, err := svc.GetBySlug(context.Background(), vendor.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if dto.ID != vendor.ID {
		t.Fatalf("id mismatch")
	}
}

func TestApprovePromotesOwner(t *testing.T) {
	vendor := baseVendor()
	vendor.Status = enums.VendorStatusPending
	repo := &stubVendorRepo{byID: vendor}
	usersRepo := &stubUsersRepo{}
	svc := mustService(t, repo, usersRepo)

	dto, err := svc.Approve(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if usersRepo.updatedRole != enums.RoleVendor {
		t.Fatalf("expected owner promoted to vendor, got %q", usersRepo.updatedRole)
	}
	if usersRepo.updatedUserID != vendor.OwnerUserID {
		t.Fatalf("promoted wrong user")
	}
}

func TestApproveIsIdempotent(t *testing.T) {
	vendor := baseVendor()
	repo := &stubVendorRepo{byID: vendor}
	usersRepo := &stubUsersRepo{}
	svc := mustService(t, repo, usersRepo)

	dto, err := svc.Approve(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dto.Status != enums.VendorStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if usersRepo.updatedRole != "" {
		t.Fatal("already approved vendors should not trigger a role update")
	}
}

func TestSuspendVendor(t *testing.T) {
	vendor := baseVendor()
	repo := &stubVendorRepo{byID: vendor}
	svc := mustService(t, repo, &stubUsersRepo{})

	dto, err := svc.Suspend(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if dto.Status != enums.VendorStatusSuspended {
		t.Fatalf("expected suspended, got %s", dto.Status)
	}
}

func TestUpdateProfileAppliesPartialChanges(t *testing.T) {
	vendor := baseVendor()
	repo := &stubVendorRepo{byID: vendor}
	svc := mustService(t, repo, &stubUsersRepo{})

	desc := "hand-picked goods"
	dto, err := svc.UpdateProfile(context.Background(), vendor.ID, UpdateProfileInput{Description: &desc})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if dto.Description == nil || *dto.Description != desc {
		t.Fatalf("expected description updated, got %v", dto.Description)
	}
	if dto.Name != vendor.Name {
		t.Fatalf("name should be untouched")
	}
}

func TestListApprovedSkipsHiddenVendors(t *testing.T) {
	pending := baseVendor()
	pending.Status = enums.VendorStatusPending
	approved := baseVendor()
	repo := &stubVendorRepo{byID: approved, bySlug: pending}
	svc := mustService(t, repo, &stubUsersRepo{})

	items, err := svc.ListApproved(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListApproved: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 approved vendor, got %d", len(items))
	}
	if items[0].ID != approved.ID {
		t.Fatal("expected the approved vendor in the directory")
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Blue Bottle Goods":  "blue-bottle-goods",
		"  Fancy!! Stuff  ":  "fancy-stuff",
		"Ünicode Störefront": "nicode-st-refront",
	}
	for in, want := range cases {
		if got := slugify(in); got != want {
			t.Fatalf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func mustService(t *testing.T, repo vendorRepository, usersRepo usersRepository) Service {
	t.Helper()
	svc, err := NewService(repo, usersRepo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func baseVendor() *models.Vendor {
	return &models.Vendor{
		ID:          uuid.New(),
		OwnerUserID: uuid.New(),
		Name:        "Blue Bottle Goods",
		Slug:        "blue-bottle-goods",
		Status:      enums.VendorStatusApproved,
	}
}

type stubVendorRepo struct {
	byID     *models.Vendor
	bySlug   *models.Vendor
	owner    *models.Vendor
	ownerErr error
	slugErr  error
	err      error
}

func (s *stubVendorRepo) Create(_ context.Context, dto CreateVendorDTO) (*models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	vendor := dto.ToModel()
	vendor.ID = uuid.New()
	return vendor, nil
}

func (s *stubVendorRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.byID == nil || s.byID.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.byID
	return &copied, nil
}

func (s *stubVendorRepo) FindBySlug(_ context.Context, slug string) (*models.Vendor, error) {
	if s.slugErr != nil {
		return nil, s.slugErr
	}
	if s.bySlug == nil || s.bySlug.Slug != slug {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.bySlug
	return &copied, nil
}

func (s *stubVendorRepo) FindByOwner(_ context.Context, ownerID uuid.UUID) (*models.Vendor, error) {
	if s.ownerErr != nil {
		return nil, s.ownerErr
	}
	if s.owner == nil || s.owner.OwnerUserID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.owner
	return &copied, nil
}

func (s *stubVendorRepo) ListByStatus(_ context.Context, status enums.VendorStatus, _ int) ([]models.Vendor, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Vendor
	for _, v := range []*models.Vendor{s.byID, s.bySlug, s.owner} {
		if v != nil && v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *stubVendorRepo) Update(_ context.Context, vendor *models.Vendor) error {
	if s.err != nil {
		return s.err
	}
	if vendor == nil {
		return errors.New("nil vendor")
	}
	return nil
}

func (s *stubVendorRepo) UpdateStatus(_ context.Context, _ uuid.UUID, _ enums.VendorStatus) error {
	return s.err
}

type stubUsersRepo struct {
	updatedUserID uuid.UUID
	updatedRole   enums.Role
	err           error
}

func (s *stubUsersRepo) UpdateRole(_ context.Context, id uuid.UUID, role enums.Role) error {
	if s.err != nil {
		return s.err
	}
	s.updatedUserID = id
	s.updatedRole = role
	return nil
}
