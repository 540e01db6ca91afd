package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marketloop/marketloop-backend/pkg/db/models"
	"github.com/marketloop/marketloop-backend/pkg/enums"
	pkgerrors "github.com/marketloop/marketloop-backend/pkg/errors"
	"github.com/marketloop/marketloop-backend/pkg/pagination"
)

// UpdateProfileInput carries the editable profile fields. Nil fields are
// left untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UserListResult is one cursor page of accounts.
type UserListResult struct {
	Users      []UserDTO `json:"users"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

type userRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.User, error)
}

// Service covers profile self-service plus the staff account operations.
type Service interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)

	List(ctx context.Context, params pagination.Params) (*UserListResult, error)
	SetActive(ctx context.Context, targetID uuid.UUID, active bool) (*UserDTO, error)
	SetAdminRole(ctx context.Context, actorRole enums.Role, targetID uuid.UUID, grant bool) (*UserDTO, error)
}

type service struct {
	repo userRepository
}

// NewService builds a users service over the provided repository.
func NewService(repo userRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
		}
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name cannot be empty")
		}
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile")
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*UserListResult, error) {
	pageSize := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.List(ctx, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	result := &UserListResult{Users: make([]UserDTO, 0, len(rows))}
	hasMore := len(rows) > pageSize
	if hasMore {
		rows = rows[:pageSize]
	}
	for i := range rows {
		result.Users = append(result.Users, *FromModel(&rows[i]))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// SetActive suspends or restores an account. Staff accounts cannot be
// deactivated this way.
func (s *service) SetActive(ctx context.Context, targetID uuid.UUID, active bool) (*UserDTO, error) {
	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff accounts cannot be deactivated")
	}

	if err := s.repo.SetActive(ctx, targetID, active); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update account")
	}
	user.IsActive = active
	return FromModel(user), nil
}

// SetAdminRole grants or revokes admin. Only a superadmin may change staff
// access, and superadmin accounts themselves are never adjusted here.
func (s *service) SetAdminRole(ctx context.Context, actorRole enums.Role, targetID uuid.UUID, grant bool) (*UserDTO, error) {
	if actorRole != enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin access required")
	}

	user, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == enums.RoleSuperAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "superadmin accounts cannot be changed")
	}

	role := enums.RoleAdmin
	if !grant {
		role = enums.RoleUser
	}
	if err := s.repo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update role")
	}
	user.Role = role
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
