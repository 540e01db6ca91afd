package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/marketloop/marketloop-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	VendorID *uuid.UUID
	Role     enums.Role
	JTI      string
}

// AccessTokenClaims represents the typed JWT issued to clients. VendorID is
// present only for accounts operating a storefront.
type AccessTokenClaims struct {
	UserID   uuid.UUID   `json:"user_id"`
	VendorID *uuid.UUID  `json:"vendor_id,omitempty"`
	Role     enums.Role  `json:"role"`
	jwt.RegisteredClaims
}
