package auth

import (
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	Tenant string
	Role   enums.ActorRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to owners and platform operators.
// Tenant is empty for platform tokens.
type AccessTokenClaims struct {
	Tenant string          `json:"tenant,omitempty"`
	Role   enums.ActorRole `json:"role"`
	jwt.RegisteredClaims
}

// CanAccessTenant reports whether the claims grant admin access to the tenant namespace.
func (c *AccessTokenClaims) CanAccessTenant(slug string) bool {
	if c == nil {
		return false
	}
	switch c.Role {
	case enums.ActorRolePlatform:
		return true
	case enums.ActorRoleOwner:
		return c.Tenant != "" && c.Tenant == slug
	}
	return false
}
