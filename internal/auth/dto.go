package auth

import "github.com/angelmondragon/salonbook-backend/pkg/enums"

// LoginRequest carries the owner credentials for one tenant.
type LoginRequest struct {
	Tenant   string `json:"tenant" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// PlatformLoginRequest carries the platform operator password.
type PlatformLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// RefreshRequest pairs the previous access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LoginResponse contains the token pair produced by a successful login or refresh.
type LoginResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	Role         enums.ActorRole `json:"role"`
	Tenant       string          `json:"tenant,omitempty"`
}
