package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	pkgAuth "github.com/angelmondragon/salonbook-backend/pkg/auth"
	"github.com/angelmondragon/salonbook-backend/pkg/auth/session"
	"github.com/angelmondragon/salonbook-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

var errMissingCredentials = pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")

// BearerToken reads the Authorization header. The "Bearer" scheme is optional
// and case-insensitive.
func BearerToken(r *http.Request) (string, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if scheme, rest, ok := strings.Cut(raw, " "); ok && strings.EqualFold(scheme, "bearer") {
		raw = strings.TrimSpace(rest)
	}
	if raw == "" {
		return "", errMissingCredentials
	}
	return raw, nil
}

// Auth admits requests whose bearer token verifies and whose session is still
// open, then stores the actor in the request context.
func Auth(cfg config.JWTConfig, sessions session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	authenticate := func(r *http.Request) (*pkgAuth.AccessTokenClaims, error) {
		token, err := BearerToken(r)
		if err != nil {
			return nil, err
		}
		claims, err := pkgAuth.ParseAccessToken(cfg, token)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
		}
		if claims.ID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
		}
		if sessions == nil {
			return claims, nil
		}
		open, err := sessions.HasSession(r.Context(), claims.ID)
		switch {
		case err != nil:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		case !open:
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session revoked or expired")
		}
		return claims, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := authenticate(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			ctx := WithActor(r.Context(), claims.Role, claims.Tenant)
			ctx = context.WithValue(ctx, ctxSessionID, claims.ID)
			if logg != nil {
				ctx = logg.WithSessionID(logg.WithActorRole(ctx, claims.Role.String()), claims.ID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
