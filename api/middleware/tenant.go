package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/pkg/db/models"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

// TenantParam is the chi URL parameter carrying the tenant slug.
const TenantParam = "tenant"

type TenantLookup interface {
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
}

// ResolveTenant loads the tenant named in the route and scopes the request to it.
// With requireActive set, suspended and cancelled storefronts are refused.
func ResolveTenant(lookup TenantLookup, logg *logger.Logger, requireActive bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if lookup == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "tenant lookup unavailable"))
				return
			}
			slug := strings.ToLower(strings.TrimSpace(chi.URLParam(r, TenantParam)))
			if slug == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tenant is required"))
				return
			}

			tenant, err := lookup.FindBySlug(ctx, slug)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve tenant"))
				return
			}
			if tenant == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "tenant not found"))
				return
			}
			if requireActive && (tenant.Status == enums.TenantStatusSuspended || tenant.Status == enums.TenantStatusCancelled) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant unavailable"))
				return
			}

			ctx = WithTenant(ctx, tenant.Slug)
			if logg != nil {
				ctx = logg.WithTenant(ctx, tenant.Slug)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenantAccess lets platform operators into every tenant and owners only into their own.
func RequireTenantAccess(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tenant := TenantFromContext(ctx)
			if tenant == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing"))
				return
			}
			switch RoleFromContext(ctx) {
			case enums.ActorRolePlatform:
			case enums.ActorRoleOwner:
				if authTenantFromContext(ctx) != tenant {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "tenant access denied"))
					return
				}
			default:
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
