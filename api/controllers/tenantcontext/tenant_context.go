package tenantcontext

import (
	"net/http"

	"github.com/angelmondragon/salonbook-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
)

// ResolveTenant returns the tenant namespace the request was scoped to by the router.
func ResolveTenant(r *http.Request) (string, error) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "tenant context required")
	}
	return tenant, nil
}
