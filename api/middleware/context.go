package middleware

import (
	"context"

	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

type contextKey string

const (
	ctxTenant    contextKey = "tenant"
	ctxRole      contextKey = "actor_role"
	ctxSessionID contextKey = "session_id"
	ctxAuthScope contextKey = "auth_tenant"
)

// TenantFromContext returns the tenant namespace resolved from the route.
func TenantFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxTenant).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// authTenantFromContext is the tenant baked into the caller's token, empty for platform operators.
func authTenantFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAuthScope).(string); ok {
		return v
	}
	return ""
}

// WithTenant injects the tenant namespace into the context.
func WithTenant(ctx context.Context, slug string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenant, slug)
}

// WithActor injects the authenticated role and its token tenant into the context.
func WithActor(ctx context.Context, role enums.ActorRole, tenant string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxRole, role)
	return context.WithValue(ctx, ctxAuthScope, tenant)
}
