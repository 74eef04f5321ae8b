package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/salonbook-backend/api/responses"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

const maxLoginBody = 64 << 10

// RateLimiterStore counts attempts inside a fixed window.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// AuthRateLimitPolicy throttles one login surface. A zero limit switches that
// dimension off; the tenant dimension reads "tenant" from the JSON body.
type AuthRateLimitPolicy struct {
	name        string
	window      time.Duration
	ipLimit     int
	tenantLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, tenantLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{name: name, window: window, ipLimit: ipLimit, tenantLimit: tenantLimit}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.tenantLimit > 0)
}

type rateBucket struct {
	dimension string
	value     string
	limit     int
}

func (p AuthRateLimitPolicy) buckets(r *http.Request, body []byte) []rateBucket {
	var out []rateBucket
	if p.ipLimit > 0 {
		if ip := clientIP(r); ip != "" {
			out = append(out, rateBucket{"ip", ip, p.ipLimit})
		}
	}
	if p.tenantLimit > 0 {
		if tenant := tenantFromBody(body); tenant != "" {
			out = append(out, rateBucket{"tenant", tenant, p.tenantLimit})
		}
	}
	return out
}

// AuthRateLimit rejects with 429 and Retry-After once any bucket of policy is
// exhausted. A failing counter store answers 503.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var body []byte
			if policy.tenantLimit > 0 && r.Body != nil {
				var err error
				body, err = io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
			}

			for _, b := range policy.buckets(r, body) {
				scope := b.dimension + ":" + policy.name + ":" + b.value
				allowed, count, err := store.FixedWindowAllow(ctx, scope, int64(b.limit), policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if !allowed {
					if logg != nil {
						logg.Warn(logg.WithFields(ctx, map[string]any{
							"policy":    policy.name,
							"dimension": b.dimension,
							"key":       b.value,
							"attempts":  count,
							"limit":     b.limit,
						}), "auth.rate_limit.blocked")
					}
					w.Header().Set("Retry-After", strconv.Itoa(int(policy.window.Round(time.Second).Seconds())))
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many login attempts"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts the first X-Forwarded-For hop; the API runs behind a proxy
// that overwrites the header.
func clientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func tenantFromBody(payload []byte) string {
	var body struct {
		Tenant string `json:"tenant"`
	}
	if json.Unmarshal(payload, &body) != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(body.Tenant))
}
