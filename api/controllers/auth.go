package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/salonbook-backend/api/middleware"
	"github.com/angelmondragon/salonbook-backend/api/responses"
	"github.com/angelmondragon/salonbook-backend/api/validators"
	"github.com/angelmondragon/salonbook-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/salonbook-backend/pkg/errors"
	"github.com/angelmondragon/salonbook-backend/pkg/logger"
)

var errAuthUnavailable = pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")

// authCall decodes a JSON body into Req, lets prepare fill in request-derived
// fields, and renders the session returned by call.
func authCall[Req any](
	svc auth.Service,
	logg *logger.Logger,
	prepare func(*http.Request, *Req) error,
	call func(context.Context, Req) (*auth.LoginResponse, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAuthUnavailable)
			return
		}
		var body Req
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if prepare != nil {
			if err := prepare(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		result, err := call(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthLogin exchanges the shared owner password for a token scoped to one tenant.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authCall(svc, logg, nil, func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
		return svc.Login(ctx, req)
	})
}

func PlatformAuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return authCall(svc, logg, nil, func(ctx context.Context, req auth.PlatformLoginRequest) (*auth.LoginResponse, error) {
		return svc.PlatformLogin(ctx, req)
	})
}

// AuthRefresh rotates the refresh token. The bearer access token may be
// expired but must still carry a valid signature.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	withBearer := func(r *http.Request, body *auth.RefreshRequest) error {
		token, err := middleware.BearerToken(r)
		body.AccessToken = token
		return err
	}
	return authCall(svc, logg, withBearer, func(ctx context.Context, req auth.RefreshRequest) (*auth.LoginResponse, error) {
		return svc.Refresh(ctx, req)
	})
}

// AuthLogout revokes the session tied to the presented access token.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, errAuthUnavailable)
			return
		}
		token, err := middleware.BearerToken(r)
		if err == nil {
			err = svc.Logout(r.Context(), token)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}
