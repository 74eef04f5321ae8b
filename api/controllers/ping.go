package controllers

import (
	"net/http"

	"github.com/angelmondragon/salonbook-backend/api/middleware"
	"github.com/angelmondragon/salonbook-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// AdminPing echoes the resolved actor so clients can validate a stored token.
func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{
			"scope":  "admin",
			"status": "ok",
			"role":   string(middleware.RoleFromContext(r.Context())),
		}
		if tenant := middleware.TenantFromContext(r.Context()); tenant != "" {
			payload["tenant"] = tenant
		}
		responses.WriteSuccess(w, payload)
	}
}
