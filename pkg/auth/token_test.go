package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/salonbook-backend/pkg/config"
	"github.com/angelmondragon/salonbook-backend/pkg/enums"
)

func testJWTConfig(minutes int) config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "salonbook",
		ExpirationMinutes: minutes,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig(30)
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		Tenant: "studio-bella",
		Role:   enums.ActorRoleOwner,
		JTI:    "access-1",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	if claims.Tenant != "studio-bella" {
		t.Fatalf("expected tenant studio-bella, got %q", claims.Tenant)
	}
	if claims.Role != enums.ActorRoleOwner {
		t.Fatalf("unexpected role %s", claims.Role)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti access-1, got %q", claims.ID)
	}
	if claims.Subject != "owner:studio-bella" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v (diff %v)", exp.UTC(), claims.ExpiresAt.UTC(), diff)
	}
}

func TestPlatformTokenDropsTenant(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Tenant: "studio-bella",
		Role:   enums.ActorRolePlatform,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}
	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Tenant != "" {
		t.Fatalf("platform token must not carry a tenant, got %q", claims.Tenant)
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
	if !claims.CanAccessTenant("any-tenant") {
		t.Fatal("platform role should reach every tenant")
	}
}

func TestCanAccessTenant(t *testing.T) {
	owner := &AccessTokenClaims{Tenant: "studio-bella", Role: enums.ActorRoleOwner}
	if !owner.CanAccessTenant("studio-bella") {
		t.Fatal("owner should reach own tenant")
	}
	if owner.CanAccessTenant("other") {
		t.Fatal("owner must not reach another tenant")
	}
	var nilClaims *AccessTokenClaims
	if nilClaims.CanAccessTenant("studio-bella") {
		t.Fatal("nil claims must not grant access")
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig(10)
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{
		Tenant: "studio-bella",
		Role:   enums.ActorRoleOwner,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err = ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig(15)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		Tenant: "studio-bella",
		Role:   enums.ActorRoleOwner,
		JTI:    "old",
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	if err != nil {
		t.Fatalf("allow expired parse: %v", err)
	}
	if claims.ID != "old" {
		t.Fatalf("expected jti old, got %q", claims.ID)
	}
}

func TestMintAccessTokenRejectsBadPayload(t *testing.T) {
	cfg := testJWTConfig(5)
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Tenant: "x"}); err == nil {
		t.Fatal("expected invalid role error")
	}
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{Role: enums.ActorRoleOwner}); err == nil {
		t.Fatal("expected owner without tenant to be rejected")
	}
}

func TestParseRejectsForeignIssuer(t *testing.T) {
	cfg := testJWTConfig(5)
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{Role: enums.ActorRolePlatform})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
	if _, err := ParseAccessTokenAllowExpired(other, token); err != errWrongIssuer {
		t.Fatalf("expected errWrongIssuer, got %v", err)
	}
}
