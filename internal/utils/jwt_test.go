package utils

import (
	"testing"

	"hospital-admin-server/internal/config"
	"hospital-admin-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:                 "test-secret",
		JWTRefreshSecret:          "test-refresh-secret",
		JWTExpirationMinutes:      15,
		JWTRefreshExpirationHours: 1,
	}
}

func TestGenerateAndValidateTokens(t *testing.T) {
	cfg := testConfig()
	user := &models.User{
		BaseModel: models.BaseModel{ID: "user-1"},
		Email:     "user@test.local",
		Role:      models.RoleDoctor,
		ProfileID: "doctor-1",
	}

	access, refresh, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if access == "" || refresh == "" || access == refresh {
		t.Fatal("expected a distinct token pair")
	}

	claims, err := ValidateToken(access, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != models.RoleDoctor || claims.ProfileID != "doctor-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	// Back-to-back issuance within the same second still yields distinct
	// refresh tokens, so rotation can always revoke the old one.
	_, refresh2, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if refresh2 == refresh {
		t.Error("expected consecutive refresh tokens to differ")
	}
	refreshClaims, err := ValidateToken(refresh, cfg.JWTRefreshSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if refreshClaims.ID == "" {
		t.Error("expected a token id on refresh claims")
	}

	// The refresh token is signed with the other secret.
	if _, err := ValidateToken(refresh, cfg.JWTSecret); err == nil {
		t.Error("expected refresh token to fail against the access secret")
	}
	if _, err := ValidateToken(refresh, cfg.JWTRefreshSecret); err != nil {
		t.Errorf("refresh token failed against its own secret: %v", err)
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	cfg := testConfig()
	user := &models.User{BaseModel: models.BaseModel{ID: "user-2"}, Role: models.RolePatient}

	access, _, err := GenerateTokens(user, cfg)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := ValidateToken(access, "wrong-secret"); err == nil {
		t.Error("expected rejection for a wrong secret")
	}
	if _, err := ValidateToken("not-a-token", cfg.JWTSecret); err == nil {
		t.Error("expected rejection for a malformed token")
	}

	expired := testConfig()
	expired.JWTExpirationMinutes = -1
	stale, _, err := GenerateTokens(user, expired)
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if _, err := ValidateToken(stale, cfg.JWTSecret); err == nil {
		t.Error("expected rejection for an expired token")
	}
}
