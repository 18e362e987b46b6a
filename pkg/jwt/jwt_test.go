package jwt

import (
	"testing"
	"time"

	"hospital-scheduler/config"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s3cret", AccessExpiry: time.Hour})
	staffID := uuid.New()

	token, tokenID, err := svc.GenerateAccessToken(staffID, "admin@hospital.in", "admin")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.StaffID != staffID || claims.Role != "admin" || claims.TokenID != tokenID {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s3cret", AccessExpiry: time.Hour})
	other := NewJWTService(config.JWTConfig{Secret: "different", AccessExpiry: time.Hour})
	expired := NewJWTService(config.JWTConfig{Secret: "s3cret", AccessExpiry: -time.Minute})

	forged, _, _ := other.GenerateAccessToken(uuid.New(), "x@y.z", "admin")
	stale, _, _ := expired.GenerateAccessToken(uuid.New(), "x@y.z", "admin")

	for name, tok := range map[string]string{"wrong secret": forged, "expired": stale, "garbage": "not.a.jwt"} {
		if _, err := svc.ValidateToken(tok); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
