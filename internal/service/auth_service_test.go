package service

import (
	"testing"
	"time"

	"github.com/stemsi/coursemart-backend/internal/config"
)

func TestIssueAndValidateToken(t *testing.T) {
	auth := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})

	token, err := auth.IssueToken(12, RoleInstructor)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 12 || claims.Role != RoleInstructor || claims.Subject != "12" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour})
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	auth := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: -time.Minute})

	token, err := auth.IssueToken(3, RoleStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := auth.ValidateToken(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestIssueTokenRejectsBadInput(t *testing.T) {
	auth := NewAuthService(&config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour})

	if _, err := auth.IssueToken(0, RoleStudent); err == nil {
		t.Fatal("expected error for missing user id")
	}
	if _, err := auth.IssueToken(1, Role("admin")); err == nil {
		t.Fatal("expected error for unknown role")
	}
}
