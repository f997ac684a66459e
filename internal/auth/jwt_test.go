package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", 1)
	userID := uuid.New()

	token, err := svc.Generate(userID, "qa@example.com", "quality_analyst")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "qa@example.com" || claims.Role != "quality_analyst" {
		t.Errorf("claims = %s / %s", claims.Email, claims.Role)
	}
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a", 1).Generate(uuid.New(), "a@example.com", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewJWTService("secret-b", 1).Validate(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestJWTExpired(t *testing.T) {
	svc := NewJWTService("test-secret", -1)
	token, err := svc.Generate(uuid.New(), "a@example.com", "admin")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := svc.Validate(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}

func TestJWTGarbage(t *testing.T) {
	if _, err := NewJWTService("s", 1).Validate("not.a.token"); err == nil {
		t.Fatal("garbage token was accepted")
	}
}
