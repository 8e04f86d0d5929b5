package auth

import (
	"testing"

	"techblog/internal/config"
)

func TestTokenRoundTrip(t *testing.T) {
	config.GlobalConfig = config.Default()

	token, err := GenerateToken(42, "author")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "author" {
		t.Errorf("Role = %q, want author", claims.Role)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	config.GlobalConfig = config.Default()

	token, err := GenerateToken(1, "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := ParseToken(token + "x"); err == nil {
		t.Error("tampered token accepted")
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	config.GlobalConfig = config.Default()
	token, err := GenerateToken(1, "user")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	config.GlobalConfig.JWT.Secret = "a-different-secret"
	if _, err := ParseToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}
