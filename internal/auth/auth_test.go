package auth

import (
	"strings"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateJWT(secret, "u-1", "Diego", "conductor", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT = %v", err)
	}
	if !strings.HasPrefix(token, "eyJ") {
		t.Errorf("token %q is not a compact JWS", token)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT = %v", err)
	}
	if claims.SubjectID != "u-1" || claims.Name != "Diego" || claims.Role != "conductor" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT([]byte("real"), "u-1", "Diego", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT = %v", err)
	}
	if _, err := ParseJWT([]byte("forged"), token); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
}

func TestParseJWTExpired(t *testing.T) {
	secret := []byte("test-secret")
	token, err := GenerateJWT(secret, "u-1", "Diego", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT = %v", err)
	}
	if _, err := ParseJWT(secret, token); err == nil {
		t.Error("expired token must be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secreta1")
	if err != nil {
		t.Fatalf("HashPassword = %v", err)
	}
	if !CheckPasswordHash("secreta1", hash) {
		t.Error("correct password rejected")
	}
	if CheckPasswordHash("secreta2", hash) {
		t.Error("wrong password accepted")
	}
}
