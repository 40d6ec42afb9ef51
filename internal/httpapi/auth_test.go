package httpapi

import (
	"testing"
	"time"

	"github.com/Vafelkin/mp-dashboard/internal/domain"
)

func TestLoginRoundTrip(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, "correct-horse")

	resp, err := auth.Login(domain.LoginRequest{Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresAt == "" {
		t.Fatalf("incomplete login response: %+v", resp)
	}
	if err := auth.ParseToken(resp.AccessToken); err != nil {
		t.Fatalf("issued token must validate: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, "correct-horse")

	if _, err := auth.Login(domain.LoginRequest{Password: "wrong"}); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := auth.Login(domain.LoginRequest{Password: ""}); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestLoginNotConfigured(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, "")

	if _, err := auth.Login(domain.LoginRequest{Password: "anything"}); err == nil {
		t.Fatal("login must be disabled without an admin password")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Hour, "pw")

	if err := auth.ParseToken("not-a-jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAuthManager("secret-one", time.Hour, "pw")
	verifier := NewAuthManager("secret-two", time.Hour, "pw")

	resp, err := issuer.Login(domain.LoginRequest{Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with a different secret must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := NewAuthManager("test-secret-key", time.Nanosecond, "pw")

	resp, err := auth.Login(domain.LoginRequest{Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := auth.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("expired token must be rejected")
	}
}
