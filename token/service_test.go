package token

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/Syafiq-lab/library-management-be/config"
)

func testSecurity(secret string) config.Security {
	return config.Security{
		JWT: config.JWT{
			Secret:          secret,
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
}

func TestIssueAndValidateRoundTrip(t *testing.T) {
	svc, err := NewService(testSecurity("test-secret"))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	p := Principal{Subject: "alice@example.com", Roles: []string{"ROLE_USER"}, Active: true}
	tok, err := svc.IssueAccess(p)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	got, err := svc.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.Subject != p.Subject {
		t.Errorf("subject = %q, want %q", got.Subject, p.Subject)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "ROLE_USER" {
		t.Errorf("roles = %v, want [ROLE_USER]", got.Roles)
	}
	if !got.HasAuthority("ROLE_USER") {
		t.Error("HasAuthority(ROLE_USER) = false, want true")
	}
	if got.HasAuthority("ROLE_ADMIN") {
		t.Error("HasAuthority(ROLE_ADMIN) = true, want false")
	}
}

func TestValidateExpiredToken(t *testing.T) {
	now := time.Now()
	svc, err := NewService(testSecurity("test-secret"), WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tok, err := svc.IssueAccess(Principal{Subject: "bob@example.com"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	// Move the clock past the access TTL.
	now = now.Add(16 * time.Minute)

	_, err = svc.Validate(tok)
	if !errors.Is(err, ErrExpired) {
		t.Errorf("Validate after expiry = %v, want ErrExpired", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	issuer, _ := NewService(testSecurity("secret-one"))
	verifier, _ := NewService(testSecurity("secret-two"))

	tok, err := issuer.IssueAccess(Principal{Subject: "carol@example.com"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	_, err = verifier.Validate(tok)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Errorf("Validate with wrong secret = %v, want ErrSignatureInvalid", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc, _ := NewService(testSecurity("test-secret"))
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Validate(tok); !errors.Is(err, ErrMalformed) {
			t.Errorf("Validate(%q) = %v, want ErrMalformed", tok, err)
		}
	}
}

func TestSecretRepresentationsAgree(t *testing.T) {
	// The raw form must not itself be decodable base64, so the raw-configured
	// service keeps the literal bytes while the other decodes to them.
	raw := "secret!with#chars:not~base64"
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))

	rawSvc, err := NewService(testSecurity(raw))
	if err != nil {
		t.Fatalf("NewService(raw): %v", err)
	}
	encodedSvc, err := NewService(testSecurity(encoded))
	if err != nil {
		t.Fatalf("NewService(encoded): %v", err)
	}

	tok, err := rawSvc.IssueAccess(Principal{Subject: "dave@example.com"})
	if err != nil {
		t.Fatalf("IssueAccess(raw service): %v", err)
	}
	if _, err := encodedSvc.Validate(tok); err != nil {
		t.Errorf("base64-configured service rejected raw-issued token: %v", err)
	}

	tok, err = encodedSvc.IssueAccess(Principal{Subject: "dave@example.com"})
	if err != nil {
		t.Fatalf("IssueAccess(encoded service): %v", err)
	}
	if _, err := rawSvc.Validate(tok); err != nil {
		t.Errorf("raw-configured service rejected base64-issued token: %v", err)
	}
}

func TestRefreshTypeClaim(t *testing.T) {
	svc, _ := NewService(testSecurity("test-secret"))
	p := Principal{Subject: "erin@example.com", Roles: []string{"ROLE_USER"}}

	access, err := svc.IssueAccess(p)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	refresh, err := svc.IssueRefresh(p)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	if svc.IsRefreshType(access) {
		t.Error("IsRefreshType(access) = true, want false")
	}
	if !svc.IsRefreshType(refresh) {
		t.Error("IsRefreshType(refresh) = false, want true")
	}
	if svc.IsRefreshType("garbage") {
		t.Error("IsRefreshType(garbage) = true, want false")
	}
}

func TestIsRefreshTypeIgnoresExpiry(t *testing.T) {
	now := time.Now()
	svc, _ := NewService(testSecurity("test-secret"), WithClock(func() time.Time { return now }))

	refresh, err := svc.IssueRefresh(Principal{Subject: "frank@example.com"})
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	// Way past the refresh TTL: type introspection must still succeed,
	// expiry is the store's concern on the rotation path.
	now = now.Add(30 * 24 * time.Hour)
	if !svc.IsRefreshType(refresh) {
		t.Error("IsRefreshType(expired refresh) = false, want true")
	}
}

func TestConfigurableRolesClaim(t *testing.T) {
	sec := testSecurity("test-secret")
	sec.RolesClaim = "authorities"
	svc, err := NewService(sec)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tok, err := svc.IssueAccess(Principal{Subject: "gina@example.com", Roles: []string{"ROLE_ADMIN"}})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	got, err := svc.Validate(tok)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "ROLE_ADMIN" {
		t.Errorf("roles = %v, want [ROLE_ADMIN]", got.Roles)
	}
}

func TestValidateMissingSubject(t *testing.T) {
	svc, _ := NewService(testSecurity("test-secret"))
	tok, err := svc.IssueAccess(Principal{})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := svc.Validate(tok); !errors.Is(err, ErrMalformed) {
		t.Errorf("Validate without subject = %v, want ErrMalformed", err)
	}
}
