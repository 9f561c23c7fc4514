package userclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Syafiq-lab/library-management-be/config"
	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/token"
)

func newTokens(t *testing.T) *token.Service {
	t.Helper()
	svc, err := token.NewService(config.Security{
		JWT: config.JWT{
			Secret:          "test-secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("token.NewService: %v", err)
	}
	return svc
}

func TestGetUserAuthorizesAndDecodes(t *testing.T) {
	tokens := newTokens(t)

	var gotAuth, gotTrace, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTrace = r.Header.Get(middleware.TraceIDHeader)
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(User{ID: 7, Email: "alice@example.com", Active: true})
	}))
	defer srv.Close()

	c := New(srv.URL, tokens, "inventoryservice", logger.NewDefault("test"))
	ctx := logger.ContextWithTraceID(context.Background(), "trace-client-1")

	u, err := c.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if u.ID != 7 || u.Email != "alice@example.com" || !u.Active {
		t.Errorf("user = %+v", u)
	}
	if gotPath != "/api/users/7" {
		t.Errorf("path = %q, want /api/users/7", gotPath)
	}
	if gotTrace != "trace-client-1" {
		t.Errorf("trace header = %q, want trace-client-1", gotTrace)
	}

	// The self-issued service token must validate against the shared secret
	// and carry the internal authority.
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("authorization header = %q", gotAuth)
	}
	p, err := tokens.Validate(strings.TrimPrefix(gotAuth, "Bearer "))
	if err != nil {
		t.Fatalf("Validate service token: %v", err)
	}
	if p.Subject != "inventoryservice" {
		t.Errorf("subject = %q, want inventoryservice", p.Subject)
	}
	if !p.HasAuthority(InternalAuthority) {
		t.Errorf("roles = %v, want %s", p.Roles, InternalAuthority)
	}
}

func TestGetUserNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, newTokens(t), "inventoryservice", logger.NewDefault("test"))
	_, err := c.GetUser(context.Background(), 404)
	if apperrors.CodeOf(err) != apperrors.ErrCodeNotFound {
		t.Errorf("GetUser = %v, want NOT_FOUND", err)
	}
}

func TestGetUserServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, newTokens(t), "inventoryservice", logger.NewDefault("test"))
	_, err := c.GetUser(context.Background(), 1)
	if apperrors.CodeOf(err) != apperrors.ErrCodeDependencyUnavailable {
		t.Errorf("GetUser = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
}

func TestGetUserTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := srv.URL
	srv.Close()

	c := New(deadURL, newTokens(t), "inventoryservice", logger.NewDefault("test"),
		WithTimeout(time.Second))
	_, err := c.GetUser(context.Background(), 1)
	if apperrors.CodeOf(err) != apperrors.ErrCodeDependencyUnavailable {
		t.Errorf("GetUser = %v, want DEPENDENCY_UNAVAILABLE", err)
	}
}
