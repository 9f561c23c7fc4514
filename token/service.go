// Package token issues and validates the compact signed tokens shared by
// every service in the deployment. Tokens are HMAC-SHA256 JWTs carrying the
// subject, the role-prefixed authorities, and a "typ" claim on refresh
// tokens. Validation is a pure function of the token string, the shared
// secret, and the clock: no store is consulted on the hot path.
package token

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/Syafiq-lab/library-management-be/config"
)

const refreshTypeClaim = "refresh"

// Service signs and verifies access and refresh tokens.
type Service struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	rolesClaim string
	now        func() time.Time
}

// Option configures the token service.
type Option func(*Service)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a token service from the shared security configuration.
func NewService(sec config.Security, opts ...Option) (*Service, error) {
	sec.ApplyDefaults()
	if err := sec.Validate(); err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	s := &Service{
		key:        keyBytes(sec.JWT.Secret),
		accessTTL:  sec.JWT.AccessTokenTTL,
		refreshTTL: sec.JWT.RefreshTokenTTL,
		rolesClaim: sec.RolesClaim,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// keyBytes derives the HMAC key material from the configured secret.
// The secret may be configured as base64 or as raw text; both decode to the
// same effective key consistently across all services.
func keyBytes(secret string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil {
		return decoded
	}
	return []byte(secret)
}

// IssueAccess signs a short-lived access token for the principal.
func (s *Service) IssueAccess(p Principal) (string, error) {
	return s.issue(p, s.accessTTL, false)
}

// IssueRefresh signs a long-lived refresh token for the principal. The token
// carries typ=refresh so resource servers can reject it where an access
// token is required, and vice versa.
func (s *Service) IssueRefresh(p Principal) (string, error) {
	return s.issue(p, s.refreshTTL, true)
}

func (s *Service) issue(p Principal, ttl time.Duration, refresh bool) (string, error) {
	now := s.now()
	claims := gojwt.MapClaims{
		"sub":        p.Subject,
		"iat":        now.Unix(),
		"exp":        now.Add(ttl).Unix(),
		s.rolesClaim: p.Roles,
	}
	if refresh {
		claims["typ"] = refreshTypeClaim
	}

	signed, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token string and returns
// the principal it carries. Failures come back as ErrMalformed, ErrExpired,
// or ErrSignatureInvalid.
func (s *Service) Validate(tokenString string) (Principal, error) {
	claims := gojwt.MapClaims{}
	parsed, err := gojwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *gojwt.Token) (interface{}, error) { return s.key, nil },
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Principal{}, translateParseError(err)
	}
	if !parsed.Valid {
		return Principal{}, ErrMalformed
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Principal{}, ErrMalformed
	}

	return Principal{
		Subject: sub,
		Roles:   rolesFromClaim(claims[s.rolesClaim]),
		Active:  true,
	}, nil
}

// IsRefreshType reports whether the token carries the refresh typ claim.
// It introspects the claim without validating expiry; expiry and custody are
// the refresh-token store's concern on the rotation path.
func (s *Service) IsRefreshType(tokenString string) bool {
	claims := gojwt.MapClaims{}
	if _, _, err := gojwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	typ, _ := claims["typ"].(string)
	return typ == refreshTypeClaim
}

// AccessTTL returns the configured access-token lifetime.
func (s *Service) AccessTTL() time.Duration { return s.accessTTL }

// RefreshTTL returns the configured refresh-token lifetime.
func (s *Service) RefreshTTL() time.Duration { return s.refreshTTL }

func translateParseError(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	default:
		return ErrMalformed
	}
}

func rolesFromClaim(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	roles := make([]string, 0, len(raw))
	for _, r := range raw {
		if s, ok := r.(string); ok {
			roles = append(roles, s)
		}
	}
	return roles
}
