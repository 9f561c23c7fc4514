package config

import (
	"errors"
	"time"
)

// Security is the configuration surface shared by every service in the
// deployment. The token issuer, the bearer middleware, and the gateway all
// read the same secret and claim layout from here; none of it is hard-coded.
type Security struct {
	JWT JWT `yaml:"jwt" mapstructure:"jwt"`

	// RolesClaim is the JWT claim carrying the principal's authorities.
	RolesClaim string `yaml:"roles_claim" mapstructure:"roles_claim"`
	// RolePrefix is prepended to role names when building authorities.
	RolePrefix string `yaml:"role_prefix" mapstructure:"role_prefix"`
	// PermitAll lists route prefixes that bypass bearer authentication.
	PermitAll []string `yaml:"permit_all" mapstructure:"permit_all"`
}

// JWT configures token signing and lifetimes.
type JWT struct {
	// Secret is the shared HMAC key, either raw text or base64.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// AccessTokenTTL is the lifetime of access tokens.
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" mapstructure:"access_token_ttl"`
	// RefreshTokenTTL is the lifetime of refresh tokens.
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" mapstructure:"refresh_token_ttl"`
}

// Breaker configures the circuit breaker guarding peer-service calls.
type Breaker struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures int `yaml:"max_failures" mapstructure:"max_failures"`
	// Cooldown is how long the circuit stays open before a trial call.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// ApplyDefaults fills zero-value fields with the deployment defaults.
func (s *Security) ApplyDefaults() {
	if s.RolesClaim == "" {
		s.RolesClaim = "roles"
	}
	if s.RolePrefix == "" {
		s.RolePrefix = "ROLE_"
	}
	if s.JWT.AccessTokenTTL == 0 {
		s.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if s.JWT.RefreshTokenTTL == 0 {
		s.JWT.RefreshTokenTTL = 7 * 24 * time.Hour
	}
}

// Validate checks required security fields.
func (s *Security) Validate() error {
	if s.JWT.Secret == "" {
		return errors.New("security.jwt.secret is required")
	}
	if s.JWT.AccessTokenTTL <= 0 || s.JWT.RefreshTokenTTL <= 0 {
		return errors.New("security.jwt token TTLs must be positive")
	}
	return nil
}

// ApplyDefaults fills zero-value breaker fields.
func (b *Breaker) ApplyDefaults() {
	if b.MaxFailures <= 0 {
		b.MaxFailures = 5
	}
	if b.Cooldown <= 0 {
		b.Cooldown = 30 * time.Second
	}
}
