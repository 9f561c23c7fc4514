// Package authn composes the token issuer, the refresh-token store, and the
// identity store into the four user-facing operations: register, login,
// refresh, and logout. Refresh rotation is the security core: every refresh
// both authenticates and replaces the presented token, bounding a leaked
// refresh token to a single use.
package authn

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Syafiq-lab/library-management-be/config"
	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/password"
	"github.com/Syafiq-lab/library-management-be/refreshtoken"
	"github.com/Syafiq-lab/library-management-be/token"
	"github.com/Syafiq-lab/library-management-be/users"
)

// TokenPair is the access/refresh pair returned by every successful
// authentication operation.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries the registration fields.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// LoginInput carries the login credentials. Username holds the email.
type LoginInput struct {
	Username string
	Password string
}

// Service implements the authentication workflows.
type Service struct {
	users      users.Store
	tokens     *token.Service
	refresh    refreshtoken.Store
	hasher     password.Hasher
	events     *users.EventPublisher
	rolePrefix string
	now        func() time.Time
	log        *logger.Logger
}

// Option configures the service.
type Option func(*Service)

// WithClock overrides the clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEvents publishes USER_CREATED on successful registration through the
// given publisher. Publishing is best-effort and never fails the request.
func WithEvents(events *users.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// NewService wires the authentication orchestrator.
func NewService(
	userStore users.Store,
	tokens *token.Service,
	refreshStore refreshtoken.Store,
	hasher password.Hasher,
	sec config.Security,
	log *logger.Logger,
	opts ...Option,
) *Service {
	sec.ApplyDefaults()
	s := &Service{
		users:      userStore,
		tokens:     tokens,
		refresh:    refreshStore,
		hasher:     hasher,
		rolePrefix: sec.RolePrefix,
		now:        time.Now,
		log:        log.WithComponent("authn"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new identity with the default role and returns a fresh
// token pair, behaving like a login on success.
func (s *Service) Register(ctx context.Context, in RegisterInput) (TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return TokenPair{}, apperrors.DatabaseError(err)
	}
	if exists {
		return TokenPair{}, apperrors.AlreadyExists("user")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return TokenPair{}, apperrors.Validation(err.Error())
	}

	u := &users.User{
		Email:        email,
		FullName:     in.FullName,
		PasswordHash: hash,
		Role:         users.DefaultRole,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return TokenPair{}, apperrors.DatabaseError(err)
	}

	s.log.WithContext(ctx).Info("user registered", logger.Fields("subject", email))
	s.events.UserCreated(u, logger.TraceIDFromContext(ctx))
	return s.issuePair(ctx, u)
}

// Login verifies the credential secret against the stored hash and issues a
// fresh token pair. Unknown user, wrong password, and inactive account all
// surface as the same InvalidCredentials error.
func (s *Service) Login(ctx context.Context, in LoginInput) (TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(in.Username))

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return TokenPair{}, apperrors.InvalidCredentials()
	}
	if err != nil {
		return TokenPair{}, apperrors.DatabaseError(err)
	}
	if !u.Active {
		return TokenPair{}, apperrors.InvalidCredentials()
	}
	if err := s.hasher.Verify(in.Password, u.PasswordHash); err != nil {
		return TokenPair{}, apperrors.InvalidCredentials()
	}

	s.log.WithContext(ctx).Info("login succeeded", logger.Fields("subject", email))
	return s.issuePair(ctx, u)
}

// Refresh rotates the presented refresh token: the stored record is revoked
// atomically, and a new access/refresh pair is issued for the same owner.
// A revoked, expired, or unknown token is rejected with one
// indistinguishable error.
func (s *Service) Refresh(ctx context.Context, refreshTokenString string) (TokenPair, error) {
	if !s.tokens.IsRefreshType(refreshTokenString) {
		return TokenPair{}, apperrors.WrongTokenType()
	}

	rec, err := s.refresh.ConsumeForRotation(ctx, refreshTokenString)
	switch {
	case errors.Is(err, refreshtoken.ErrNotFoundOrRevoked):
		// Possible reuse of a rotated token. Log it, but the response
		// must not reveal whether the token was live.
		s.log.WithContext(ctx).Warn("refresh token not found or already rotated")
		return TokenPair{}, apperrors.RefreshTokenInvalid()
	case errors.Is(err, refreshtoken.ErrExpired):
		return TokenPair{}, apperrors.RefreshTokenInvalid()
	case err != nil:
		return TokenPair{}, apperrors.DatabaseError(err)
	}

	u, err := s.users.FindByID(ctx, rec.OwnerID)
	if errors.Is(err, users.ErrNotFound) {
		return TokenPair{}, apperrors.RefreshTokenInvalid()
	}
	if err != nil {
		return TokenPair{}, apperrors.DatabaseError(err)
	}
	if !u.Active {
		return TokenPair{}, apperrors.RefreshTokenInvalid()
	}

	return s.issuePair(ctx, u)
}

// Logout revokes the presented refresh token. Already revoked or absent is
// success; the caller cannot distinguish "already logged out".
func (s *Service) Logout(ctx context.Context, refreshTokenString string) error {
	if err := s.refresh.Revoke(ctx, refreshTokenString); err != nil {
		return apperrors.DatabaseError(err)
	}
	return nil
}

// issuePair signs a new access and refresh token for the user and stores
// custody of the refresh token. The store insert happens after the rotation
// revoke has committed, never before.
func (s *Service) issuePair(ctx context.Context, u *users.User) (TokenPair, error) {
	principal := s.buildPrincipal(u)

	access, err := s.tokens.IssueAccess(principal)
	if err != nil {
		return TokenPair{}, apperrors.Internal(err)
	}
	refresh, err := s.tokens.IssueRefresh(principal)
	if err != nil {
		return TokenPair{}, apperrors.Internal(err)
	}

	rec := &refreshtoken.Record{
		TokenValue: refresh,
		OwnerID:    u.ID,
		ExpiresAt:  s.now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.refresh.Save(ctx, rec); err != nil {
		return TokenPair{}, apperrors.DatabaseError(err)
	}

	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// buildPrincipal derives the token principal from the stored user, applying
// the configured role prefix to form the authority.
func (s *Service) buildPrincipal(u *users.User) token.Principal {
	return token.Principal{
		Subject: u.Email,
		Roles:   []string{s.rolePrefix + u.Role},
		Active:  u.Active,
	}
}
