// Package middleware provides the Gin middleware shared by every service in
// the deployment: stateless bearer-token validation, role checks, trace-id
// propagation, request logging, and panic recovery. The auth middleware holds
// no state beyond the injected validator and allow-list, so the same
// construction is safe to reuse unmodified across service binaries.
package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/token"
	"github.com/Syafiq-lab/library-management-be/token/principalctx"
)

// principalKey is the gin context key holding the validated principal.
const principalKey = "auth.principal"

// Validator validates a bearer token string into a principal.
type Validator interface {
	Validate(tokenString string) (token.Principal, error)
}

// AuthConfig configures the bearer authentication middleware.
type AuthConfig struct {
	// Validator verifies tokens against the shared secret.
	Validator Validator
	// PermitAll lists URL path prefixes that bypass authentication.
	PermitAll []string
}

// Auth validates the Authorization bearer token on every request and
// installs the resulting principal for the rest of the handling chain.
// Requests matching the allow-list pass through untouched; everything else
// without a valid token is rejected with 401.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.PermitAll {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, apperrors.Unauthorized("Invalid authorization header format."))
			return
		}

		principal, err := cfg.Validator.Validate(parts[1])
		if err != nil {
			abortWithError(c, translateTokenError(err))
			return
		}

		c.Set(principalKey, principal)
		c.Request = c.Request.WithContext(principalctx.Set(c.Request.Context(), principal))
		c.Next()
	}
}

// RequireAuthority rejects requests whose principal lacks the given
// authority (e.g. "ROLE_ADMIN") with 403. It must run after Auth.
func RequireAuthority(authority string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFrom(c)
		if !ok {
			abortWithError(c, apperrors.Unauthorized(""))
			return
		}
		if !principal.HasAuthority(authority) {
			abortWithError(c, apperrors.Forbidden(""))
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal installed by Auth, if any.
func PrincipalFrom(c *gin.Context) (token.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return token.Principal{}, false
	}
	p, ok := v.(token.Principal)
	return p, ok
}

func translateTokenError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, token.ErrExpired):
		return apperrors.TokenExpired()
	case errors.Is(err, token.ErrSignatureInvalid):
		return apperrors.TokenSignatureInvalid()
	default:
		return apperrors.TokenMalformed()
	}
}

func abortWithError(c *gin.Context, appErr *apperrors.AppError) {
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}
