// Package userclient calls the user service over HTTP with a self-issued
// service token, so service-to-service calls pass the same bearer
// authentication as user traffic.
package userclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/middleware"
	"github.com/Syafiq-lab/library-management-be/token"
)

// InternalAuthority is the role authority carried by service tokens.
const InternalAuthority = "ROLE_INTERNAL"

// User is the subset of the user record the client needs.
type User struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
	Active   bool   `json:"active"`
}

// Client fetches users from the user service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *token.Service
	subject    string
	log        *logger.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// New creates a client for the user service at baseURL. The subject names
// the calling service and becomes the sub claim of self-issued tokens.
func New(baseURL string, tokens *token.Service, subject string, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		tokens:     tokens,
		subject:    subject,
		log:        log.WithComponent("userclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetUser fetches a user by id. A 404 maps to NotFound; transport failures
// and 5xx responses map to DependencyUnavailable so callers can treat them
// as breaker failures.
func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	idStr := strconv.FormatUint(uint64(id), 10)
	endpoint, err := url.JoinPath(c.baseURL, "/api/users", idStr)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := c.authorize(req); err != nil {
		return nil, err
	}
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set(middleware.TraceIDHeader, traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WithContext(ctx).WithError(err).Warn("user service call failed")
		return nil, apperrors.DependencyUnavailable("user service").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var u User
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, apperrors.DependencyUnavailable("user service").WithCause(err)
		}
		return &u, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("user", idStr)
	case resp.StatusCode >= 500:
		err := fmt.Errorf("user service returned %d", resp.StatusCode)
		c.log.WithContext(ctx).WithError(err).Warn("user service call failed")
		return nil, apperrors.DependencyUnavailable("user service").WithCause(err)
	default:
		return nil, apperrors.Internal(fmt.Errorf("user service returned %d", resp.StatusCode))
	}
}

// authorize attaches a short-lived self-issued bearer token.
func (c *Client) authorize(req *http.Request) error {
	serviceToken, err := c.tokens.IssueAccess(token.Principal{
		Subject: c.subject,
		Roles:   []string{InternalAuthority},
		Active:  true,
	})
	if err != nil {
		return apperrors.Internal(err)
	}
	req.Header.Set("Authorization", "Bearer "+serviceToken)
	return nil
}
