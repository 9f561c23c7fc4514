// Package gateway is the HTTP edge: it assigns or propagates the trace id,
// records an audit event for every request, and reverse-proxies to the
// backing services with a circuit breaker per upstream.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Syafiq-lab/library-management-be/config"
	apperrors "github.com/Syafiq-lab/library-management-be/errors"
	"github.com/Syafiq-lab/library-management-be/logger"
	"github.com/Syafiq-lab/library-management-be/resilience"
	"github.com/Syafiq-lab/library-management-be/server"
)

// Route maps a path prefix to an upstream service.
type Route struct {
	// Name identifies the upstream in logs and error responses.
	Name string `mapstructure:"name"`
	// Prefix is the path prefix forwarded to the upstream, e.g. /api/auth.
	Prefix string `mapstructure:"prefix"`
	// URL is the upstream base URL.
	URL string `mapstructure:"url"`
}

type upstream struct {
	name    string
	proxy   *httputil.ReverseProxy
	breaker *resilience.CircuitBreaker
}

// Gateway reverse-proxies requests to upstream services.
type Gateway struct {
	upstreams map[string]*upstream
	routes    []Route
	log       *logger.Logger
}

type proxyErrKey struct{}

// New builds a gateway for the given routes. Each upstream gets its own
// breaker so one failing service does not shed traffic for the others.
func New(routes []Route, breakerCfg config.Breaker, log *logger.Logger) (*Gateway, error) {
	g := &Gateway{
		upstreams: make(map[string]*upstream, len(routes)),
		routes:    routes,
		log:       log.WithComponent("gateway"),
	}
	for _, route := range routes {
		target, err := url.Parse(route.URL)
		if err != nil {
			return nil, fmt.Errorf("gateway: route %s: %w", route.Name, err)
		}
		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			if capture, ok := r.Context().Value(proxyErrKey{}).(*error); ok {
				*capture = err
			}
		}
		cfg := resilience.BreakerConfigFrom(route.Name, breakerCfg)
		cfg.OnStateChange = g.logStateChange
		g.upstreams[route.Prefix] = &upstream{
			name:    route.Name,
			proxy:   proxy,
			breaker: resilience.NewCircuitBreaker(cfg),
		}
	}
	return g, nil
}

// RegisterRoutes mounts one wildcard handler per configured prefix.
func (g *Gateway) RegisterRoutes(r gin.IRouter) {
	for prefix, u := range g.upstreams {
		handler := g.forward(u)
		r.Any(prefix, handler)
		r.Any(prefix+"/*rest", handler)
	}
}

// BreakerState reports the breaker state for the named upstream.
func (g *Gateway) BreakerState(prefix string) (resilience.State, bool) {
	u, ok := g.upstreams[prefix]
	if !ok {
		return 0, false
	}
	return u.breaker.State(), true
}

// forward proxies the request through the upstream's breaker. Transport
// failures count against the breaker; an open circuit short-circuits to a
// 503 without touching the upstream.
func (g *Gateway) forward(u *upstream) gin.HandlerFunc {
	return func(c *gin.Context) {
		var proxyErr error
		err := u.breaker.Execute(func() error {
			ctx := context.WithValue(c.Request.Context(), proxyErrKey{}, &proxyErr)
			u.proxy.ServeHTTP(c.Writer, c.Request.WithContext(ctx))
			return proxyErr
		})
		if err != nil {
			if !c.Writer.Written() {
				server.RespondWithError(c, apperrors.DependencyUnavailable(u.name).WithCause(err))
			}
			c.Abort()
		}
	}
}

func (g *Gateway) logStateChange(name string, from, to resilience.State) {
	g.log.Warn("circuit breaker state change", logger.Fields(
		"breaker", name,
		"from", from.String(),
		"to", to.String(),
	))
}
