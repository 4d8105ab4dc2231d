package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/logger"
	"github.com/you/consultsite/internal/metrics"
	"github.com/you/consultsite/internal/provider"
	"github.com/you/consultsite/internal/routes"
)

// Gin context keys set by the gatekeeper
const (
	ContextSession = "session"
	ContextJar     = "cookie_jar"
)

// Decision is the outcome of inspecting one request
type Decision struct {
	Session  *domain.Session
	Redirect string // empty means pass through
	Repaired bool
}

// Gatekeeper resolves the visitor's session on every in-scope page request
// and redirects between the login pages and the dashboard.
type Gatekeeper struct {
	provider     domain.AuthProvider
	cookiePrefix string
	metrics      *metrics.Metrics
}

// NewGatekeeper creates a gatekeeper. cookiePrefix is the session cookie
// name prefix used to spot cookies left over from an expired session.
func NewGatekeeper(p domain.AuthProvider, cookiePrefix string, m *metrics.Metrics) *Gatekeeper {
	if cookiePrefix == "" {
		cookiePrefix = provider.DefaultCookiePrefix
	}
	return &Gatekeeper{provider: p, cookiePrefix: cookiePrefix, metrics: m}
}

// Inspect decides what to do with a request for path
func (g *Gatekeeper) Inspect(ctx context.Context, path string, jar domain.CookieJar) Decision {
	var d Decision

	session, err := g.provider.GetSession(ctx, jar)
	if err != nil {
		logger.Warn("session lookup failed", zap.String("op", "get_session"), zap.String("path", path), zap.Error(err))
		session = nil
	}

	if session == nil && provider.HasSessionCookie(jar, g.cookiePrefix) {
		session = g.repair(ctx, jar)
		d.Repaired = session != nil
	}
	d.Session = session

	switch {
	case routes.IsProtected(path) && session == nil:
		d.Redirect = routes.LoginPath + "?redirect=" + url.QueryEscape(path)
	case routes.IsAuthOnly(path) && session != nil:
		d.Redirect = routes.DashboardPath
	}
	return d
}

// repair runs once per request: the cookies say a session exists but the
// provider did not return one, so try to resolve the user and refresh.
func (g *Gatekeeper) repair(ctx context.Context, jar domain.CookieJar) *domain.Session {
	if _, err := g.provider.GetUser(ctx, jar); err != nil {
		logger.Debug("session repair skipped", zap.String("op", "get_user"), zap.Error(err))
		g.countRepair(metrics.RepairFailed)
		return nil
	}

	session, err := g.provider.RefreshSession(ctx, jar)
	if err != nil || session == nil {
		if err != nil {
			logger.Warn("session repair failed", zap.String("op", "refresh_session"), zap.Error(err))
		}
		g.countRepair(metrics.RepairFailed)
		return nil
	}

	g.countRepair(metrics.RepairRefreshed)
	return session
}

// Handler returns the gin middleware. Cookies written while inspecting are
// sent with the response whether the request passes or is redirected.
func (g *Gatekeeper) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if !routes.InScope(path) {
			c.Next()
			return
		}

		jar := NewCookieJar(c.Request)
		d, ok := g.safeInspect(c.Request.Context(), path, jar)
		if !ok {
			// inspection blew up: serve the request as it came in
			jar.Discard()
			g.count(metrics.DecisionRecovered)
			c.Next()
			return
		}

		jar.Flush(c.Writer)
		if d.Redirect != "" {
			if d.Redirect == routes.DashboardPath {
				g.count(metrics.DecisionDashboard)
			} else {
				g.count(metrics.DecisionLogin)
			}
			c.Redirect(http.StatusTemporaryRedirect, d.Redirect)
			c.Abort()
			return
		}

		g.count(metrics.DecisionPass)
		c.Set(ContextJar, jar)
		if d.Session != nil {
			c.Set(ContextSession, d.Session)
		}
		c.Next()
	}
}

func (g *Gatekeeper) safeInspect(ctx context.Context, path string, jar domain.CookieJar) (d Decision, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("gatekeeper panic", zap.String("path", path), zap.Any("panic", r))
			ok = false
		}
	}()
	return g.Inspect(ctx, path, jar), true
}

func (g *Gatekeeper) count(decision string) {
	if g.metrics != nil {
		g.metrics.GatekeeperDecisions.WithLabelValues(decision).Inc()
	}
}

func (g *Gatekeeper) countRepair(result string) {
	if g.metrics != nil {
		g.metrics.SessionRepairs.WithLabelValues(result).Inc()
	}
}
