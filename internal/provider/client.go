// Package provider adapts the self-hosted auth backend to the
// domain.AuthProvider surface used by the web layer. Session state travels
// only through the cookie jar passed to each call.
package provider

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/you/consultsite/domain"
	"github.com/you/consultsite/internal/logger"
)

// Options configures a Client
type Options struct {
	Cookies    CookieOptions
	RefreshTTL time.Duration
}

// Client implements domain.AuthProvider
type Client struct {
	auth       domain.AuthService
	otp        domain.OTPService
	cookies    CookieOptions
	refreshTTL time.Duration
	now        func() time.Time
}

// NewClient creates a provider client over the auth and OTP services
func NewClient(auth domain.AuthService, otp domain.OTPService, opts Options) *Client {
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Client{
		auth:       auth,
		otp:        otp,
		cookies:    opts.Cookies,
		refreshTTL: opts.RefreshTTL,
		now:        time.Now,
	}
}

// Cookies returns the cookie options in use
func (c *Client) Cookies() CookieOptions { return c.cookies }

// SendOTP implements domain.AuthProvider
func (c *Client) SendOTP(ctx context.Context, phone string) error {
	if _, err := c.otp.Generate(ctx, phone); err != nil {
		return Classify("send_otp", err)
	}
	return nil
}

// VerifyOTP implements domain.AuthProvider
func (c *Client) VerifyOTP(ctx context.Context, phone, code string, jar domain.CookieJar) (*domain.AuthResult, error) {
	result, err := c.auth.VerifyPhone(ctx, phone, code)
	if err != nil {
		return nil, Classify("verify_otp", err)
	}
	if result != nil && result.Session != nil {
		c.writeSession(jar, result.Session)
	}
	return result, nil
}

// GetSession implements domain.AuthProvider. A missing or rejected access
// cookie is not an error; the session is simply absent.
func (c *Client) GetSession(ctx context.Context, jar domain.CookieJar) (*domain.Session, error) {
	token := cookieValue(jar, c.cookies.AccessName())
	if token == "" {
		return nil, nil
	}

	session, err := c.auth.Authenticate(ctx, token)
	if err != nil {
		perr := Classify("get_session", err)
		if noSession(perr) {
			return nil, nil
		}
		return nil, perr
	}
	session.RefreshToken = cookieValue(jar, c.cookies.RefreshName())
	return session, nil
}

// GetUser implements domain.AuthProvider. The access cookie is tried first;
// when it is missing or rejected the refresh cookie is used, so a lapsed
// access token can still be repaired.
func (c *Client) GetUser(ctx context.Context, jar domain.CookieJar) (*domain.User, error) {
	access := cookieValue(jar, c.cookies.AccessName())
	refresh := cookieValue(jar, c.cookies.RefreshName())
	if access == "" && refresh == "" {
		return nil, Classify("get_user", domain.ErrNoRefreshToken)
	}

	if access != "" {
		user, err := c.auth.ResolveUser(ctx, access)
		if err == nil {
			return user, nil
		}
		perr := Classify("get_user", err)
		if refresh == "" || !domain.IsProviderKind(perr, domain.ProviderUnauthorized) {
			return nil, perr
		}
	}

	user, err := c.auth.ResolveUser(ctx, refresh)
	if err != nil {
		return nil, Classify("get_user", err)
	}
	return user, nil
}

// RefreshSession implements domain.AuthProvider. A refresh token the
// backend no longer accepts is cleared from the jar.
func (c *Client) RefreshSession(ctx context.Context, jar domain.CookieJar) (*domain.Session, error) {
	token := cookieValue(jar, c.cookies.RefreshName())
	if token == "" {
		return nil, Classify("refresh_session", domain.ErrNoRefreshToken)
	}

	session, err := c.auth.Refresh(ctx, token)
	if err != nil {
		perr := Classify("refresh_session", err)
		if noSession(perr) {
			c.clearSession(jar)
		}
		return nil, perr
	}
	c.writeSession(jar, session)
	return session, nil
}

// SignOut implements domain.AuthProvider. Cookies are always cleared; a
// token the backend already rejects counts as signed out.
func (c *Client) SignOut(ctx context.Context, jar domain.CookieJar) error {
	token := cookieValue(jar, c.cookies.AccessName())
	if token == "" {
		token = cookieValue(jar, c.cookies.RefreshName())
	}
	c.clearSession(jar)
	if token == "" {
		return nil
	}

	if err := c.auth.Logout(ctx, token); err != nil {
		perr := Classify("sign_out", err)
		if noSession(perr) {
			logger.Debug("sign out with stale token", zap.Error(err))
			return nil
		}
		return perr
	}
	return nil
}

func (c *Client) writeSession(jar domain.CookieJar, session *domain.Session) {
	if jar == nil {
		return
	}
	now := c.now()
	jar.SetCookie(c.cookies.build(c.cookies.AccessName(), session.AccessToken, maxAge(session.ExpiresAt, now)))
	if session.RefreshToken != "" {
		jar.SetCookie(c.cookies.build(c.cookies.RefreshName(), session.RefreshToken, int(c.refreshTTL.Seconds())))
	}
}

func (c *Client) clearSession(jar domain.CookieJar) {
	if jar == nil {
		return
	}
	jar.SetCookie(c.cookies.build(c.cookies.AccessName(), "", -1))
	jar.SetCookie(c.cookies.build(c.cookies.RefreshName(), "", -1))
}

var _ domain.AuthProvider = (*Client)(nil)
