package provider

import (
	"net/http"
	"strings"
	"time"

	"github.com/you/consultsite/domain"
)

// DefaultCookiePrefix is the name prefix shared by both session cookies
const DefaultCookiePrefix = "sb-consultsite-auth-token"

// CookieOptions controls how session cookies are named and scoped
type CookieOptions struct {
	Prefix string
	Domain string
	Secure bool
}

func (o CookieOptions) prefix() string {
	if o.Prefix == "" {
		return DefaultCookiePrefix
	}
	return o.Prefix
}

// AccessName is the access token cookie name
func (o CookieOptions) AccessName() string { return o.prefix() + "-access" }

// RefreshName is the refresh token cookie name
func (o CookieOptions) RefreshName() string { return o.prefix() + "-refresh" }

func (o CookieOptions) build(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   o.Domain,
		MaxAge:   maxAge,
		Secure:   o.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// HasSessionCookie reports whether jar holds a non-empty cookie whose name
// starts with prefix. A match while no session resolves means the cookies
// are out of sync with the provider.
func HasSessionCookie(jar domain.CookieJar, prefix string) bool {
	if jar == nil {
		return false
	}
	if prefix == "" {
		prefix = DefaultCookiePrefix
	}
	for _, c := range jar.Cookies() {
		if strings.HasPrefix(c.Name, prefix) && c.Value != "" {
			return true
		}
	}
	return false
}

func cookieValue(jar domain.CookieJar, name string) string {
	if jar == nil {
		return ""
	}
	if c, ok := jar.Cookie(name); ok {
		return c.Value
	}
	return ""
}

func maxAge(until, now time.Time) int {
	secs := int(until.Sub(now).Seconds())
	if secs < 1 {
		return -1
	}
	return secs
}
