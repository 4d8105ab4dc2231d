package middleware

import (
	"net/http"
	"sync"

	"github.com/you/consultsite/domain"
)

// CookieJar is the request-scoped domain.CookieJar. It starts from the
// request cookies; writes are overlaid on later reads and buffered until
// Flush copies them onto the response.
type CookieJar struct {
	mu      sync.Mutex
	request []*http.Cookie
	written []*http.Cookie
	flushed int // written[:flushed] are already on the response
}

// NewCookieJar creates a jar over the cookies sent with r
func NewCookieJar(r *http.Request) *CookieJar {
	return &CookieJar{request: r.Cookies()}
}

// Cookies implements domain.CookieJar
func (j *CookieJar) Cookies() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	byName := make(map[string]int)
	out := make([]*http.Cookie, 0, len(j.request)+len(j.written))
	for _, c := range j.request {
		if _, seen := byName[c.Name]; seen {
			continue
		}
		byName[c.Name] = len(out)
		out = append(out, c)
	}
	for _, c := range j.written {
		i, seen := byName[c.Name]
		switch {
		case c.MaxAge < 0 && seen:
			out[i] = nil
		case c.MaxAge < 0:
		case seen:
			out[i] = c
		default:
			byName[c.Name] = len(out)
			out = append(out, c)
		}
	}

	live := out[:0]
	for _, c := range out {
		if c != nil {
			live = append(live, c)
		}
	}
	return live
}

// Cookie implements domain.CookieJar
func (j *CookieJar) Cookie(name string) (*http.Cookie, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	for i := len(j.written) - 1; i >= 0; i-- {
		if c := j.written[i]; c.Name == name {
			if c.MaxAge < 0 {
				return nil, false
			}
			return c, true
		}
	}
	for _, c := range j.request {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// SetCookie implements domain.CookieJar
func (j *CookieJar) SetCookie(cookie *http.Cookie) {
	if cookie == nil {
		return
	}
	j.mu.Lock()
	j.written = append(j.written, cookie)
	j.mu.Unlock()
}

// Pending returns the cookies written but not yet flushed
func (j *CookieJar) Pending() []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]*http.Cookie(nil), j.written[j.flushed:]...)
}

// Flush writes pending cookies as Set-Cookie headers. Flushed cookies
// stay visible to later reads.
func (j *CookieJar) Flush(w http.ResponseWriter) {
	j.mu.Lock()
	pending := j.written[j.flushed:]
	j.flushed = len(j.written)
	j.mu.Unlock()

	for _, c := range pending {
		http.SetCookie(w, c)
	}
}

// Discard drops pending cookies without writing them
func (j *CookieJar) Discard() {
	j.mu.Lock()
	j.written = j.written[:j.flushed]
	j.mu.Unlock()
}

var _ domain.CookieJar = (*CookieJar)(nil)
