package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJar(cookies ...*http.Cookie) *CookieJar {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return NewCookieJar(req)
}

func TestCookieJar_ReadsRequestCookies(t *testing.T) {
	jar := newTestJar(&http.Cookie{Name: "a", Value: "1"}, &http.Cookie{Name: "b", Value: "2"})

	c, ok := jar.Cookie("a")
	require.True(t, ok)
	assert.Equal(t, "1", c.Value)

	_, ok = jar.Cookie("missing")
	assert.False(t, ok)
	assert.Len(t, jar.Cookies(), 2)
	assert.Empty(t, jar.Pending())
}

func TestCookieJar_WritesOverlayReads(t *testing.T) {
	jar := newTestJar(&http.Cookie{Name: "a", Value: "old"}, &http.Cookie{Name: "b", Value: "gone"})

	jar.SetCookie(&http.Cookie{Name: "a", Value: "new", MaxAge: 60})
	jar.SetCookie(&http.Cookie{Name: "b", MaxAge: -1})
	jar.SetCookie(&http.Cookie{Name: "c", Value: "added", MaxAge: 60})
	jar.SetCookie(nil)

	c, ok := jar.Cookie("a")
	require.True(t, ok)
	assert.Equal(t, "new", c.Value)

	_, ok = jar.Cookie("b")
	assert.False(t, ok, "deleted cookie is no longer visible")

	values := map[string]string{}
	for _, c := range jar.Cookies() {
		values[c.Name] = c.Value
	}
	assert.Equal(t, map[string]string{"a": "new", "c": "added"}, values)
	assert.Len(t, jar.Pending(), 3)
}

func TestCookieJar_FlushAndDiscard(t *testing.T) {
	jar := newTestJar()
	jar.SetCookie(&http.Cookie{Name: "a", Value: "1", MaxAge: 60})

	w := httptest.NewRecorder()
	jar.Flush(w)
	require.Len(t, w.Result().Cookies(), 1)
	assert.Empty(t, jar.Pending())

	// flushed writes are still visible
	c, ok := jar.Cookie("a")
	require.True(t, ok)
	assert.Equal(t, "1", c.Value)

	jar.SetCookie(&http.Cookie{Name: "b", Value: "2", MaxAge: 60})
	jar.Discard()
	assert.Empty(t, jar.Pending())
	_, ok = jar.Cookie("b")
	assert.False(t, ok)

	w = httptest.NewRecorder()
	jar.Flush(w)
	assert.Empty(t, w.Result().Cookies())
}
