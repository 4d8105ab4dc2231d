package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsProtected(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/dashboard", true},
		{"/dashboard/", true},
		{"/dashboard/account", true},
		{"/dashboard/chats/42", true},
		{"/dashboards", false},
		{"/dashboard-old", false},
		{"/", false},
		{"/login", false},
		{"/insights/dashboard", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsProtected(tt.path))
		})
	}
}

func TestIsAuthOnly(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/login", true},
		{"/signup", true},
		{"/login/", false},
		{"/login/help", false},
		{"/signups", false},
		{"/dashboard", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAuthOnly(tt.path))
		})
	}
}

func TestClassify_Exclusive(t *testing.T) {
	paths := []string{
		"/", "/contact", "/legal/privacy", "/insights", "/insights/page/2",
		"/dashboard", "/dashboard/account", "/dashboard/chats",
		"/login", "/signup", "/logout", "",
	}

	for _, p := range paths {
		protected := IsProtected(p)
		authOnly := IsAuthOnly(p)
		assert.False(t, protected && authOnly, "path %q classified as both protected and auth-only", p)

		switch Classify(p) {
		case Protected:
			assert.True(t, protected, p)
		case AuthOnly:
			assert.True(t, authOnly, p)
		case Public:
			assert.False(t, protected || authOnly, p)
		}
	}
}

func TestClass_String(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "protected", Protected.String())
	assert.Equal(t, "auth_only", AuthOnly.String())
}

func TestInScope(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/", true},
		{"/dashboard", true},
		{"/login", true},
		{"/static/site.css", false},
		{"/_image/hero.png", false},
		{"/favicon.ico", false},
		{"/logo.svg", false},
		{"/icons/arrow.svg", false},
		{"/staticpage", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, InScope(tt.path))
		})
	}
}
