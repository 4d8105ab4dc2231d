// Package routes classifies request paths for the gatekeeper.
package routes

import "strings"

// Class is the access classification of a path
type Class int

const (
	Public Class = iota
	Protected
	AuthOnly
)

func (c Class) String() string {
	switch c {
	case Protected:
		return "protected"
	case AuthOnly:
		return "auth_only"
	default:
		return "public"
	}
}

const (
	DashboardPath = "/dashboard"
	LoginPath     = "/login"
	SignupPath    = "/signup"
)

// Paths the gatekeeper never sees
const (
	StaticPrefix = "/static/"
	ImagePrefix  = "/_image/"
	FaviconPath  = "/favicon.ico"
)

// IsProtected reports whether path requires a session.
// New protected areas are added here.
func IsProtected(path string) bool {
	return path == DashboardPath || strings.HasPrefix(path, DashboardPath+"/")
}

// IsAuthOnly reports whether path is only meant for signed-out visitors
func IsAuthOnly(path string) bool {
	return path == LoginPath || path == SignupPath
}

// Classify maps path to exactly one Class
func Classify(path string) Class {
	switch {
	case IsProtected(path):
		return Protected
	case IsAuthOnly(path):
		return AuthOnly
	default:
		return Public
	}
}

// InScope reports whether the gatekeeper should run for path.
// Static assets, optimised images, the favicon and svg icons are skipped.
func InScope(path string) bool {
	switch {
	case strings.HasPrefix(path, StaticPrefix),
		strings.HasPrefix(path, ImagePrefix),
		path == FaviconPath,
		strings.HasSuffix(path, ".svg"):
		return false
	}
	return true
}
