package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// TargetUserID returns the user whose records the request addresses.
// source is "path", "query" or "header"; when the value is absent the
// caller's own ID is used. ok is false for a malformed ID.
func TargetUserID(c *gin.Context, source, name string, self uint) (uint, bool) {
	var raw string
	switch source {
	case "path":
		raw = c.Param(name)
	case "query":
		raw = c.Query(name)
	case "header":
		raw = c.GetHeader(name)
	}
	if raw == "" {
		return self, true
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
