package provider

import (
	"errors"
	"sync"

	"github.com/you/consultsite/domain"
)

// ErrNotConfigured is returned by Shared when no builder was supplied
var ErrNotConfigured = errors.New("auth provider is not configured")

var shared struct {
	once     sync.Once
	provider domain.AuthProvider
	err      error
}

// Shared returns the process-wide provider, calling build on first use only.
// Later calls return the same instance (or the same build error) and ignore
// their build argument. The instance lives for the rest of the process.
func Shared(build func() (domain.AuthProvider, error)) (domain.AuthProvider, error) {
	shared.once.Do(func() {
		if build == nil {
			shared.err = ErrNotConfigured
			return
		}
		shared.provider, shared.err = build()
	})
	return shared.provider, shared.err
}
