package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/you/consultsite/domain"
)

// BcryptCodeHasher implements domain.CodeHasher so codes never sit in Redis in clear text
type BcryptCodeHasher struct {
	cost int
}

// NewCodeHasher creates a bcrypt hasher. Codes are short lived, so the
// minimum cost is enough; a cost outside bcrypt's range falls back to the default.
func NewCodeHasher(cost int) domain.CodeHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptCodeHasher{cost: cost}
}

// Hash implements domain.CodeHasher
func (h *BcryptCodeHasher) Hash(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify implements domain.CodeHasher
func (h *BcryptCodeHasher) Verify(hash, code string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
