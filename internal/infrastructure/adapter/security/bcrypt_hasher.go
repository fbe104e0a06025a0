package security

import (
	"errors"
	"fmt"

	secport "github.com/amirhossein-jamali/atm-cli/internal/domain/port/security"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes PINs with bcrypt. The salt is embedded in the hash.
type BcryptHasher struct {
	cost int
}

var _ secport.PinHasher = (*BcryptHasher)(nil)

// NewBcryptHasher creates a hasher with the given cost, clamped to bcrypt's valid range
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns a salted bcrypt hash of pin
func (h *BcryptHasher) Hash(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash PIN: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether pin matches hash
func (h *BcryptHasher) Verify(pin, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("verify PIN: %w", err)
	}
}

// Cost returns the bcrypt cost used for new hashes
func (h *BcryptHasher) Cost() int {
	return h.cost
}
