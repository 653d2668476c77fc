package auth

import (
	"errors"
	"sync/atomic"

	"golang.org/x/crypto/bcrypt"
)

var hashCost atomic.Int32

func init() {
	hashCost.Store(int32(bcrypt.DefaultCost))
}

// SetPasswordHashCost updates the bcrypt cost used by HashPassword.
// Values outside the bcrypt range are ignored.
func SetPasswordHashCost(cost int) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return
	}
	hashCost.Store(int32(cost))
}

// PasswordHashCost returns the configured bcrypt cost
func PasswordHashCost() int {
	return int(hashCost.Load())
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
