package auth

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. A zero Cost means
// bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password
func (b BcryptHasher) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify reports whether password matches hash
func (b BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
