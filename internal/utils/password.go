package utils

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when no explicit cost is
// configured. Each hash embeds its own salt and cost, so the factor can be
// raised later without invalidating stored hashes.
const DefaultBcryptCost = 12

// HashPassword returns the bcrypt hash of plain using the given cost.
// A cost below bcrypt.MinCost falls back to DefaultBcryptCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = DefaultBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash against a plain password. A wrong
// password is not an error condition; the function simply reports false.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
