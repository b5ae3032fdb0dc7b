package utils // package utils provides token creation and hashing helpers

import (
	"crypto/rand"     // secure random bytes for refresh secrets
	"crypto/sha256"   // SHA-256 digest for refresh secrets at rest
	"encoding/base64" // base64 encoding of the raw refresh secret
	"encoding/hex"    // hex encoding of the stored digest
	"time"            // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // JWT library for signed access tokens
	"github.com/google/uuid"       // unique token ids (jti claim)

	"github.com/epinapi/epin-store/internal/model"
)

// AccessToken is a signed HS256 JWT together with its expiry. The token is
// short-lived and sent as a Bearer credential on every protected request;
// it is never persisted server-side.
type AccessToken struct {
	Token string    // serialized JWT
	Exp   time.Time // UTC expiry
}

// RefreshToken carries the raw opaque secret handed to the client and its
// expiry. The database keeps only the SHA-256 digest of Raw, so a leaked
// table cannot be replayed as live sessions.
type RefreshToken struct {
	Raw string    // raw secret returned to the client
	Exp time.Time // UTC expiry
}

// refreshSecretLen is the number of random bytes in a refresh secret.
const refreshSecretLen = 32

// NewAccessToken builds and signs an HS256 JWT for a user. The claims are
// the subject (user id), email, role, a unique jti, issued-at and an
// absolute expiry ttlMin minutes ahead. Verification is purely signature
// plus expiry; no server-side state is involved.
func NewAccessToken(secret string, userID uint64, email string, role model.Role, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role.String(),
		"jti":   uuid.NewString(),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a fresh opaque secret (32 cryptographically
// random bytes, base64) valid for ttlDays days.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	buf := make([]byte, refreshSecretLen)
	if _, err := rand.Read(buf); err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: base64.StdEncoding.EncodeToString(buf),
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hex digest of a raw refresh secret.
// Lookups hash the presented value, so equality against the stored digest
// is equivalent to matching the raw token value.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
