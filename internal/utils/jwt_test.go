package utils

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/epinapi/epin-store/internal/model"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	tok, err := jwt.Parse(token, func(tk *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	return claims
}

func TestNewAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken(testSecret, 42, "a@b.c", model.RoleAdmin, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims := parseClaims(t, at.Token)
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["email"] != "a@b.c" {
		t.Errorf("email = %v, want a@b.c", claims["email"])
	}
	if claims["role"] != "Admin" {
		t.Errorf("role = %v, want Admin", claims["role"])
	}
	jti, _ := claims["jti"].(string)
	if jti == "" {
		t.Error("jti claim missing")
	}

	exp, _ := claims["exp"].(float64)
	iat, _ := claims["iat"].(float64)
	if got := int64(exp) - int64(iat); got != 15*60 {
		t.Errorf("exp-iat = %ds, want %ds", got, 15*60)
	}
	if !at.Exp.After(time.Now()) {
		t.Error("returned expiry is not in the future")
	}
}

func TestNewAccessTokenUniqueJTI(t *testing.T) {
	a, err := NewAccessToken(testSecret, 1, "x@y.z", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	b, err := NewAccessToken(testSecret, 1, "x@y.z", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if parseClaims(t, a.Token)["jti"] == parseClaims(t, b.Token)["jti"] {
		t.Error("two tokens for the same user share a jti")
	}
}

func TestAccessTokenWrongSecretFails(t *testing.T) {
	at, err := NewAccessToken(testSecret, 7, "u@e.x", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("another-secret-another-secret-32"), nil
	})
	if err == nil {
		t.Error("token verified under the wrong secret")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	raw, err := base64.StdEncoding.DecodeString(rt.Raw)
	if err != nil {
		t.Fatalf("refresh secret is not base64: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("secret length = %d bytes, want 32", len(raw))
	}

	want := time.Now().UTC().Add(7 * 24 * time.Hour)
	if d := rt.Exp.Sub(want); d < -time.Minute || d > time.Minute {
		t.Errorf("expiry %v not within a minute of %v", rt.Exp, want)
	}

	other, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if other.Raw == rt.Raw {
		t.Error("two refresh secrets are identical")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("some-secret")
	h2 := HashRefreshRaw("some-secret")
	if h1 != h2 {
		t.Error("digest is not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(h1))
	}
	if HashRefreshRaw("other-secret") == h1 {
		t.Error("different secrets share a digest")
	}
}
