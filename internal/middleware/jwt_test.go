package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// runProtected sends a request with the given Authorization header through
// JWTAuth into a handler that echoes the injected identity.
func runProtected(t *testing.T, authHeader string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		role, _ := CurrentRole(c)
		return c.JSON(http.StatusOK, echo.Map{
			"userId": CurrentUserID(c),
			"role":   role.String(),
		})
	}, JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestJWTAuthValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 99, "u@e.x", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, body := runProtected(t, "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if id, _ := body["userId"].(float64); uint64(id) != 99 {
		t.Errorf("userId = %v, want 99", body["userId"])
	}
	if body["role"] != "User" {
		t.Errorf("role = %v, want User", body["role"])
	}
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, body := runProtected(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg, _ := body["message"].(string); msg == "" {
		t.Error("401 body must carry a message")
	}
}

func TestJWTAuthMalformedToken(t *testing.T) {
	rec, _ := runProtected(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("another-secret-another-secret-32", 1, "u@e.x", model.RoleUser, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	// Hand-build a token whose exp is in the past; expiry has zero skew
	// tolerance so even one second past must be rejected.
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": float64(5),
		"exp": now.Add(-time.Second).Unix(),
		"iat": now.Add(-time.Minute).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+signed)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for expired token", rec.Code)
	}
}

func TestJWTAuthRejectsNonHMAC(t *testing.T) {
	// alg=none style downgrade: unsigned token must not pass.
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": float64(1),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	rec, _ := runProtected(t, "Bearer "+unsigned)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for unsigned token", rec.Code)
	}
}

func TestCurrentUserIDWithoutAuth(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := CurrentUserID(c); got != 0 {
		t.Errorf("CurrentUserID on bare context = %d, want 0", got)
	}
	if _, ok := CurrentRole(c); ok {
		t.Error("CurrentRole on bare context reported ok")
	}
}
