package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/epinapi/epin-store/internal/config"
	"github.com/epinapi/epin-store/internal/middleware"
	"github.com/epinapi/epin-store/internal/model"
	"github.com/epinapi/epin-store/internal/repository"
	"github.com/epinapi/epin-store/internal/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// testCost keeps bcrypt fast in tests; hashes embed their own cost so the
// handlers are oblivious to the difference.
const testCost = 4

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     testCost,
	}
}

// ----- in-memory fakes -----

type fakeUserStore struct {
	users  map[string]model.User // keyed by email
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]model.User{}, nextID: 1}
}

func (s *fakeUserStore) add(name, email, password string, role model.Role, active bool) model.User {
	hash, _ := utils.HashPassword(password, testCost)
	u := model.User{
		ID: s.nextID, Name: name, Email: email, PasswordHash: hash,
		Role: role, IsActive: active, CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.users[email] = u
	return u
}

func (s *fakeUserStore) Create(ctx context.Context, name, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := s.users[email]; ok {
		return 0, repository.ErrEmailExists
	}
	u := s.add(name, email, password, model.RoleUser, true)
	return u.ID, nil
}

func (s *fakeUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	if u, ok := s.users[email]; ok {
		return u, nil
	}
	return model.User{}, repository.ErrUserNotFound
}

func (s *fakeUserStore) GetByID(ctx context.Context, id uint64) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type refreshKey struct {
	userID uint64
	device string
}

type fakeRefreshStore struct {
	records map[refreshKey]model.RefreshToken
	nextID  uint64
}

func newFakeRefreshStore() *fakeRefreshStore {
	return &fakeRefreshStore{records: map[refreshKey]model.RefreshToken{}, nextID: 1}
}

func (s *fakeRefreshStore) Upsert(ctx context.Context, userID uint64, device, tokenHash string, exp time.Time) error {
	k := refreshKey{userID, device}
	rec, ok := s.records[k]
	if !ok {
		rec = model.RefreshToken{ID: s.nextID, UserID: userID, DeviceInfo: device}
		s.nextID++
	}
	rec.TokenHash = tokenHash
	rec.ExpiresAt = exp
	s.records[k] = rec
	return nil
}

func (s *fakeRefreshStore) FindByTokenAndDevice(ctx context.Context, tokenHash, device string) (model.RefreshToken, error) {
	for _, rec := range s.records {
		if rec.TokenHash == tokenHash && rec.DeviceInfo == device {
			return rec, nil
		}
	}
	return model.RefreshToken{}, repository.ErrRefreshNotFound
}

func (s *fakeRefreshStore) DeleteByID(ctx context.Context, id uint64) error {
	for k, rec := range s.records {
		if rec.ID == id {
			delete(s.records, k)
			return nil
		}
	}
	return nil
}

func (s *fakeRefreshStore) DeleteByUserAndDevice(ctx context.Context, userID uint64, device string) error {
	k := refreshKey{userID, device}
	if _, ok := s.records[k]; !ok {
		return repository.ErrRefreshNotFound
	}
	delete(s.records, k)
	return nil
}

type auditEntry struct {
	actorID  uint64
	action   string
	endpoint string
}

type fakeAudit struct{ entries []auditEntry }

func (a *fakeAudit) Log(ctx context.Context, actorID uint64, action, endpoint string) {
	a.entries = append(a.entries, auditEntry{actorID, action, endpoint})
}

// ----- harness -----

type authEnv struct {
	e      *echo.Echo
	users  *fakeUserStore
	tokens *fakeRefreshStore
	audit  *fakeAudit
}

func newAuthEnv() *authEnv {
	users := newFakeUserStore()
	tokens := newFakeRefreshStore()
	audit := &fakeAudit{}
	h := NewAuthHandler(testConfig(), users, tokens, audit)

	e := echo.New()
	e.POST("/api/users/register", h.Register)
	e.POST("/api/users/login", h.Login)
	e.POST("/api/users/admin-login", h.AdminLogin)
	e.POST("/api/users/refresh", h.Refresh)
	e.POST("/api/users/logout", h.Logout, middleware.JWTAuth(testSecret))
	return &authEnv{e: e, users: users, tokens: tokens, audit: audit}
}

func (env *authEnv) post(t *testing.T, path, body, bearer, device string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if device != "" {
		req.Header.Set("User-Agent", device)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

// ----- registration -----

func TestRegisterSuccess(t *testing.T) {
	env := newAuthEnv()
	rec, body := env.post(t, "/api/users/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"secret1"}`, "", "ua")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if body["message"] != "user created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	// Email is stored lowercased.
	if _, err := env.users.GetByEmail(context.Background(), "ada@example.com"); err != nil {
		t.Error("registered user not found under lowercased email")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newAuthEnv()
	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.c","password":"secret1"}`},
		{"missing email", `{"name":"A","password":"secret1"}`},
		{"missing password", `{"name":"A","email":"a@b.c"}`},
		{"email without at", `{"name":"A","email":"nobody","password":"secret1"}`},
		{"short password", `{"name":"A","email":"a@b.c","password":"12345"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := env.post(t, "/api/users/register", tc.body, "", "ua")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	rec, body := env.post(t, "/api/users/register",
		`{"name":"Other","email":"ada@example.com","password":"secret1"}`, "", "ua")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["message"] != "email address already in use" {
		t.Errorf("message = %v", body["message"])
	}
}

// ----- login -----

func TestLoginSuccess(t *testing.T) {
	env := newAuthEnv()
	u := env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	rec, body := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	access, _ := body["accessToken"].(string)
	refresh, _ := body["refreshToken"].(string)
	if access == "" || refresh == "" {
		t.Fatal("token pair missing from response")
	}
	user, _ := body["user"].(map[string]any)
	if id, _ := user["id"].(float64); uint64(id) != u.ID {
		t.Errorf("user.id = %v, want %d", user["id"], u.ID)
	}
	if user["role"] != "User" {
		t.Errorf("user.role = %v, want User", user["role"])
	}

	// The stored record holds the digest, never the raw secret.
	rt, err := env.tokens.FindByTokenAndDevice(context.Background(), utils.HashRefreshRaw(refresh), "device-a")
	if err != nil {
		t.Fatal("refresh record not stored under digest+device")
	}
	if rt.TokenHash == refresh {
		t.Error("raw refresh secret stored at rest")
	}
}

func TestLoginWrongPasswordAndUnknownEmail(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	for _, body := range []string{
		`{"email":"ada@example.com","password":"nope"}`,
		`{"email":"ghost@example.com","password":"secret1"}`,
	} {
		rec, out := env.post(t, "/api/users/login", body, "", "ua")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
		// Unknown email and wrong password are indistinguishable.
		if out["message"] != "invalid email or password" {
			t.Errorf("message = %v", out["message"])
		}
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, false)

	rec, _ := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "ua")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for disabled account", rec.Code)
	}
}

func TestLoginCredentialsCheckedBeforeStatus(t *testing.T) {
	// Wrong password on a disabled account answers the credentials 401, so
	// the caller learns nothing about the account being disabled.
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, false)

	rec, out := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"wrong"}`, "", "ua")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if out["message"] != "invalid email or password" {
		t.Errorf("message = %v, want the credentials message", out["message"])
	}
}

func TestDoubleLoginSameDeviceKeepsOneRecord(t *testing.T) {
	env := newAuthEnv()
	u := env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	_, first := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	_, second := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")

	if len(env.tokens.records) != 1 {
		t.Fatalf("refresh records = %d, want 1", len(env.tokens.records))
	}

	// The first secret was overwritten and no longer resolves.
	oldRaw, _ := first["refreshToken"].(string)
	if _, err := env.tokens.FindByTokenAndDevice(context.Background(), utils.HashRefreshRaw(oldRaw), "device-a"); err == nil {
		t.Error("first login's refresh secret still resolves after second login")
	}
	newRaw, _ := second["refreshToken"].(string)
	rt, err := env.tokens.FindByTokenAndDevice(context.Background(), utils.HashRefreshRaw(newRaw), "device-a")
	if err != nil {
		t.Fatal("second login's refresh secret does not resolve")
	}
	if rt.UserID != u.ID {
		t.Errorf("record user = %d, want %d", rt.UserID, u.ID)
	}
}

func TestLoginTwoDevicesTwoRecords(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	env.post(t, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	env.post(t, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`, "", "device-b")

	if len(env.tokens.records) != 2 {
		t.Fatalf("refresh records = %d, want 2 (one per device)", len(env.tokens.records))
	}
}

// ----- admin login -----

func TestAdminLoginSuccess(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Root", "root@example.com", "secret1", model.RoleAdmin, true)

	rec, body := env.post(t, "/api/users/admin-login",
		`{"email":"root@example.com","password":"secret1"}`, "", "ua")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if body["message"] != "admin login successful" {
		t.Errorf("message = %v", body["message"])
	}
	if len(env.audit.entries) != 0 {
		t.Errorf("successful admin login wrote %d audit entries, want 0", len(env.audit.entries))
	}
}

func TestAdminLoginNonAdminForbidden(t *testing.T) {
	env := newAuthEnv()
	u := env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	rec, _ := env.post(t, "/api/users/admin-login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "ua")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if len(env.tokens.records) != 0 {
		t.Error("forbidden admin login must not create a session")
	}
	if len(env.audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want exactly 1", len(env.audit.entries))
	}
	got := env.audit.entries[0]
	if got.actorID != u.ID {
		t.Errorf("audit actor = %d, want %d", got.actorID, u.ID)
	}
	if got.action != "unauthorized admin panel login attempt" {
		t.Errorf("audit action = %q", got.action)
	}
}

func TestAdminLoginBadCredentialsAuditedAsActorZero(t *testing.T) {
	env := newAuthEnv()

	rec, _ := env.post(t, "/api/users/admin-login",
		`{"email":"ghost@example.com","password":"whatever"}`, "", "ua")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if len(env.audit.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(env.audit.entries))
	}
	got := env.audit.entries[0]
	if got.actorID != 0 {
		t.Errorf("audit actor = %d, want 0 for unauthenticated attempt", got.actorID)
	}
	if !strings.Contains(got.action, "ghost@example.com") {
		t.Errorf("audit action %q does not name the attempted email", got.action)
	}
}

func TestRegularLoginFailureNotAudited(t *testing.T) {
	env := newAuthEnv()
	env.post(t, "/api/users/login", `{"email":"ghost@example.com","password":"x"}`, "", "ua")
	if len(env.audit.entries) != 0 {
		t.Errorf("regular login failure wrote %d audit entries, want 0", len(env.audit.entries))
	}
}

// ----- refresh -----

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	_, login := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	oldRaw, _ := login["refreshToken"].(string)

	rec, body := env.post(t, "/api/users/refresh",
		`{"refreshToken":"`+oldRaw+`"}`, "", "device-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	newRaw, _ := body["refreshToken"].(string)
	if newRaw == "" || newRaw == oldRaw {
		t.Fatal("refresh must return a new secret")
	}
	if access, _ := body["accessToken"].(string); access == "" {
		t.Fatal("refresh must return a new access token")
	}

	// Strict rotation: replaying the old secret fails.
	rec2, _ := env.post(t, "/api/users/refresh",
		`{"refreshToken":"`+oldRaw+`"}`, "", "device-a")
	if rec2.Code != http.StatusUnauthorized {
		t.Fatalf("replayed old secret: status = %d, want 401", rec2.Code)
	}

	// Still exactly one record for the (user, device) pair.
	if len(env.tokens.records) != 1 {
		t.Errorf("refresh records = %d, want 1", len(env.tokens.records))
	}
}

func TestRefreshWrongDevice(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	_, login := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	raw, _ := login["refreshToken"].(string)

	rec, _ := env.post(t, "/api/users/refresh",
		`{"refreshToken":"`+raw+`"}`, "", "device-b")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 when device differs", rec.Code)
	}
}

func TestRefreshExpiredDeletesRecord(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	_, login := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	raw, _ := login["refreshToken"].(string)

	// Force the stored record past its expiry.
	k := refreshKey{userID: 1, device: "device-a"}
	rec0 := env.tokens.records[k]
	rec0.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	env.tokens.records[k] = rec0

	rec, body := env.post(t, "/api/users/refresh",
		`{"refreshToken":"`+raw+`"}`, "", "device-a")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["message"] != "session expired, please log in again" {
		t.Errorf("message = %v", body["message"])
	}
	if len(env.tokens.records) != 0 {
		t.Error("expired record must be deleted on refresh")
	}
}

func TestRefreshMissingToken(t *testing.T) {
	env := newAuthEnv()
	rec, _ := env.post(t, "/api/users/refresh", `{}`, "", "ua")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	env := newAuthEnv()
	rec, body := env.post(t, "/api/users/refresh",
		`{"refreshToken":"bm90LWEtcmVhbC10b2tlbg=="}`, "", "ua")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["message"] != "session not found" {
		t.Errorf("message = %v", body["message"])
	}
}

// ----- logout -----

func TestLogoutThenRepeatedLogout(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	_, login := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	access, _ := login["accessToken"].(string)

	rec, _ := env.post(t, "/api/users/logout", `{}`, access, "device-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	if len(env.tokens.records) != 0 {
		t.Error("logout must delete the device's refresh record")
	}

	// Logging out again from the same device finds nothing.
	rec2, body := env.post(t, "/api/users/logout", `{}`, access, "device-a")
	if rec2.Code != http.StatusBadRequest {
		t.Fatalf("second logout status = %d, want 400", rec2.Code)
	}
	if body["message"] != "already logged out or session expired" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestLogoutOnlyAffectsOwnDevice(t *testing.T) {
	env := newAuthEnv()
	env.users.add("Ada", "ada@example.com", "secret1", model.RoleUser, true)

	env.post(t, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	_, loginB := env.post(t, "/api/users/login", `{"email":"ada@example.com","password":"secret1"}`, "", "device-b")
	accessB, _ := loginB["accessToken"].(string)

	rec, _ := env.post(t, "/api/users/logout", `{}`, accessB, "device-b")
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", rec.Code)
	}
	if len(env.tokens.records) != 1 {
		t.Fatalf("refresh records = %d, want 1 (device-a untouched)", len(env.tokens.records))
	}
}

func TestLogoutWithoutToken(t *testing.T) {
	env := newAuthEnv()
	rec, _ := env.post(t, "/api/users/logout", `{}`, "", "ua")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

// ----- end to end -----

func TestRegisterLoginRefreshRoundTrip(t *testing.T) {
	env := newAuthEnv()

	rec, _ := env.post(t, "/api/users/register",
		`{"name":"Ada","email":"ada@example.com","password":"secret1"}`, "", "device-a")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	rec, login := env.post(t, "/api/users/login",
		`{"email":"ada@example.com","password":"secret1"}`, "", "device-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (body %s)", rec.Code, rec.Body.String())
	}
	raw, _ := login["refreshToken"].(string)

	rec, refreshed := env.post(t, "/api/users/refresh",
		`{"refreshToken":"`+raw+`"}`, "", "device-a")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d (body %s)", rec.Code, rec.Body.String())
	}
	newAccess, _ := refreshed["accessToken"].(string)
	newRefresh, _ := refreshed["refreshToken"].(string)
	if newAccess == "" || newRefresh == "" {
		t.Fatal("refresh did not return a full token pair")
	}
}
