package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/api/handler"
	"github.com/99minutos/identity-service/internal/core/domain"
	"github.com/99minutos/identity-service/internal/core/service"
	"github.com/99minutos/identity-service/internal/infrastructure/db/sqlite"
	"github.com/99minutos/identity-service/internal/infrastructure/security"
)

type testServer struct {
	e     *echo.Echo
	users *service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "identity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	issuer, err := security.NewJWTIssuer("test-secret")
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	hasher := security.NewBcryptHasher(4)
	users := service.NewUserService(store, hasher)
	reg := prometheus.NewRegistry()

	e := NewRouter(Dependencies{
		Users:      users,
		Auth:       service.NewAuthService(users, hasher, issuer),
		Gate:       service.NewGate(issuer, nil),
		Readiness:  map[string]handler.Pinger{"store": store},
		Registerer: reg,
		Gatherer:   reg,
		Log:        zerolog.Nop(),
	})
	return &testServer{e: e, users: users}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password))
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp["access_token"]
}

func (s *testServer) seedAdmin(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/register", "",
		`{"username":"root","email":"root@x.com","password":"toor","role":"SUPER_ADMIN"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("seed admin: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	return s.login(t, "root", "toor")
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

func TestRouter_RegisterLoginRoundTrip(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/register", "",
		`{"username":"bob","email":"b@x.com","password":"pw1","role":"USER"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "pw1") || strings.Contains(rec.Body.String(), "$2a$") {
		t.Fatalf("register response leaks password material")
	}

	token := s.login(t, "bob", "pw1")
	issuer, _ := security.NewJWTIssuer("test-secret")
	claims, ok := issuer.Verify(token)
	if !ok {
		t.Fatalf("issued token does not verify")
	}
	if claims.Username != "bob" || claims.Role != domain.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/register", "", `{"username":"bob","email":"b@x.com","password":"pw1"}`)

	wrongPassword := s.do(t, http.MethodPost, "/auth/login", "", `{"username":"bob","password":"nope"}`)
	unknownUser := s.do(t, http.MethodPost, "/auth/login", "", `{"username":"ghost","password":"pw1"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownUser.Code)
	}
	if wrongPassword.Body.String() != unknownUser.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", wrongPassword.Body.String(), unknownUser.Body.String())
	}
}

func TestRouter_DuplicateRegistrationConflicts(t *testing.T) {
	s := newTestServer(t)
	body := `{"username":"bob","email":"b@x.com","password":"pw1"}`
	s.do(t, http.MethodPost, "/auth/register", "", body)

	rec := s.do(t, http.MethodPost, "/auth/register", "", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if msg := errorOf(t, rec); msg != "user already exists" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRouter_UserRoleCanListButNotCreate(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/auth/register", "", `{"username":"bob","email":"b@x.com","password":"pw1"}`)
	token := s.login(t, "bob", "pw1")

	if rec := s.do(t, http.MethodGet, "/users", token, ""); rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/users", token, `{"username":"eve","email":"e@x.com","password":"pw"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("create: expected 403, got %d", rec.Code)
	}
	if u, _ := s.users.FindByUsername(t.Context(), "eve"); u != nil {
		t.Fatalf("forbidden request reached the directory")
	}

	if rec := s.do(t, http.MethodDelete, "/users/1", token, ""); rec.Code != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", rec.Code)
	}
}

func TestRouter_MissingOrBadToken(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/users", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/users", "garbage", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestRouter_AdminCRUD(t *testing.T) {
	s := newTestServer(t)
	token := s.seedAdmin(t)

	rec := s.do(t, http.MethodPost, "/users", token,
		`{"username":"eve","email":"e@x.com","password":"pw","first_name":"Eve"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := int64(created["id"].(float64))
	path := fmt.Sprintf("/users/%d", id)

	rec = s.do(t, http.MethodPatch, path, token, `{"last_name":"Smith","password":"newpw"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &updated)
	if updated["first_name"] != "Eve" || updated["last_name"] != "Smith" {
		t.Fatalf("partial update lost fields: %+v", updated)
	}
	s.login(t, "eve", "newpw")

	if rec := s.do(t, http.MethodGet, path, token, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}

	if rec := s.do(t, http.MethodDelete, path, token, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodDelete, path, token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, path, token, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestRouter_UpdateValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.seedAdmin(t)

	rec := s.do(t, http.MethodPatch, "/users/1", token, `{"username":"renamed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("rename: expected 400, got %d", rec.Code)
	}
	rec = s.do(t, http.MethodPatch, "/users/999", token, `{"first_name":"x"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("absent: expected 404, got %d", rec.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	if rec := s.do(t, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}
	if rec := s.do(t, http.MethodGet, "/health/ready", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	s.do(t, http.MethodGet, "/users", "", "")
	rec := s.do(t, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "identity_requests_total") {
		t.Fatalf("expected echoprometheus request counter in metrics output")
	}
}
