package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/qubeio/microbees/directory"
	"github.com/qubeio/microbees/logger"
	"github.com/qubeio/microbees/model"
	"github.com/qubeio/microbees/tenant"
	"github.com/qubeio/microbees/token"
)

func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewDefault("test")

	registry, err := tenant.NewRegistry(tenant.Config{
		Driver:   tenant.DriverSQLite,
		Path:     t.TempDir(),
		LogLevel: "silent",
	}, log, model.Entities()...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	t.Cleanup(func() { _ = registry.Close() })

	codec, err := token.NewCodec(token.Config{Secret: "api-test-secret"})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	engine := gin.New()
	NewHandler(directory.NewService(registry, log), codec, log).RegisterRoutes(engine)
	return engine
}

func doJSON(engine *gin.Engine, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

const johnBody = `{"name": "John", "lastName": "Doe", "mailId": "john@example.com"}`

func TestAPI_UserLifecycle(t *testing.T) {
	engine := newTestAPI(t)

	// Sign up.
	rec := doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=acme", johnBody, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var created UserInfoResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("create: decode: %v", err)
	}
	if created.FirstName != "John" || created.LastName != "Doe" || created.Email != "john@example.com" {
		t.Errorf("create: unexpected echo %+v", created)
	}

	// Same email again in the same tenant is a duplicate.
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=acme", johnBody, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same email in another tenant is fine.
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=globex", johnBody, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("other tenant create: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Token issuance with the right name/email pair.
	login := `{"name": "John", "mailId": "john@example.com"}`
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/token?tenantId=acme", login, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("token: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("token: decode: %v", err)
	}
	if tokenResp.AccessToken == "" {
		t.Fatal("token: expected a non-empty access_token")
	}

	// Wrong email must not issue a token, and must not reveal whether the
	// user exists.
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/token?tenantId=acme",
		`{"name": "John", "mailId": "nobody@example.com"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d: %s", rec.Code, rec.Body.String())
	}

	// The token authenticates the protected route.
	rec = doJSON(engine, http.MethodGet, "/v1/microBees/me", "", tokenResp.AccessToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "john@example.com") {
		t.Errorf("me: expected caller record, got %s", rec.Body.String())
	}

	// Delete, then the repeat delete misses.
	rec = doJSON(engine, http.MethodDelete,
		"/v1/microBees/userInfo?tenantId=acme&email=john@example.com", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "User deleted successfully.") {
		t.Errorf("delete: unexpected body %s", rec.Body.String())
	}
	rec = doJSON(engine, http.MethodDelete,
		"/v1/microBees/userInfo?tenantId=acme&email=john@example.com", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_MissingTenantID(t *testing.T) {
	engine := newTestAPI(t)

	rec := doJSON(engine, http.MethodPost, "/v1/microBees/userInfo", johnBody, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without tenantId, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "tenantId") {
		t.Errorf("expected the missing field to be named, got %s", rec.Body.String())
	}
}

func TestAPI_ValidationErrors(t *testing.T) {
	engine := newTestAPI(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"lastName": "Doe", "mailId": "john@example.com"}`},
		{"malformed email", `{"name": "John", "lastName": "Doe", "mailId": "not-an-email"}`},
		{"malformed json", `{"name": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=acme", tt.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAPI_TokenBoundToTenant(t *testing.T) {
	engine := newTestAPI(t)

	rec := doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=acme", johnBody, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/token?tenantId=acme",
		`{"name": "John", "mailId": "john@example.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("token: %d: %s", rec.Code, rec.Body.String())
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// Issuing a token under another tenant for the same credentials fails:
	// the login is resolved inside that tenant's namespace.
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/token?tenantId=globex",
		`{"name": "John", "mailId": "john@example.com"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("cross-tenant token: expected 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_UnknownRouteRequiresToken(t *testing.T) {
	engine := newTestAPI(t)

	// Paths outside the permit-list refuse anonymous callers outright.
	rec := doJSON(engine, http.MethodGet, "/v1/microBees/nothing-here", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for an anonymous unknown path, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Errorf("expected the opaque body, got %s", rec.Body.String())
	}

	// Only an authenticated caller learns the path does not exist.
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/userInfo?tenantId=acme", johnBody, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("create: %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(engine, http.MethodPost, "/v1/microBees/token?tenantId=acme",
		`{"name": "John", "mailId": "john@example.com"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("token: %d: %s", rec.Code, rec.Body.String())
	}
	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &tokenResp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = doJSON(engine, http.MethodGet, "/v1/microBees/nothing-here", "", tokenResp.AccessToken)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an authenticated unknown path, got %d: %s",
			rec.Code, rec.Body.String())
	}
}

func TestAPI_ProtectedRouteRequiresToken(t *testing.T) {
	engine := newTestAPI(t)

	rec := doJSON(engine, http.MethodGet, "/v1/microBees/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", rec.Code)
	}

	rec = doJSON(engine, http.MethodGet, "/v1/microBees/me", "", "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a garbage token, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid token") {
		t.Errorf("expected the opaque body, got %s", rec.Body.String())
	}
}
