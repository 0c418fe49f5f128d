package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abbakary/portals/internal/auth"
	"github.com/abbakary/portals/internal/config"
	"github.com/abbakary/portals/internal/db"
	"github.com/abbakary/portals/internal/model"
)

func testConfig() config.Config {
	return config.Config{
		HTTPAddr:        ":0",
		JWTSecret:       "test-secret",
		JWTIssuer:       "test-issuer",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

// newTestApp builds a server without a database. Only routes that reject
// before touching storage are exercised here.
func newTestApp(t *testing.T, cfg config.Config) *httptest.Server {
	t.Helper()
	server := NewServer(cfg, db.NewStore(nil), nil)
	app := httptest.NewServer(server.Router())
	t.Cleanup(app.Close)
	return app
}

func mustToken(t *testing.T, cfg config.Config, userID, role, profileID string) string {
	t.Helper()
	token, err := auth.NewAccessToken(cfg.JWTSecret, cfg.JWTIssuer, 10*time.Minute, auth.Claims{
		UserID:    userID,
		Role:      role,
		ProfileID: profileID,
	})
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	return token
}

func doReq(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode error: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, testConfig())
	resp, err := http.Get(app.URL + "/health")
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	app := newTestApp(t, testConfig())

	resp := doReq(t, http.MethodGet, app.URL+"/api/vehicles", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", resp.StatusCode)
	}

	resp = doReq(t, http.MethodGet, app.URL+"/api/vehicles", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", resp.StatusCode)
	}
}

func TestRoleForbidden(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg)

	customerToken := mustToken(t, cfg, "user-1", model.RoleCustomer, "cust-1")
	inspectorToken := mustToken(t, cfg, "user-2", model.RoleInspector, "insp-1")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{"customer cannot create vehicles", http.MethodPost, "/api/vehicles", customerToken},
		{"customer cannot list customers", http.MethodGet, "/api/customers", customerToken},
		{"customer cannot list assignments", http.MethodGet, "/api/assignments", customerToken},
		{"customer cannot submit inspections", http.MethodPost, "/api/inspections/ins-1/submit", customerToken},
		{"inspector cannot delete vehicles", http.MethodDelete, "/api/vehicles/veh-1", inspectorToken},
		{"inspector cannot approve inspections", http.MethodPost, "/api/inspections/ins-1/approve", inspectorToken},
		{"inspector cannot manage customers", http.MethodPost, "/api/customers", inspectorToken},
		{"inspector cannot create assignments", http.MethodPost, "/api/assignments", inspectorToken},
		{"inspector cannot read stats", http.MethodGet, "/api/stats", inspectorToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doReq(t, tc.method, app.URL+tc.path, tc.token, nil)
			if resp.StatusCode != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", resp.StatusCode)
			}
		})
	}
}

func TestMissingProfileSeesNothing(t *testing.T) {
	cfg := testConfig()
	app := newTestApp(t, cfg)

	// A customer token without a profile id gets empty reads, not errors.
	token := mustToken(t, cfg, "user-1", model.RoleCustomer, "")

	resp := doReq(t, http.MethodGet, app.URL+"/api/vehicles", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list vehicles: expected 200, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/api/inspections", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list inspections: expected 200, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/api/vehicles/veh-1", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get vehicle: expected 404, got %d", resp.StatusCode)
	}
	resp = doReq(t, http.MethodGet, app.URL+"/api/inspections/ins-1", token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get inspection: expected 404, got %d", resp.StatusCode)
	}
}

func TestDevCORSPreflight(t *testing.T) {
	cfg := testConfig()
	cfg.DevCORS = true
	app := newTestApp(t, cfg)

	req, err := http.NewRequest(http.MethodOptions, app.URL+"/api/vehicles", nil)
	if err != nil {
		t.Fatalf("request error: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("http error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatal("missing CORS headers on preflight")
	}
}

func TestBearerToken(t *testing.T) {
	if got := bearerToken("Bearer abc"); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := bearerToken("bearer abc"); got != "abc" {
		t.Fatalf("lowercase scheme: got %q", got)
	}
	if got := bearerToken("Basic abc"); got != "" {
		t.Fatalf("wrong scheme should yield empty, got %q", got)
	}
	if got := bearerToken(""); got != "" {
		t.Fatalf("empty header should yield empty, got %q", got)
	}
}
