package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"
)

func newAuthedHandler(cfg config.APIConfig) http.Handler {
	auth := NewHTTPAuth(cfg)
	return auth.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func authConfig() config.APIConfig {
	var cfg config.APIConfig
	cfg.Auth.Enabled = true
	cfg.Auth.APIKeys = []config.APIClientKey{
		{Key: "key-1", Extra: "extra-1", Name: "full"},
		{Key: "key-2", Extra: "extra-2", Name: "scoped", Permissions: []string{"admin:catalog"}},
	}
	return cfg
}

func doAuthed(t *testing.T, handler http.Handler, path, key, extra string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	if extra != "" {
		req.Header.Set("x-api-extra", extra)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Code
}

func TestAuthMissingHeaders(t *testing.T) {
	handler := newAuthedHandler(authConfig())
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "", ""); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthWrongKey(t *testing.T) {
	handler := newAuthedHandler(authConfig())
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "nope", "extra-1"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthWrongExtra(t *testing.T) {
	handler := newAuthedHandler(authConfig())
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "key-1", "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestAuthPermissions(t *testing.T) {
	handler := newAuthedHandler(authConfig())

	// Пустой список прав = allow-all
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "key-1", "extra-1"); code != http.StatusOK {
		t.Fatalf("full key: expected 200, got %d", code)
	}

	if code := doAuthed(t, handler, "/api/v1/admin/packages", "key-2", "extra-2"); code != http.StatusOK {
		t.Fatalf("scoped key on catalog: expected 200, got %d", code)
	}
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "key-2", "extra-2"); code != http.StatusForbidden {
		t.Fatalf("scoped key on bookings: expected 403, got %d", code)
	}
}

func TestAuthDisabledPassesThrough(t *testing.T) {
	var cfg config.APIConfig
	handler := newAuthedHandler(cfg)
	if code := doAuthed(t, handler, "/api/v1/admin/bookings", "", ""); code != http.StatusOK {
		t.Fatalf("expected 200 with auth disabled, got %d", code)
	}
}

func TestRequiredPermissionHTTP(t *testing.T) {
	cases := map[string]string{
		"/api/v1/admin/bookings":          permAdminBookings,
		"/api/v1/admin/bookings/1/reject": permAdminBookings,
		"/api/v1/admin/destinations":      permAdminCatalog,
		"/api/v1/admin/packages/abc":      permAdminCatalog,
		"/api/v1/admin/subscribers":       permAdminSubscribers,
		"/api/v1/packages":                "",
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if got := requiredPermissionHTTP(req); got != want {
			t.Fatalf("path %s: expected %q, got %q", path, want, got)
		}
	}
}
