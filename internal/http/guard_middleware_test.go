package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"job-portal/internal/domain"
	"job-portal/internal/metrics"
)

func TestProtectedViewWhileLoading(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})

	rec := p.do(http.MethodGet, "/employee/dashboard", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202 while loading, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if got := decodeBody(t, rec)["status"]; got != "loading" {
		t.Fatalf("expected loading status, got %v", got)
	}
}

func TestProtectedViewRedirectsToSignIn(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})
	p.mgr.Initialize(context.Background())

	rec := p.do(http.MethodGet, "/employee/applications?page=2", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	want := "/login?next=%2Femployee%2Fapplications%3Fpage%3D2"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Fatalf("expected %s, got %s", want, loc)
	}
}

func TestProtectedViewRoleMismatchRedirectsHome(t *testing.T) {
	p := newPortalWithDevAPI(t)
	rec := p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "employee",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = p.do(http.MethodGet, "/employer/dashboard", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/employee/dashboard" {
		t.Fatalf("expected employee home, got %s", loc)
	}

	rec = p.do(http.MethodGet, "/employee/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for own area, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["area"] != "employee" || body["view"] != "/dashboard" {
		t.Fatalf("unexpected view body: %v", body)
	}

	if rec := p.do(http.MethodGet, "/account", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected any role to reach /account, got %d", rec.Code)
	}
}

func TestProtectedViewAfterLogout(t *testing.T) {
	p := newPortalWithDevAPI(t)
	p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "employee",
	})
	p.do(http.MethodPost, "/auth/logout", nil)

	if p.mgr.State() != domain.StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", p.mgr.State())
	}
	rec := p.do(http.MethodGet, "/account", nil)
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), "/login") {
		t.Fatalf("expected redirect to sign-in, got %d %s", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHealthzAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_ = metrics.NewCollector(reg)
	p := newPortal(t, &stubGateway{}, RouterOptions{Metrics: metrics.Handler(reg)})
	p.mgr.Initialize(context.Background())

	if rec := p.do(http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from healthz, got %d", rec.Code)
	}
	rec := p.do(http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from metrics, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}})

	req := httptest.NewRequest(http.MethodOptions, "/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
}
