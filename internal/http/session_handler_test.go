package http

import (
	"context"
	"net/http"
	"testing"

	"job-portal/internal/domain"
	"job-portal/internal/gateway"
)

func TestSignupThenSessionReportsAuthenticated(t *testing.T) {
	p := newPortalWithDevAPI(t)

	rec := p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name":         "Ana",
		"email":        "ana@acme.io",
		"password":     "supersecret",
		"role":         "employer",
		"company_name": "Acme",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["redirect"] != "/employer/dashboard" {
		t.Fatalf("expected employer home redirect, got %v", body["redirect"])
	}

	rec = p.do(http.MethodGet, "/auth/session", nil)
	body = decodeBody(t, rec)
	if body["state"] != domain.StateAuthenticated.String() || body["is_loading"] != false {
		t.Fatalf("unexpected session: %v", body)
	}
	user, _ := body["user"].(map[string]any)
	if user["company_name"] != "Acme" {
		t.Fatalf("expected company name in session user, got %v", user)
	}
}

func TestLoginHonoursSafeNext(t *testing.T) {
	p := newPortalWithDevAPI(t)
	p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "employee",
	})
	p.do(http.MethodPost, "/auth/logout", nil)

	rec := p.do(http.MethodPost, "/auth/login", map[string]any{
		"email": "ana@example.com", "password": "supersecret", "next": "/employee/applications?page=2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := decodeBody(t, rec)["redirect"]; got != "/employee/applications?page=2" {
		t.Fatalf("expected next redirect, got %v", got)
	}

	p.do(http.MethodPost, "/auth/logout", nil)
	rec = p.do(http.MethodPost, "/auth/login", map[string]any{
		"email": "ana@example.com", "password": "supersecret", "next": "//evil.example",
	})
	if got := decodeBody(t, rec)["redirect"]; got != "/employee/dashboard" {
		t.Fatalf("expected home redirect for unsafe next, got %v", got)
	}
}

func TestLoginWrongPasswordMapsToInvalidCredentials(t *testing.T) {
	p := newPortalWithDevAPI(t)
	p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "employee",
	})
	p.do(http.MethodPost, "/auth/logout", nil)

	rec := p.do(http.MethodPost, "/auth/login", map[string]any{
		"email": "ana@example.com", "password": "nope-nope",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != string(domain.CodeInvalidCredentials) {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", got)
	}
}

func TestLoginErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   domain.ErrorCode
	}{
		{"disabled", &gateway.Error{Status: 403}, http.StatusForbidden, domain.CodeAccountDisabled},
		{"rate limited", &gateway.Error{Status: 429}, http.StatusTooManyRequests, domain.CodeRateLimited},
		{"no connection", &gateway.Error{Status: gateway.StatusNoConnection}, http.StatusBadGateway, domain.CodeNetworkUnavailable},
		{"maintenance", &gateway.Error{Status: 503}, http.StatusServiceUnavailable, domain.CodeServiceUnavailable},
		{"other", &gateway.Error{Status: 418}, http.StatusBadGateway, domain.CodeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPortal(t, &stubGateway{loginErr: tc.err}, RouterOptions{})
			rec := p.do(http.MethodPost, "/auth/login", map[string]any{
				"email": "ana@example.com", "password": "secret",
			})
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if got := decodeBody(t, rec)["error"]; got != string(tc.code) {
				t.Fatalf("expected %s, got %v", tc.code, got)
			}
		})
	}
}

func TestLoginIncompleteResponse(t *testing.T) {
	p := newPortal(t, &stubGateway{loginResp: gateway.AuthResponse{Token: "tok"}}, RouterOptions{})
	rec := p.do(http.MethodPost, "/auth/login", map[string]any{
		"email": "ana@example.com", "password": "secret",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "INCOMPLETE_RESPONSE" {
		t.Fatalf("unexpected error %v", got)
	}
	if p.mgr.State() == domain.StateAuthenticated {
		t.Fatalf("incomplete response must not authenticate")
	}
}

func TestLoginBadRequest(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})
	rec := p.do(http.MethodPost, "/auth/login", map[string]any{"email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequestOTPUnknownAccount(t *testing.T) {
	p := newPortal(t, &stubGateway{otpErr: &gateway.Error{Status: 404}}, RouterOptions{})
	rec := p.do(http.MethodPost, "/auth/otp/request", map[string]any{"email": "ghost@example.com"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != string(domain.CodeAccountNotFound) {
		t.Fatalf("expected ACCOUNT_NOT_FOUND, got %v", got)
	}
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})
	rec := p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "guest",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestLogoutAlwaysNoContent(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})
	for i := 0; i < 2; i++ {
		if rec := p.do(http.MethodPost, "/auth/logout", nil); rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	p := newPortal(t, &stubGateway{}, RouterOptions{})
	p.mgr.Initialize(context.Background())
	rec := p.do(http.MethodPost, "/auth/refresh", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestReportExpiredSetsFlag(t *testing.T) {
	p := newPortalWithDevAPI(t)
	p.do(http.MethodPost, "/auth/signup", map[string]any{
		"name": "Ana", "email": "ana@example.com", "password": "supersecret", "role": "employee",
	})

	if rec := p.do(http.MethodPost, "/auth/expired", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	body := decodeBody(t, p.do(http.MethodGet, "/auth/session", nil))
	if body["session_expired"] != true || body["state"] != domain.StateSessionExpired.String() {
		t.Fatalf("unexpected session after expiry: %v", body)
	}
}

func TestAuthRateLimit(t *testing.T) {
	p := newPortal(t, &stubGateway{loginErr: &gateway.Error{Status: 401}}, RouterOptions{AuthRatePerMinute: 1})
	body := map[string]any{"email": "ana@example.com", "password": "secret"}

	if rec := p.do(http.MethodPost, "/auth/login", body); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected first attempt to reach gateway, got %d", rec.Code)
	}
	rec := p.do(http.MethodPost, "/auth/login", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}
