package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/devapi"
	"job-portal/internal/domain"
	"job-portal/internal/email"
	"job-portal/internal/gateway"
	"job-portal/internal/metrics"
	"job-portal/internal/repository"
	"job-portal/internal/session"
	"job-portal/internal/store"
)

// stubGateway devuelve respuestas fijas para probar el mapeo de errores.
type stubGateway struct {
	loginResp gateway.AuthResponse
	loginErr  error
	otpErr    error
}

func (s *stubGateway) Login(context.Context, string, string, bool) (gateway.AuthResponse, error) {
	return s.loginResp, s.loginErr
}

func (s *stubGateway) RequestOTP(context.Context, string) error { return s.otpErr }

func (s *stubGateway) VerifyOTP(context.Context, string, string) (gateway.OTPResponse, error) {
	return gateway.OTPResponse{}, s.otpErr
}

func (s *stubGateway) Register(context.Context, gateway.RegisterPayload) (gateway.AuthResponse, error) {
	return gateway.AuthResponse{}, &gateway.Error{Status: 409}
}

func (s *stubGateway) CurrentUser(context.Context, string) (domain.User, error) {
	return domain.User{}, &gateway.Error{Status: 401}
}

func (s *stubGateway) UpdateProfile(context.Context, string, gateway.ProfileUpdate) (domain.User, error) {
	return domain.User{}, &gateway.Error{Status: 500}
}

func (s *stubGateway) Logout(context.Context, string) error { return nil }

type portal struct {
	router *gin.Engine
	mgr    *session.Manager
}

func newPortal(t *testing.T, gw gateway.Gateway, opts RouterOptions) portal {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	mgr := session.NewManager(logger, gw, store.NewMemoryStore(), nil, metrics.Nop())
	t.Cleanup(mgr.Dispose)
	return portal{
		router: NewRouter(logger, mgr, NewSessionHandler(logger, mgr), opts),
		mgr:    mgr,
	}
}

// newPortalWithDevAPI conecta el portal a una API de desarrollo real servida por httptest.
func newPortalWithDevAPI(t *testing.T) portal {
	t.Helper()
	gin.SetMode(gin.TestMode)
	accounts := devapi.NewAccountService(zap.NewNop(), repository.NewMemoryAccountRepository(), email.NewLogSender(zap.NewNop()), nil)
	tokens := devapi.NewTokenIssuer("test-secret", time.Hour, time.Hour, nil)
	api := httptest.NewServer(devapi.NewRouter(zap.NewNop(), devapi.NewHandler(zap.NewNop(), accounts, tokens), tokens))
	t.Cleanup(api.Close)

	p := newPortal(t, gateway.NewHTTPGateway(api.URL, 5*time.Second, zap.NewNop()), RouterOptions{})
	p.mgr.Initialize(context.Background())
	return p
}

func (p portal) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return out
}
