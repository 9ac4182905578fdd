package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"job-portal/internal/domain"
)

// HTTPGateway implementa Gateway contra la API REST del marketplace.
type HTTPGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPGateway construye el cliente apuntando a baseURL.
func NewHTTPGateway(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPGateway {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (g *HTTPGateway) Login(ctx context.Context, email, password string, rememberMe bool) (AuthResponse, error) {
	body := map[string]any{
		"email":       email,
		"password":    password,
		"remember_me": rememberMe,
	}
	var out AuthResponse
	err := g.do(ctx, http.MethodPost, "/auth/login", "", body, &out)
	return out, err
}

func (g *HTTPGateway) RequestOTP(ctx context.Context, email string) error {
	return g.do(ctx, http.MethodPost, "/auth/otp/request", "", map[string]string{"email": email}, nil)
}

func (g *HTTPGateway) VerifyOTP(ctx context.Context, email, code string) (OTPResponse, error) {
	var out OTPResponse
	err := g.do(ctx, http.MethodPost, "/auth/otp/verify", "", map[string]string{"email": email, "code": code}, &out)
	return out, err
}

func (g *HTTPGateway) Register(ctx context.Context, payload RegisterPayload) (AuthResponse, error) {
	var out AuthResponse
	err := g.do(ctx, http.MethodPost, "/auth/register", "", payload, &out)
	return out, err
}

func (g *HTTPGateway) CurrentUser(ctx context.Context, token string) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := g.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return domain.User{}, err
	}
	return out.User, nil
}

func (g *HTTPGateway) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (domain.User, error) {
	var out struct {
		User domain.User `json:"user"`
	}
	if err := g.do(ctx, http.MethodPatch, "/users/me", token, update, &out); err != nil {
		return domain.User{}, err
	}
	return out.User, nil
}

func (g *HTTPGateway) Logout(ctx context.Context, token string) error {
	return g.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (g *HTTPGateway) do(ctx context.Context, method, path, token string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		// Sin respuesta del servidor: se reporta con status 0.
		return &Error{Status: StatusNoConnection, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: StatusNoConnection, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		msg := errorMessage(respBody)
		g.logger.Debug("gateway error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", msg),
		)
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: "malformed response", Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	return nil
}

func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return strings.TrimSpace(string(body))
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}
