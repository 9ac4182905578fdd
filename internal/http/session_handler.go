package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/domain"
	"job-portal/internal/guard"
	"job-portal/internal/session"
)

// SessionHandler expone el SessionManager a la capa de presentacion.
type SessionHandler struct {
	logger *zap.Logger
	mgr    *session.Manager
}

// NewSessionHandler crea una instancia de SessionHandler.
func NewSessionHandler(logger *zap.Logger, mgr *session.Manager) *SessionHandler {
	return &SessionHandler{
		logger: logger,
		mgr:    mgr,
	}
}

// GetSession maneja GET /auth/session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	snap := h.mgr.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"state":           snap.State.String(),
		"is_loading":      snap.IsLoading(),
		"session_expired": snap.SessionExpired,
		"user":            snap.User,
	})
}

// Login maneja POST /auth/login.
func (h *SessionHandler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
		Next       string `json:"next"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ok, err := h.mgr.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	h.respondAcquired(c, ok, err, req.Next)
}

// RequestOTP maneja POST /auth/otp/request.
func (h *SessionHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.mgr.RequestLoginCode(c.Request.Context(), req.Email); err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify.
func (h *SessionHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
		Next  string `json:"next"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ok, err := h.mgr.LoginWithOTP(c.Request.Context(), req.Email, req.Code)
	h.respondAcquired(c, ok, err, req.Next)
}

// Signup maneja POST /auth/signup.
func (h *SessionHandler) Signup(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Email       string   `json:"email" binding:"required,email"`
		Password    string   `json:"password" binding:"required"`
		Role        string   `json:"role" binding:"required"`
		Phone       string   `json:"phone"`
		CompanyName string   `json:"company_name"`
		Skills      []string `json:"skills"`
		RememberMe  bool     `json:"remember_me"`
		Next        string   `json:"next"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid signup request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	role, valid := domain.ParseRole(req.Role)
	if !valid {
		writeAuthError(c, domain.ErrInvalidInputData)
		return
	}

	ok, err := h.mgr.Signup(c.Request.Context(), session.SignupInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        role,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Skills:      req.Skills,
		RememberMe:  req.RememberMe,
	})
	h.respondAcquired(c, ok, err, req.Next)
}

// Logout maneja POST /auth/logout; siempre responde 204.
func (h *SessionHandler) Logout(c *gin.Context) {
	h.mgr.Logout(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// ReportExpired maneja POST /auth/expired: el front-end vio un 401 en otra llamada.
func (h *SessionHandler) ReportExpired(c *gin.Context) {
	h.mgr.HandleSessionExpired(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// Refresh maneja POST /auth/refresh.
func (h *SessionHandler) Refresh(c *gin.Context) {
	user, err := h.mgr.RefreshUser(c.Request.Context())
	if err != nil {
		writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *SessionHandler) respondAcquired(c *gin.Context, ok bool, err error, next string) {
	if err != nil {
		writeAuthError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "INCOMPLETE_RESPONSE",
			"message": "The server response was incomplete. Please try again.",
		})
		return
	}
	user, _ := h.mgr.User()
	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": guard.ReturnTarget(next, user.Role),
	})
}

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeInvalidCredentials:  http.StatusUnauthorized,
	domain.CodeAccountDisabled:     http.StatusForbidden,
	domain.CodeRateLimited:         http.StatusTooManyRequests,
	domain.CodeNetworkUnavailable:  http.StatusBadGateway,
	domain.CodeServiceUnavailable:  http.StatusServiceUnavailable,
	domain.CodeInvalidOrExpiredOTP: http.StatusBadRequest,
	domain.CodeAccountNotFound:     http.StatusNotFound,
	domain.CodeEmailAlreadyExists:  http.StatusConflict,
	domain.CodeInvalidInputData:    http.StatusUnprocessableEntity,
	domain.CodeSessionExpired:      http.StatusUnauthorized,
	domain.CodeNotAuthenticated:    http.StatusUnauthorized,
	domain.CodeUnknown:             http.StatusBadGateway,
}

func writeAuthError(c *gin.Context, err error) {
	var ae *domain.AuthError
	if !errors.As(err, &ae) {
		ae = domain.ErrUnknownAuth
	}
	status, ok := statusByCode[ae.Code]
	if !ok {
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": string(ae.Code), "message": ae.Message})
}
