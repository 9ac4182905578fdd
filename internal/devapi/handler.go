package devapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/domain"
)

// Handler expone la API de autenticacion y perfil que consume el portal.
type Handler struct {
	logger   *zap.Logger
	accounts *AccountService
	tokens   *TokenIssuer
}

func NewHandler(logger *zap.Logger, accounts *AccountService, tokens *TokenIssuer) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		logger:   logger,
		accounts: accounts,
		tokens:   tokens,
	}
}

// Register maneja POST /auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name        string      `json:"name"`
		Email       string      `json:"email"`
		Password    string      `json:"password"`
		Role        domain.Role `json:"role"`
		Phone       string      `json:"phone"`
		CompanyName string      `json:"company_name"`
		Skills      []string    `json:"skills"`
		RememberMe  bool        `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		Phone:       req.Phone,
		CompanyName: req.CompanyName,
		Skills:      req.Skills,
	})
	if err != nil {
		h.respondError(c, "register", err)
		return
	}
	h.respondToken(c, http.StatusCreated, user, req.RememberMe)
}

// Login maneja POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email      string `json:"email" binding:"required"`
		Password   string `json:"password" binding:"required"`
		RememberMe bool   `json:"remember_me"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(c, "login", err)
		return
	}
	h.respondToken(c, http.StatusOK, user, req.RememberMe)
}

// RequestOTP maneja POST /auth/otp/request.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.accounts.RequestOTP(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, "request otp", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.accounts.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.respondError(c, "verify otp", err)
		return
	}
	token, err := h.tokens.Issue(user, false)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// Me maneja GET /auth/me.
func (h *Handler) Me(c *gin.Context) {
	claims, _ := GetClaims(c)
	user, err := h.accounts.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session no longer valid"})
			return
		}
		h.respondError(c, "current user", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile maneja PATCH /users/me.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Name        *string  `json:"name"`
		CompanyName *string  `json:"company_name"`
		Phone       *string  `json:"phone"`
		Skills      []string `json:"skills"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request"})
		return
	}

	claims, _ := GetClaims(c)
	user, err := h.accounts.UpdateProfile(c.Request.Context(), claims.UserID, ProfileChanges{
		Name:        req.Name,
		CompanyName: req.CompanyName,
		Phone:       req.Phone,
		Skills:      req.Skills,
	})
	if err != nil {
		h.respondError(c, "update profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout maneja POST /auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	token, _ := bearerToken(c)
	if err := h.tokens.Revoke(token); err != nil {
		h.logger.Debug("revoke token failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) respondToken(c *gin.Context, status int, user domain.User, rememberMe bool) {
	token, err := h.tokens.Issue(user, rememberMe)
	if err != nil {
		h.logger.Error("token issue failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not issue token"})
		return
	}
	c.JSON(status, gin.H{"token": token, "user": user})
}

func (h *Handler) respondError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, ErrAccountDisabled):
		c.JSON(http.StatusForbidden, gin.H{"error": "account disabled"})
	case errors.Is(err, ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	case errors.Is(err, ErrOTPNotRequested),
		errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrOTPInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid input"})
	case errors.Is(err, ErrEmailSendFailure):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + op})
	}
}
