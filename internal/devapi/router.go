package devapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter arma la API remota de desarrollo con el contrato que espera el gateway.
func NewRouter(logger *zap.Logger, h *Handler, tokens *TokenIssuer) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := gin.New()
	r.Use(requestLogger(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/otp/request", h.RequestOTP)
	auth.POST("/otp/verify", h.VerifyOTP)
	auth.POST("/logout", h.Logout)

	protected := r.Group("", BearerAuth(tokens))
	protected.GET("/auth/me", h.Me)
	protected.PATCH("/users/me", h.UpdateProfile)

	return r
}
