package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"job-portal/internal/domain"
	"job-portal/internal/session"
)

// RouterOptions agrupa la configuracion opcional del router del portal.
type RouterOptions struct {
	AllowedOrigins    []string
	AuthRatePerMinute int
	Metrics           http.Handler
}

// NewRouter configura el router del portal: auth, vistas protegidas y metricas.
func NewRouter(
	logger *zap.Logger,
	mgr *session.Manager,
	sessionH *SessionHandler,
	opts RouterOptions,
) *gin.Engine {
	r := gin.New()

	r.Use(zapLoggerMiddleware(logger), gin.Recovery())
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     opts.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	auth := r.Group("/auth")
	auth.GET("/session", sessionH.GetSession)
	auth.POST("/logout", sessionH.Logout)
	auth.POST("/expired", sessionH.ReportExpired)
	auth.POST("/refresh", sessionH.Refresh)

	attempts := auth.Group("", newAuthRateLimiter(logger, opts.AuthRatePerMinute).Middleware())
	attempts.POST("/login", sessionH.Login)
	attempts.POST("/otp/request", sessionH.RequestOTP)
	attempts.POST("/otp/verify", sessionH.VerifyOTP)
	attempts.POST("/signup", sessionH.Signup)

	r.GET("/account", RequireRole(mgr, ""), viewHandler("account"))
	r.GET("/employee/*view", RequireRole(mgr, domain.RoleEmployee), viewHandler("employee"))
	r.GET("/employer/*view", RequireRole(mgr, domain.RoleEmployer), viewHandler("employer"))
	r.GET("/admin/*view", RequireRole(mgr, domain.RoleAdmin), viewHandler("admin"))

	return r
}

// viewHandler responde el contexto minimo que necesita la vista protegida.
func viewHandler(area string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{
			"area": area,
			"view": c.Param("view"),
			"user": user,
		})
	}
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
