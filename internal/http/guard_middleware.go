package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"job-portal/internal/domain"
	"job-portal/internal/guard"
	"job-portal/internal/session"
)

const currentUserKey = "current_user"

// RequireRole traduce la decision del guard a respuestas gin.
// Con role vacio basta con tener sesion.
func RequireRole(mgr *session.Manager, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap := mgr.Snapshot()
		d := guard.Evaluate(guard.Input{
			State:        snap.State,
			User:         snap.User,
			RequiredRole: role,
			CurrentPath:  c.Request.URL.RequestURI(),
		})

		switch d.Kind {
		case guard.KindLoading:
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusAccepted, gin.H{"status": "loading"})
		case guard.KindRedirect:
			c.Redirect(http.StatusFound, d.Location)
			c.Abort()
		default:
			c.Set(currentUserKey, *snap.User)
			c.Next()
		}
	}
}

// CurrentUser obtiene el usuario que dejo RequireRole en el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
