package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"referral-intake/internal/sessions"
	"referral-intake/internal/shared/server/respond"
)

const adminUserKey = "adminUser"

// AuthFailurePolicy decides what an anonymous request to a protected route gets.
// With RedirectURL empty the refusal is always a 401 JSON body.
type AuthFailurePolicy struct {
	Redirect    bool
	RedirectURL string
}

// RequireSession lets a request through only when it carries an authenticated session.
func RequireSession(mgr *sessions.Manager, policy AuthFailurePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		s, ok := mgr.Current(c)
		if !ok || !s.Authenticated {
			if policy.Redirect && policy.RedirectURL != "" {
				c.Redirect(http.StatusFound, policy.RedirectURL)
				c.Abort()
				return
			}
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Não autenticado", nil)
			return
		}

		c.Set(adminUserKey, s.Username)
		c.Next()
	}
}

// AdminUserFromContext fetches the administrator name set by RequireSession.
func AdminUserFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(adminUserKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}
