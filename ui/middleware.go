package ui

import (
	"net/http"
	"strings"

	"chdash/internal/errors"

	"github.com/gin-gonic/gin"
)

// RequireSession lets requests with a live session through. API callers get
// a 401, browsers are sent to the login page.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessionCookie)
		if s.sessions.Valid(token) {
			c.Set("session", token)
			c.Next()
			return
		}

		if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/charts/") {
			err := errors.Unauthorized("login required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Message, "code": err.Code})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
