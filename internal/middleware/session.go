package middleware

import (
	"net/http"

	"catalog-service/internal/logger"
	"catalog-service/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandlerFunc is a Gin handler that is handed the caller's session.
// Handlers that change the session save it themselves.
type SessionHandlerFunc func(c *gin.Context, sess *session.Session)

// WithSession loads the session for each request and passes it explicitly
// to h. A logged-out or missing session is not an error.
func WithSession(m *session.Manager, h SessionHandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := m.Load(c.Request)
		if err != nil {
			logger.Error("session load failed", map[string]any{
				"error": err.Error(),
				"path":  c.Request.URL.Path,
			})
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		h(c, sess)
	}
}
