package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FromHTTP adapts a net/http middleware to Gin. The wrapped middleware may
// replace the request (e.g. to add context values) or answer on its own, in
// which case the Gin chain stops.
func FromHTTP(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false

		// Bridge handler to allow net/http middleware execution
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		if !called {
			c.Abort()
		}
	}
}
