package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CORS sets cross-origin headers. allowedOrigins is "*" or a comma-separated
// origin list; requests from other origins get no CORS headers.
func CORS(allowedOrigins string) gin.HandlerFunc {
	var origins []string
	wildcard := false
	for _, o := range strings.Split(allowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			wildcard = true
		}
		if o != "" {
			origins = append(origins, o)
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := ""
		switch {
		case wildcard || len(origins) == 0:
			allow = "*"
		case origin != "":
			for _, o := range origins {
				if o == origin {
					allow = origin
					break
				}
			}
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Max-Age", "86400")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
