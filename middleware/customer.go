package middleware

import (
	"strings"

	"bookcheckout/services/commerce"

	"github.com/gin-gonic/gin"
)

// CustomerTokenMiddleware forwards the caller's commerce bearer token, if
// any, on the request context. The token is never validated or stored here;
// the commerce backend decides whether it is still good.
func CustomerTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = strings.TrimSpace(token)
			if token != "" {
				c.Request = c.Request.WithContext(commerce.WithCustomerToken(c.Request.Context(), token))
			}
		}
		c.Next()
	}
}
