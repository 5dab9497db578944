package handlers

import (
	"net/http"

	"bookcheckout/utils"

	"github.com/gin-gonic/gin"
)

func HealthHandler(checker *utils.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := checker.Check(c.Request.Context())
		if !status.Healthy() {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
