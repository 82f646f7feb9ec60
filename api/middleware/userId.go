package middleware

import (
	"github.com/gin-gonic/gin"
)

var userIdHeaders = []string{"X-User-Id", "User-Id"}

func UserIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := ""
		for _, header := range userIdHeaders {
			if value := c.GetHeader(header); value != "" {
				userId = value
				break
			}
		}

		c.Set("UserId", userId)
		if email := c.GetHeader("X-User-Email"); email != "" {
			c.Set("UserEmail", email)
		}
		c.Next()
	}
}
