package middleware

import (
	"net/http"
	"strings"

	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie carries the access token for browser clients.
const AccessTokenCookie = "access_token"

// bearerOrCookie returns the token from the Authorization header, falling
// back to the access token cookie. A malformed header is reported even when
// a cookie is present.
func bearerOrCookie(c *gin.Context) (string, string) {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", "Invalid authorization header format"
		}
		return parts[1], ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie, ""
	}
	return "", "Authorization header required"
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, problem := bearerOrCookie(c)
		if problem != "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": problem})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("user_role")
		if !exists || role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// StaffMiddleware admits staff and admins.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("user_role")
		if role != models.RoleStaff && role != models.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
