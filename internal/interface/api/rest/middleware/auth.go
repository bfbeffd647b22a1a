package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"filevault-api/internal/infrastructure/jwt"
)

const CtxUserID = "userID"

func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "missing Authorization header"},
			)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token format"},
			)
			return
		}

		claims, err := jwtService.ValidateToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(
				http.StatusUnauthorized,
				gin.H{"error": "invalid token"},
			)
			return
		}

		c.Set(CtxUserID, claims.UserID)

		c.Next()
	}
}

// OwnerGuard rejects requests whose path user does not match the token
// subject: records are only ever visible to their owner.
func OwnerGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenUserID := c.GetString(CtxUserID)
		if tokenUserID == "" || tokenUserID != c.Param("user_id") {
			c.AbortWithStatusJSON(
				http.StatusForbidden,
				gin.H{"error": "token does not match requested user"},
			)
			return
		}

		c.Next()
	}
}
