package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"kennel-backend/models"
	"kennel-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextStaffID = "staffId"
	ContextRole    = "staffRole"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"code": "error.unauthorized", "message": message},
	})
}

// RequireAuth validates the Bearer JWT and stashes staff id + role in the
// request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(c, "missing bearer token")
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		secret := utils.EnvOrDefault("JWT_SECRET", "dev-secret-change-me")
		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			unauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "invalid token claims")
			return
		}

		if sub, ok := claims["sub"].(float64); ok {
			c.Set(ContextStaffID, uint(sub))
		}
		if role, ok := claims["role"].(string); ok {
			c.Set(ContextRole, role)
		}

		c.Next()
	}
}

// RequireManager gates the manager-only operations (waitlist update, offer,
// promote, sweep, capacity and settings writes).
func RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ContextRole)
		if role != models.RoleManager {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{"code": "error.forbidden", "message": "manager role required"},
			})
			return
		}
		c.Next()
	}
}
