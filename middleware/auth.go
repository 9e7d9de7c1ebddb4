package middleware

import (
	"net/http"
	"strings"

	"bloodlink/models"
	"bloodlink/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWTAuthMiddleware verifies the bearer token and stores the caller's id and role
// in the context.
func JWTAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Insufficient authorization")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Insufficient authorization")
			return
		}

		identity, err := utils.ExtractIdentity(secret, tokenString)
		if err != nil {
			zap.L().Debug("Token rejected", zap.Error(err))
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
			return
		}
		switch models.Role(identity.Role) {
		case models.RoleDonor, models.RoleBloodBank, models.RoleAdmin:
		default:
			utils.JSONError(c, http.StatusForbidden, "forbidden", "Unknown role")
			return
		}

		c.Set(utils.ContextUserID, identity.UserID)
		c.Set(utils.ContextRole, models.Role(identity.Role))
		c.Next()
	}
}

// RequireRoles lets through only callers holding one of roles. It must run after
// JWTAuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(utils.ContextRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		utils.JSONError(c, http.StatusForbidden, "forbidden", "Access denied")
	}
}
