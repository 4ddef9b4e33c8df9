package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/models"
	"dwellmetrics/api/utils"
)

// Context keys set by AuthRequired.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
)

// TokenCookie is the cookie carrying the session JWT.
const TokenCookie = "jwt_token"

// AuthRequired accepts a JWT from the jwt_token cookie or a Bearer header.
// When apiKey is non-empty, a matching X-API-KEY header authenticates the
// caller as the service principal.
func AuthRequired(issuer *utils.TokenIssuer, apiKey string, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey != "" {
			if key := c.GetHeader("X-API-KEY"); key != "" && subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
				c.Set(ContextUserID, 0)
				c.Set(ContextUserRole, models.RoleService)
				c.Next()
				return
			}
		}

		tokenString, err := c.Cookie(TokenCookie)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
			if tokenString == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
				return
			}
		}

		claims, err := issuer.ValidateJWT(tokenString)
		if err != nil {
			logger.WithError(err).Debug("Rejected JWT")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRole, claims.Role)
		c.Next()
	}
}

// AdminRequired rejects callers without an admin role. It must run after
// AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.IsAdminRole(c.GetString(ContextUserRole)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
