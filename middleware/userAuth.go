package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"learnhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RoleAdministrator is the role claim that unlocks admin-only endpoints.
const RoleAdministrator = "administrator"

const revokedKeyPrefix = "auth:revoked:"

// JWTAuthMiddleware authenticates the bearer token, rejects revoked tokens,
// and stores the caller's user id and role in the request context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Recover from unexpected panics.
		defer func() {
			if r := recover(); r != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
					"code":  500,
				})
			}
		}()

		tokenString := BearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		userID, role, err := utils.ExtractIdentityFromToken(tokenString)
		if err != nil || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
				"code":  0,
			})
			return
		}

		if tokenRevoked(tokenString) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Token has been revoked",
				"code":  0,
			})
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// RequireAdmin allows only administrator principals through. It must run
// after JWTAuthMiddleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != RoleAdministrator {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Administrator access required",
			})
			return
		}
		c.Next()
	}
}

// BearerToken extracts the token from the Authorization header, falling back
// to the "token" query parameter for WebSocket clients that cannot set
// headers.
func BearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.Query("token")
}

// tokenRevoked checks the auth cache for a revocation entry. When the cache
// is unreachable the token is treated as valid; revocation is an extra check,
// not the primary authentication.
func tokenRevoked(tokenString string) bool {
	authCache := utils.GetAuthCacheClient()
	if authCache == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	key := revokedKeyPrefix + utils.HashToken(tokenString)
	_, err := authCache.Get(ctx, key).Result()
	if err == nil {
		return true
	}
	if err != redis.Nil {
		log.Printf("WARNING: error checking token revocation: %v", err)
	}
	return false
}
