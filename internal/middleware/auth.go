package middleware

import (
	"context"
	"net/http"
	"strings"

	"dating-match-server/internal/auth"
	"dating-match-server/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// UserLookup loads the authenticated user for role checks.
type UserLookup interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// AuthRequired verifies the access token from the Authorization header, or
// from the token query parameter for WebSocket upgrades, and sets user_id
// and role on the context.
func AuthRequired(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				abortWithError(c, http.StatusUnauthorized, models.CodeUnauthorized, "Bearer token required")
				return
			}
		} else {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, models.CodeUnauthorized, "Authorization header required")
			return
		}

		claims, err := tokens.ParseAccess(tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, models.CodeUnauthorized, err.Error())
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// AdminRequired lets the request through only for users whose stored role
// is admin.
func AdminRequired(users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			abortWithError(c, http.StatusUnauthorized, models.CodeUnauthorized, "User not authenticated")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID.(uint))
		if err != nil || !user.IsActive || !user.IsAdmin() {
			abortWithError(c, http.StatusForbidden, models.CodeForbidden, "Admin access required")
			return
		}

		c.Set("admin", user)
		c.Next()
	}
}

func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
