package middleware

import (
	"net/http"
	"strings"
	"time"

	"dinepos/internal/auth"
	"dinepos/internal/database"
	"dinepos/internal/models"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware checks if the user has a valid JWT token
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Format: "Bearer <token>"
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header must start with Bearer"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Everything downstream reads tenant scope and actor identity
		// from the context, never from the request body.
		c.Set("userID", claims.UserID)
		c.Set("tenantID", claims.TenantID)
		c.Set("actor", claims.Actor)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole is a secondary guard that checks for specific permissions
func RequireRole(allowedRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != allowedRole {
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CheckSubscription blocks tenants whose subscription has lapsed.
func CheckSubscription() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := c.GetUint("tenantID")

		var tenant models.Tenant
		if err := database.DB.First(&tenant, tenantID).Error; err != nil {
			c.JSON(http.StatusForbidden, gin.H{"error": "Unknown tenant account"})
			c.Abort()
			return
		}

		if time.Now().After(tenant.SubscriptionExpires) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Subscription expired. Please renew to continue."})
			c.Abort()
			return
		}
		c.Next()
	}
}

// TenantID extracts the caller's tenant scope from context
func TenantID(c *gin.Context) uint {
	return c.GetUint("tenantID")
}

// Actor extracts the caller's display name for audit entries
func Actor(c *gin.Context) string {
	return c.GetString("actor")
}
