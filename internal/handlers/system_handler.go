package handlers

import (
	"net/http"
	"time"

	"dinepos/internal/database"
	"dinepos/internal/middleware"
	"dinepos/internal/models"

	"github.com/gin-gonic/gin"
)

// --- GET /api/system/status ---
// Feeds the settings screen the tenant's subscription standing.
func GetSystemStatus(c *gin.Context) {
	var tenant models.Tenant
	if err := database.DB.First(&tenant, middleware.TenantID(c)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Tenant not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tenant":               tenant.Name,
		"subscription_expires": tenant.SubscriptionExpires,
		"active":               time.Now().Before(tenant.SubscriptionExpires),
	})
}
