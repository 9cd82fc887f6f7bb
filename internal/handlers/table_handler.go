package handlers

import (
	"net/http"

	"dinepos/internal/database"
	"dinepos/internal/middleware"
	"dinepos/internal/models"
	"dinepos/internal/realtime"

	"github.com/gin-gonic/gin"
)

// --- GET /api/tables ---
func GetTables(c *gin.Context) {
	var tables []models.DiningTable
	result := database.DB.Where("tenant_id = ?", middleware.TenantID(c)).
		Order("number").Find(&tables)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tables"})
		return
	}
	c.JSON(http.StatusOK, tables)
}

type TableRequest struct {
	Number int `json:"number" binding:"required"`
	Seats  int `json:"seats"`
}

// --- POST /api/tables ---
// Occupancy fields are never settable here; only the lifecycle engine
// writes those.
func AddTable(c *gin.Context) {
	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Table number is required"})
		return
	}

	tenantID := middleware.TenantID(c)
	table := models.DiningTable{
		TenantID: tenantID,
		Number:   req.Number,
		Seats:    req.Seats,
		Status:   models.TableAvailable,
	}
	if err := database.DB.Create(&table).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create table"})
		return
	}

	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusCreated, table)
}
