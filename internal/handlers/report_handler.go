package handlers

import (
	"net/http"

	"dinepos/internal/database"
	"dinepos/internal/middleware"
	"dinepos/internal/models"

	"github.com/gin-gonic/gin"
)

// ReportData defines the shape of our analytics response
type ReportData struct {
	TotalRevenue int64 `json:"total_revenue"`
	TotalOrders  int64 `json:"total_orders"`
	OpenOrders   int64 `json:"open_orders"`
	TopSelling   []struct {
		ItemName string `json:"item_name"`
		Sold     int    `json:"sold"`
		Revenue  int64  `json:"revenue"`
	} `json:"top_selling"`
	RecentOrders []models.Order `json:"recent_orders"`
}

// --- GET /api/reports ---
func GetSalesReport(c *gin.Context) {
	tenantID := middleware.TenantID(c)
	var data ReportData

	// 1. Revenue from settled orders (all time)
	err := database.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.StatusClosed).
		Select("COALESCE(SUM(total), 0)").
		Scan(&data.TotalRevenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to calculate revenue"})
		return
	}

	// 2. Count settled orders
	err = database.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.StatusClosed).
		Count(&data.TotalOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
		return
	}

	// 3. Orders still on the floor
	err = database.DB.Model(&models.Order{}).
		Where("tenant_id = ? AND status NOT IN ?", tenantID,
			[]models.OrderStatus{models.StatusClosed, models.StatusCancelled}).
		Count(&data.OpenOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count open orders"})
		return
	}

	// 4. Top 5 best sellers across settled orders
	err = database.DB.Table("order_items").
		Select("order_items.name as item_name, SUM(order_items.quantity) as sold, SUM(order_items.quantity * order_items.unit_price) as revenue").
		Joins("JOIN orders ON order_items.order_id = orders.id").
		Where("orders.tenant_id = ? AND orders.status = ?", tenantID, models.StatusClosed).
		Group("order_items.name").
		Order("sold desc").
		Limit(5).
		Scan(&data.TopSelling).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch top selling items"})
		return
	}

	// 5. Last 10 settled orders, newest first
	err = database.DB.Where("tenant_id = ? AND status = ?", tenantID, models.StatusClosed).
		Order("closed_at desc").Limit(10).Find(&data.RecentOrders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent orders"})
		return
	}

	c.JSON(http.StatusOK, data)
}
