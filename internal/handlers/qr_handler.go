package handlers

import (
	"net/http"
	"strconv"

	"dinepos/internal/database"
	"dinepos/internal/middleware"
	"dinepos/internal/models"
	"dinepos/internal/order"
	"dinepos/internal/realtime"

	"github.com/gin-gonic/gin"
)

// --- POST /qr/:tenantID/orders ---
// Unauthenticated customer scan. Creates a proposal only; nothing reaches
// the order lifecycle until staff approve it.
func SubmitQROrder(c *gin.Context) {
	tenantID, err := strconv.Atoi(c.Param("tenantID"))
	if err != nil || tenantID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tenant"})
		return
	}

	var in order.QRInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	qr, err := order.SubmitQR(database.DB, uint(tenantID), in)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(uint(tenantID), "qr_orders")
	c.JSON(http.StatusCreated, qr)
}

// --- GET /api/qr-orders ---
func GetQROrders(c *gin.Context) {
	var pending []models.QROrder
	err := database.DB.Where("tenant_id = ? AND status = ?",
		middleware.TenantID(c), models.QRPendingApproval).
		Order("created_at").Find(&pending).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch QR orders"})
		return
	}
	c.JSON(http.StatusOK, pending)
}

// --- PUT /api/qr-orders/:id/approve ---
func ApproveQROrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	tenantID := middleware.TenantID(c)
	result, err := order.ApproveQR(database.DB, tenantID, id, middleware.Actor(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "qr_orders")
	realtime.Broadcast(tenantID, "orders")
	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusOK, result)
}

// --- PUT /api/qr-orders/:id/reject ---
func RejectQROrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	tenantID := middleware.TenantID(c)
	qr, err := order.RejectQR(database.DB, tenantID, id)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "qr_orders")
	c.JSON(http.StatusOK, qr)
}
