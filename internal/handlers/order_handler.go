package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"dinepos/internal/database"
	"dinepos/internal/middleware"
	"dinepos/internal/models"
	"dinepos/internal/order"
	"dinepos/internal/realtime"

	"github.com/gin-gonic/gin"
)

// Thin REST layer over the lifecycle engine. Handlers validate input, pass
// the tenant scope from the token, and fan out change notifications after a
// successful commit.

// errStatus maps engine errors onto HTTP statuses.
func errStatus(err error) int {
	switch {
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidState),
		errors.Is(err, order.ErrTableConflict),
		errors.Is(err, order.ErrNegativeTotal),
		order.IsInvalidTransition(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func orderParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return 0, false
	}
	return uint(id), true
}

// --- POST /api/orders ---
func CreateOrder(c *gin.Context) {
	var in order.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tenantID := middleware.TenantID(c)
	created, err := order.Create(database.DB, tenantID, middleware.Actor(c), in)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "orders")
	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusCreated, created)
}

// --- GET /api/orders ---
func GetOrders(c *gin.Context) {
	orders, err := order.List(database.DB, middleware.TenantID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}
	c.JSON(http.StatusOK, orders)
}

// --- GET /api/orders/:id ---
func GetOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}
	o, err := order.Get(database.DB, middleware.TenantID(c), id)
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, o)
}

// --- PUT /api/orders/:id ---
// The body may carry a status change, other mutable fields, or both. The
// status goes through the state machine; everything else is a plain patch.
func UpdateOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tenantID := middleware.TenantID(c)
	actor := middleware.Actor(c)

	var updated *models.Order
	var err error
	transitioned := false

	if raw, present := patch["status"]; present {
		str, _ := raw.(string)
		target, known := order.ParseStatus(str)
		if !known {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status '" + str + "'"})
			return
		}
		updated, err = order.RequestTransition(database.DB, tenantID, id, target, actor)
		if err != nil {
			c.JSON(errStatus(err), gin.H{"error": err.Error()})
			return
		}
		transitioned = true
		delete(patch, "status")
	}

	if len(patch) > 0 {
		patched, err := order.UpdateFields(database.DB, tenantID, id, patch, actor)
		switch {
		case err == nil:
			updated = patched
		case transitioned && (errors.Is(err, order.ErrInvalidState) || errors.Is(err, order.ErrNotFound)):
			// The transition above just closed or cancelled the order;
			// there is nothing left for the patch to apply to.
		default:
			c.JSON(errStatus(err), gin.H{"error": err.Error()})
			return
		}
	}

	if updated == nil {
		updated, err = order.Get(database.DB, tenantID, id)
		if err != nil {
			c.JSON(errStatus(err), gin.H{"error": err.Error()})
			return
		}
	}

	realtime.Broadcast(tenantID, "orders")
	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusOK, updated)
}

// --- DELETE /api/orders/:id ---
func CancelOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body) // body is optional

	tenantID := middleware.TenantID(c)
	cancelled, err := order.Cancel(database.DB, tenantID, id, body.Reason, middleware.Actor(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "orders")
	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusOK, cancelled)
}

// --- POST /api/orders/:id/settle ---
func SettleOrder(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	var body struct {
		PaymentMethod string `json:"payment_method" binding:"required"`
		Amount        int64  `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment method is required"})
		return
	}

	tenantID := middleware.TenantID(c)
	closed, err := order.SettlePayment(database.DB, tenantID, id, body.PaymentMethod, body.Amount, middleware.Actor(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "orders")
	realtime.Broadcast(tenantID, "tables")
	c.JSON(http.StatusOK, closed)
}

// --- POST /api/orders/:id/items ---
func AddOrderItems(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	var body struct {
		Items []order.ItemInput `json:"items"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	tenantID := middleware.TenantID(c)
	updated, err := order.AppendItems(database.DB, tenantID, id, body.Items, middleware.Actor(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "orders")
	c.JSON(http.StatusOK, updated)
}

// --- POST /api/orders/:id/payments ---
func RecordPayment(c *gin.Context) {
	id, ok := orderParam(c)
	if !ok {
		return
	}

	var body struct {
		Method string `json:"method" binding:"required"`
		Amount int64  `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Method and amount are required"})
		return
	}

	tenantID := middleware.TenantID(c)
	updated, err := order.RecordPartialPayment(database.DB, tenantID, id, body.Method, body.Amount, middleware.Actor(c))
	if err != nil {
		c.JSON(errStatus(err), gin.H{"error": err.Error()})
		return
	}

	realtime.Broadcast(tenantID, "orders")
	c.JSON(http.StatusOK, updated)
}
