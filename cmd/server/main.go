package main

import (
	"log"
	"os"
	"time"

	"dinepos/internal/database"
	"dinepos/internal/handlers"
	"dinepos/internal/middleware"
	"dinepos/internal/realtime"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)

	// Customer-facing QR scan. Unauthenticated: the customer only ever
	// creates a proposal, never touches order state.
	r.POST("/qr/:tenantID/orders", handlers.SubmitQROrder)

	// --- FEATURE FLAG: Tenant Self-Registration ---
	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("⚠️ WARNING: Registration route is OPEN. Disable this in production!")
	} else {
		log.Println("🔒 Registration route is safely DISABLED.")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	api.Use(middleware.CheckSubscription())
	{
		// STAFF & ADMIN
		api.GET("/orders", handlers.GetOrders)
		api.POST("/orders", handlers.CreateOrder)
		api.GET("/orders/:id", handlers.GetOrder)
		api.PUT("/orders/:id", handlers.UpdateOrder)
		api.DELETE("/orders/:id", handlers.CancelOrder)
		api.POST("/orders/:id/settle", handlers.SettleOrder)
		api.POST("/orders/:id/items", handlers.AddOrderItems)
		api.POST("/orders/:id/payments", handlers.RecordPayment)

		api.GET("/tables", handlers.GetTables)

		api.GET("/qr-orders", handlers.GetQROrders)
		api.PUT("/qr-orders/:id/approve", handlers.ApproveQROrder)
		api.PUT("/qr-orders/:id/reject", handlers.RejectQROrder)

		api.GET("/system/status", handlers.GetSystemStatus)

		// Live updates for waiter screens and the kitchen display
		api.GET("/ws", realtime.HandleWebSocket())

		// ADMIN ONLY
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.POST("/ask", handlers.AskAI)
			admin.POST("/tables", handlers.AddTable)
			admin.GET("/reports", handlers.GetSalesReport)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Println("🚀 Server starting on :" + port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
