package routes

import (
	"net/http"

	"campusbite/backend/gormstore"
	"campusbite/handlers"
	"campusbite/metrics"
	"campusbite/middleware"
	"campusbite/models"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the engine with logging, recovery, CORS, health and
// every API route.
func NewRouter(newApp middleware.AppFactory, files *gormstore.DiskFiles) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, "+middleware.SessionHeader)
		c.Header("Access-Control-Expose-Headers", middleware.SessionHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "CampusBite Campus Food Ordering API",
			"version": "1.0.0",
		})
	})
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍲 Welcome to the CampusBite API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []models.UserRole{models.RoleStudent, models.RoleHotelManager, models.RoleDelivery},
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	SetupRoutes(r, newApp, files)
	return r
}

func SetupRoutes(r *gin.Engine, newApp middleware.AppFactory, files *gormstore.DiskFiles) {
	// ── Storage (embedded driver only) ─────────────────────────────
	v1 := r.Group("/v1")
	{
		v1.GET("/avatars/initials", handlers.InitialsAvatar)
		if files != nil {
			v1.GET("/storage/buckets/:bucket/files/:id/view", handlers.ServeFile(files))
		}
	}

	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	public.Use(middleware.Session(newApp))
	{
		// Auth
		public.POST("/auth/register", handlers.Register)
		public.POST("/auth/login", handlers.Login)

		// Food posts (no auth needed)
		public.GET("/foods", handlers.ListFoods)
		public.GET("/foods/:id", handlers.GetFood)

		// State machine info
		public.GET("/state-machine", handlers.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.Session(newApp), middleware.AuthRequired())
	{
		auth.POST("/auth/logout", handlers.Logout)
		auth.GET("/profile", handlers.GetProfile)
		auth.PATCH("/profile/settings", handlers.UpdateSettings)
		auth.POST("/foods/:id/rating", handlers.RateFood)
		auth.GET("/notifications", handlers.ListNotifications)
		auth.PUT("/notifications/:id/read", handlers.MarkNotificationRead)
	}

	// ── Student routes ─────────────────────────────────────────────
	student := r.Group("/api/student")
	student.Use(middleware.Session(newApp), middleware.AuthRequired(), middleware.RoleRequired(models.RoleStudent))
	{
		student.POST("/orders", handlers.PlaceOrder)
		student.GET("/orders", handlers.GetMyOrders)
	}

	// ── Hotel manager routes ───────────────────────────────────────
	manager := r.Group("/api/manager")
	manager.Use(middleware.Session(newApp), middleware.AuthRequired(), middleware.RoleRequired(models.RoleHotelManager))
	{
		manager.GET("/restaurant", handlers.GetMyRestaurant)

		// Food posts
		manager.POST("/foods", handlers.PostFood)
		manager.GET("/foods", handlers.GetMyFoods)
		manager.POST("/foods/verify", handlers.VerifyFoods)

		// Order management
		manager.GET("/orders", handlers.GetRestaurantOrders)
		manager.PUT("/orders/:id/assign", handlers.AssignDelivery)
		manager.GET("/delivery-personnel", handlers.DeliveryPersonnel)
	}

	// ── Delivery routes ────────────────────────────────────────────
	delivery := r.Group("/api/delivery")
	delivery.Use(middleware.Session(newApp), middleware.AuthRequired(), middleware.RoleRequired(models.RoleDelivery))
	{
		delivery.GET("/deliveries", handlers.GetMyDeliveries)
		delivery.PUT("/deliveries/:id/accept", handlers.AcceptDelivery)
		delivery.PUT("/deliveries/:id/complete", handlers.CompleteDelivery)
	}
}
