package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swiftcab/swiftcab-backend/internal/database"
	"github.com/swiftcab/swiftcab-backend/internal/engine"
	"github.com/swiftcab/swiftcab-backend/internal/handlers"
	"github.com/swiftcab/swiftcab-backend/internal/middleware"
	"github.com/swiftcab/swiftcab-backend/internal/models"
	"github.com/swiftcab/swiftcab-backend/internal/services"
	"github.com/swiftcab/swiftcab-backend/pkg/logger"
	"github.com/swiftcab/swiftcab-backend/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	zlog, err := logger.NewLogger()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database
	db, err := database.InitDB()
	if err != nil {
		zlog.Fatalw("Failed to initialize database", "error", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		zlog.Fatalw("Failed to get database instance", "error", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis (optional - dashboards degrade to polling without it)
	if err := services.InitRedis(); err != nil {
		zlog.Warnw("Redis unavailable, stats cache and pub/sub disabled", "error", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	// Wire the dispatch engine
	repo := database.NewBookingRepository(db)
	eng := engine.New(repo, services.NewBookingNotifier(hub))

	m := metrics.NewMetrics("swiftcab")
	metrics.RegisterDashboardGauge("swiftcab", hub.GetConnectedClients)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(zlog))
	r.Use(middleware.Metrics(m))

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"}
	r.Use(cors.New(config))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/admin/login", handlers.AdminLogin(db))
			auth.POST("/driver/login", handlers.DriverLogin(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			adminOnly := middleware.RequireRole(string(models.UserRoleAdmin))

			// Booking routes (admin dashboard)
			bookings := protected.Group("/bookings", adminOnly)
			{
				bookings.POST("", handlers.CreateBooking(eng, m))
				bookings.GET("", handlers.ListBookings(eng))
				bookings.GET("/:id", handlers.GetBooking(eng))
				bookings.POST("/:id/cancel", handlers.CancelBooking(eng))
				bookings.POST("/:id/assign", handlers.AssignDriver(eng, m))
			}

			// Driver dashboard routes
			driver := protected.Group("/driver", middleware.RequireRole(string(models.UserRoleDriver)))
			{
				driver.GET("/stats", handlers.GetDriverStats(eng))
				driver.GET("/profile", handlers.GetDriverProfile(db))
				driver.PUT("/profile", handlers.UpdateDriverProfile(db))
				driver.GET("/bookings", handlers.GetDriverBookings(eng))
				driver.POST("/bookings/:id/accept", handlers.AcceptRide(eng, m))
				driver.POST("/bookings/:id/complete", handlers.CompleteRide(eng, m))
			}

			// Driver administration
			drivers := protected.Group("/drivers", adminOnly)
			{
				drivers.POST("", handlers.CreateOrUpdateDriver(db))
				drivers.GET("", handlers.ListDrivers(db))
				drivers.GET("/options", handlers.DriverOptions(eng))
				drivers.PATCH("/:id/status", handlers.UpdateDriverStatus(db))
			}

			// User routes. Driver tokens carry drivers-table ids, so the
			// users-table profile is off limits to them; drivers use
			// /driver/profile instead.
			profileRoles := middleware.RequireRole(string(models.UserRoleAdmin), string(models.UserRoleCustomer))
			protected.GET("/users/profile", profileRoles, handlers.GetProfile(db))
			protected.PUT("/users/profile", profileRoles, handlers.UpdateProfile(db))
			users := protected.Group("/users", adminOnly)
			{
				users.GET("", handlers.ListUsers(db))
				users.GET("/:id", handlers.GetUser(db))
				users.PUT("/:id", handlers.UpdateUser(db))
				users.DELETE("/:id", handlers.DeleteUser(db))
			}

			// Admin dashboard stats
			protected.GET("/stats", adminOnly, handlers.GetStats(eng))
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	zlog.Infow("Starting server", "port", port)
	if err := r.Run(":" + port); err != nil {
		zlog.Fatalw("Failed to start server", "error", err)
	}
}
