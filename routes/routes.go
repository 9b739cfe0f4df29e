package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/sharath018/temple-waste-backend/config"
	_ "github.com/sharath018/temple-waste-backend/docs"
	"github.com/sharath018/temple-waste-backend/internal/auth"
	"github.com/sharath018/temple-waste-backend/internal/dailylog"
	"github.com/sharath018/temple-waste-backend/internal/dashboard"
	"github.com/sharath018/temple-waste-backend/internal/inventory"
	"github.com/sharath018/temple-waste-backend/internal/ngo"
	"github.com/sharath018/temple-waste-backend/internal/notification"
	"github.com/sharath018/temple-waste-backend/internal/reports"
	"github.com/sharath018/temple-waste-backend/internal/temple"
	"github.com/sharath018/temple-waste-backend/middleware"
)

// Services are the wired domain services the HTTP surface is built from.
type Services struct {
	Auth          auth.Service
	Temples       temple.Service
	NGOs          ngo.Service
	Inventory     inventory.Service
	DailyLogs     dailylog.Service
	Dashboards    dashboard.Service
	Reports       reports.Service
	Notifications notification.Service
}

func Setup(r *gin.Engine, cfg *config.Config, svc Services, rdb *redis.Client, log *zap.SugaredLogger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With", "Cache-Control"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.ClientIP())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	if cfg.AssetBackend != "firebase" {
		r.Static("/uploads", cfg.UploadDir)
	}

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter(rdb, log))

	authHandler := auth.NewHandler(svc.Auth)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		authGroup.POST("/reset-password", authHandler.ResetPassword)

		session := authGroup.Group("")
		session.Use(middleware.Authenticate(svc.Auth))
		session.POST("/logout", authHandler.Logout)
		session.GET("/session", authHandler.Session)
		session.GET("/session/stream", authHandler.SessionStream)
	}

	// ========== Admin ==========
	admin := api.Group("/admin")
	admin.Use(middleware.RequireRole(svc.Auth, auth.RoleAdmin))
	{
		templeHandler := temple.NewHandler(svc.Temples)
		admin.POST("/temples", templeHandler.CreateTemple)
		admin.GET("/temples", templeHandler.ListTemples)
		admin.GET("/temples/:code", templeHandler.GetTemple)
		admin.PUT("/temples/:code", templeHandler.UpdateTemple)
		admin.DELETE("/temples/:code", templeHandler.DeleteTemple)
		admin.POST("/temples/:code/image", templeHandler.UploadImage)
		admin.POST("/temples/:code/points", templeHandler.AdjustPoints)
		admin.POST("/temples/:code/points/reconcile", templeHandler.ReconcilePoints)

		ngoHandler := ngo.NewHandler(svc.NGOs)
		admin.POST("/ngos", ngoHandler.CreateNGO)
		admin.GET("/ngos", ngoHandler.ListNGOs)
		admin.GET("/ngos/:id", ngoHandler.GetNGO)
		admin.PUT("/ngos/:id", ngoHandler.UpdateNGO)
		admin.DELETE("/ngos/:id", ngoHandler.DeleteNGO)
		admin.POST("/ngos/:id/logo", ngoHandler.UploadLogo)

		inventoryHandler := inventory.NewHandler(svc.Inventory)
		admin.POST("/inventory", inventoryHandler.CreateItem)
		admin.GET("/inventory", inventoryHandler.ListItems)
		admin.PUT("/inventory/:id", inventoryHandler.UpdateItem)
		admin.DELETE("/inventory/:id", inventoryHandler.DeleteItem)

		logHandler := dailylog.NewHandler(svc.DailyLogs)
		admin.POST("/daily-logs", logHandler.SubmitLog)
		admin.GET("/daily-logs", logHandler.ListLogs)

		admin.PUT("/profiles/:id/link", authHandler.LinkProfile)

		reportsHandler := reports.NewHandler(svc.Reports)
		admin.GET("/reports/daily-logs", reportsHandler.DailyLogs)
		admin.GET("/reports/leaderboard", reportsHandler.Leaderboard)
	}

	dashboardHandler := dashboard.NewHandler(svc.Dashboards)
	admin.GET("/dashboard", dashboardHandler.Admin)
	api.GET("/temple/dashboard", middleware.RequireRole(svc.Auth, auth.RoleTemple), dashboardHandler.Temple)
	api.GET("/ngo/dashboard", middleware.RequireRole(svc.Auth, auth.RoleNGO), dashboardHandler.NGO)

	// ========== Notifications (any signed-in role) ==========
	notificationHandler := notification.NewHandler(svc.Notifications)
	notifications := api.Group("/notifications")
	notifications.Use(middleware.Authenticate(svc.Auth))
	{
		notifications.GET("", notificationHandler.List)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/devices", notificationHandler.RegisterDevice)
	}
}
