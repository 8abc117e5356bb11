package http

import (
	"net/http"

	"github.com/sm8ta/webike_gear_microservice_nikita/internal/config"
	"github.com/sm8ta/webike_gear_microservice_nikita/internal/core/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	router *gin.Engine
}

func NewRouter(
	cfg *config.HTTP,
	tokenService ports.TokenService,
	bikeHandler *BikeHandler,
	componentHandler *ComponentHandler,
	syncHandler *SyncHandler,
	notificationHandler *NotificationHandler,
) (*Router, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigins},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// OAuth колбек без авторизации, пользователь приходит редиректом от Strava
	router.GET("/strava/callback", syncHandler.StravaCallback)

	// Bikes routes
	bikes := router.Group("/bikes")
	bikes.Use(AuthMiddleware(tokenService))
	{
		bikes.POST("", bikeHandler.CreateBike)
		bikes.GET("/my", bikeHandler.GetMyBikes)
		bikes.GET("/:id", bikeHandler.GetBike)
		bikes.PUT("/:id", bikeHandler.UpdateBike)
		bikes.DELETE("/:id", bikeHandler.DeleteBike)
		bikes.GET("/:id/with-components", bikeHandler.GetBikeWithComponents)
		bikes.GET("/:id/components", componentHandler.GetBikeComponents)
	}

	// Components routes
	components := router.Group("/components")
	components.Use(AuthMiddleware(tokenService))
	{
		components.GET("/catalog", componentHandler.GetCatalog)
		components.POST("", componentHandler.CreateComponent)
		components.GET("/:id", componentHandler.GetComponent)
		components.PUT("/:id", componentHandler.UpdateComponent)
		components.DELETE("/:id", componentHandler.DeleteComponent)
		components.POST("/:id/replace", componentHandler.ReplaceComponent)
		components.GET("/:id/maintenance", componentHandler.GetMaintenanceLogs)
		components.POST("/:id/maintenance", componentHandler.AddMaintenanceLog)
	}

	// Sync routes
	sync := router.Group("/")
	sync.Use(AuthMiddleware(tokenService))
	{
		sync.POST("/sync", syncHandler.SyncBikes)
		sync.GET("/strava/connect", syncHandler.StravaConnect)
		sync.GET("/strava/status", syncHandler.StravaStatus)
		sync.DELETE("/strava", syncHandler.StravaDisconnect)
	}

	// Notifications routes
	notifications := router.Group("/notifications")
	notifications.Use(AuthMiddleware(tokenService))
	{
		notifications.GET("", notificationHandler.GetNotifications)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.DeleteNotification)
	}

	return &Router{router: router}, nil
}

func (r *Router) Serve(addr string) error {
	return r.router.Run(addr)
}

func (r *Router) Engine() *gin.Engine {
	return r.router
}
